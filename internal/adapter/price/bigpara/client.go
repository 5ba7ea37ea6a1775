// Package bigpara reads precious-metal prices from the Bigpara gold page.
package bigpara

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/simaogato/goldfolio-backend/internal/domain"
)

const (
	DefaultURL       = "https://bigpara.hurriyet.com.tr/altin/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAccept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8"
	DefaultTimeout   = 5 * time.Second
	DefaultCacheTTL  = 60 * time.Second

	snapshotCacheKey = "snapshot"
)

// Config holds the options of a Client. Zero values fall back to defaults.
type Config struct {
	URL       string
	UserAgent string
	Timeout   time.Duration

	// CacheTTL is how long a fetched snapshot is reused. Negative disables caching.
	CacheTTL time.Duration

	// UpstreamRate and UpstreamBurst bound how often the page is requested.
	// Failed fetches are not cached, so this also caps retries by callers.
	UpstreamRate  rate.Limit
	UpstreamBurst int

	Layout Layout
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.UpstreamRate == 0 {
		c.UpstreamRate = rate.Every(2 * time.Second)
	}
	if c.UpstreamBurst <= 0 {
		c.UpstreamBurst = 3
	}
	if c.Layout.Version == "" {
		c.Layout = LayoutV1
	}
	return c
}

// Client fetches and caches price snapshots. It is safe for concurrent use.
type Client struct {
	cfg      Config
	http     *resty.Client
	cache    *cache.Cache
	group    singleflight.Group
	limiter  *rate.Limiter
	lastGood atomic.Pointer[domain.PriceSnapshot]
	logger   *zap.Logger
	now      func() time.Time
}

// NewClient builds a Client. It fails only if the configured layout is inconsistent.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", DefaultAccept)

	store := cache.New(cache.NoExpiration, 0)
	if cfg.CacheTTL > 0 {
		store = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		cache:   store,
		limiter: rate.NewLimiter(cfg.UpstreamRate, cfg.UpstreamBurst),
		logger:  logger,
		now:     time.Now,
	}, nil
}

var _ domain.PriceSource = (*Client)(nil)

// FetchSnapshot returns the current price snapshot.
// Within the cache window the previous snapshot is returned without touching
// the network; concurrent misses share a single upstream request.
// When the page no longer matches the layout, a partial snapshot is returned
// along with ErrParse. It is neither cached nor kept as the last good one.
func (c *Client) FetchSnapshot(ctx context.Context) (*domain.PriceSnapshot, error) {
	if snap := c.cached(); snap != nil {
		return snap, nil
	}

	ch := c.group.DoChan(snapshotCacheKey, func() (interface{}, error) {
		// A caller that missed the cache just as another fetch finished
		if snap := c.cached(); snap != nil {
			return snap, nil
		}
		// The fetch is shared, so one caller going away must not fail the rest
		return c.fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamFetch, ctx.Err())
	case res := <-ch:
		snap, _ := res.Val.(*domain.PriceSnapshot)
		return snap, res.Err
	}
}

// LastGood returns the most recent successfully fetched snapshot, or nil.
func (c *Client) LastGood() *domain.PriceSnapshot {
	return c.lastGood.Load()
}

func (c *Client) cached() *domain.PriceSnapshot {
	if c.cfg.CacheTTL <= 0 {
		return nil
	}
	if v, ok := c.cache.Get(snapshotCacheKey); ok {
		return v.(*domain.PriceSnapshot)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context) (*domain.PriceSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: upstream request not allowed: %v", domain.ErrUpstreamFetch, err)
	}

	start := c.now()
	resp, err := c.http.R().SetContext(ctx).Get(c.cfg.URL)
	if err != nil {
		c.logger.Warn("price fetch failed", zap.String("url", c.cfg.URL), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	if !resp.IsSuccess() {
		c.logger.Warn("price source returned an error status",
			zap.String("url", c.cfg.URL),
			zap.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("%w: status %d", domain.ErrUpstreamFetch, resp.StatusCode())
	}

	fragments, err := ExtractFragments(resp.Body(), c.cfg.Layout.FragmentClass)
	if err != nil {
		return nil, err
	}

	snap, err := c.cfg.Layout.Snapshot(fragments, start)
	if err != nil {
		c.logger.Error("price page no longer matches layout",
			zap.String("layout", c.cfg.Layout.Version),
			zap.Int("fragments", len(fragments)),
			zap.Error(err))
		return snap, err
	}

	for key, price := range snap.Prices {
		if !price.Valid {
			c.logger.Warn("price field unreadable", zap.String("asset", string(key)), zap.String("layout", snap.LayoutVersion))
		}
	}

	if c.cfg.CacheTTL > 0 {
		c.cache.SetDefault(snapshotCacheKey, snap)
	}
	c.lastGood.Store(snap)

	c.logger.Debug("price snapshot fetched",
		zap.Time("observed_at", snap.ObservedAt),
		zap.Duration("duration", c.now().Sub(start)))

	return snap, nil
}
