package portfolio

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/simaogato/goldfolio-backend/internal/domain"
	"github.com/simaogato/goldfolio-backend/internal/usecase/valuation"
)

// PriceStatus tells how fresh the prices behind an overview are.
type PriceStatus string

const (
	PriceStatusLive        PriceStatus = "live"
	PriceStatusStale       PriceStatus = "stale"
	PriceStatusPartial     PriceStatus = "partial"
	PriceStatusUnavailable PriceStatus = "unavailable"
)

// Overview is the valuation of every lot plus the snapshot it was priced with
type Overview struct {
	Metrics     valuation.Metrics
	Snapshot    *domain.PriceSnapshot
	PriceStatus PriceStatus
	// PriceError is set when the live fetch failed.
	PriceError error
}

// PortfolioService values the ledger against current market prices
type PortfolioService struct {
	LotRepo domain.LotRepository
	Prices  domain.PriceSource
	Logger  *zap.Logger
}

// NewPortfolioService creates a new PortfolioService instance
func NewPortfolioService(lotRepo domain.LotRepository, prices domain.PriceSource, logger *zap.Logger) *PortfolioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioService{
		LotRepo: lotRepo,
		Prices:  prices,
		Logger:  logger,
	}
}

// Overview loads all lots and the current price snapshot concurrently and values them.
// Logic:
//   - A lot store failure fails the call
//   - A price failure falls back to the last good snapshot, then to the partial
//     snapshot read from a drifted page, then to no prices at all
func (s *PortfolioService) Overview(ctx context.Context) (*Overview, error) {
	var (
		lots     []*domain.Lot
		snapshot *domain.PriceSnapshot
		priceErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lots, err = s.LotRepo.List(gctx, domain.AllLots())
		if err != nil {
			return fmt.Errorf("failed to list lots: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		snapshot, priceErr = s.Prices.FetchSnapshot(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status := PriceStatusLive
	if priceErr != nil {
		snapshot, status = s.fallback(snapshot)
		s.Logger.Warn("valuing portfolio without live prices",
			zap.String("price_status", string(status)),
			zap.Error(priceErr))
	}

	return &Overview{
		Metrics:     valuation.Valuate(lots, snapshot),
		Snapshot:    snapshot,
		PriceStatus: status,
		PriceError:  priceErr,
	}, nil
}

// CurrentPrices returns the current snapshot, falling back to the last good one
// and then to a partial one.
// The error is returned only when no snapshot is available at all.
func (s *PortfolioService) CurrentPrices(ctx context.Context) (*domain.PriceSnapshot, PriceStatus, error) {
	snapshot, err := s.Prices.FetchSnapshot(ctx)
	if err == nil {
		return snapshot, PriceStatusLive, nil
	}

	snapshot, status := s.fallback(snapshot)
	if snapshot == nil {
		return nil, status, err
	}
	s.Logger.Warn("serving prices without a live snapshot",
		zap.String("price_status", string(status)),
		zap.Error(err))
	return snapshot, status, nil
}

// fallback picks the snapshot to use after a failed fetch.
// partial is whatever the failed fetch still returned, possibly nil.
func (s *PortfolioService) fallback(partial *domain.PriceSnapshot) (*domain.PriceSnapshot, PriceStatus) {
	if last := s.Prices.LastGood(); last != nil {
		return last, PriceStatusStale
	}
	if partial != nil {
		return partial, PriceStatusPartial
	}
	return nil, PriceStatusUnavailable
}
