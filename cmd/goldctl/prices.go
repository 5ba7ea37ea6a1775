package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/simaogato/goldfolio-backend/internal/adapter/price/bigpara"
	"github.com/simaogato/goldfolio-backend/internal/domain"
	"github.com/simaogato/goldfolio-backend/pkg/logger"
)

type pricesCmd struct {
	url     string
	timeout time.Duration
	verbose bool
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "fetch and print the current gold and silver prices" }
func (*pricesCmd) Usage() string {
	return `goldctl prices [-url <page>] [-timeout 5s] [-v]

Fetches the market page once and prints the per-gram prices with the time
the source reported them. Unreadable prices are shown as n/a. If the page
layout has drifted, whatever could still be read is printed with a warning.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.url, "url", bigpara.DefaultURL, "price page to read")
	f.DurationVar(&c.timeout, "timeout", bigpara.DefaultTimeout, "upstream request timeout")
	f.BoolVar(&c.verbose, "v", false, "log upstream diagnostics to stderr")
}

func (c *pricesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	level := "error"
	if c.verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer func() { _ = log.Sync() }()

	client, err := bigpara.NewClient(bigpara.Config{URL: c.url, Timeout: c.timeout, CacheTTL: -1}, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	snap, err := client.FetchSnapshot(ctx)
	if snap == nil {
		fmt.Fprintln(os.Stderr, "Error: failed to fetch prices:", err)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: showing partial prices:", err)
	}

	printSnapshot(os.Stdout, snap)
	return subcommands.ExitSuccess
}

func printSnapshot(out io.Writer, snap *domain.PriceSnapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, key := range domain.PriceKeys {
		fmt.Fprintf(w, "%s\t%s\n", assetLabel(key), formatPrice(snap.PriceFor(key)))
	}
	_ = w.Flush()
	fmt.Fprintf(out, "as of %s\n", snap.ObservedAt.In(bigpara.SourceZone).Format("2006-01-02 15:04 MST"))
}
