package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/simaogato/goldfolio-backend/internal/adapter/price/bigpara"
	"github.com/simaogato/goldfolio-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/goldfolio-backend/internal/config"
	"github.com/simaogato/goldfolio-backend/internal/usecase/portfolio"
	"github.com/simaogato/goldfolio-backend/pkg/logger"
)

type portfolioCmd struct {
	envFile  string
	showSold bool
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "print the valuation of every recorded lot" }
func (*portfolioCmd) Usage() string {
	return `goldctl portfolio [-env .env] [-sold]

Reads the lots from the database configured by the DB_* variables, values
them at the current market prices and prints totals, holdings and
allocation. When prices cannot be fetched the lots are shown at cost.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.envFile, "env", ".env", "optional env file to load before the environment")
	f.BoolVar(&c.showSold, "sold", false, "also list sold lots with their realized profit")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	log, err := logger.New("error")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer func() { _ = log.Sync() }()

	db, err := postgres.NewDB(ctx, cfg.DBConnStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	prices, err := bigpara.NewClient(bigpara.Config{
		URL:      cfg.PriceSourceURL,
		Timeout:  cfg.PriceFetchTimeout,
		CacheTTL: -1,
	}, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	service := portfolio.NewPortfolioService(postgres.NewLotRepository(db), prices, log)
	overview, err := service.Overview(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	printOverview(os.Stdout, overview, c.showSold)
	return subcommands.ExitSuccess
}

func printOverview(out io.Writer, o *portfolio.Overview, showSold bool) {
	m := o.Metrics

	if o.PriceStatus != portfolio.PriceStatusLive {
		fmt.Fprintf(out, "warning: prices %s: %v\n\n", o.PriceStatus, o.PriceError)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Asset\tAmount\tBought at\tCost\tPrice\tValue\tProfit\t%\t")
	for _, v := range m.Active {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			assetLabel(v.Lot.AssetType),
			formatGrams(v.Lot.Amount),
			formatMoney(v.Lot.PurchasePrice),
			formatMoney(v.Cost),
			formatPrice(v.CurrentPrice),
			formatMoney(v.CurrentValue),
			formatMoney(v.Profit),
			formatPercent(v.ProfitPercent))
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Total cost:      %s\n", formatMoney(m.TotalCost))
	fmt.Fprintf(out, "Current value:   %s\n", formatMoney(m.TotalCurrentValue))
	fmt.Fprintf(out, "Profit:          %s (%s)\n", formatMoney(m.TotalProfit), formatPercent(m.TotalProfitPercent))
	fmt.Fprintf(out, "Realized profit: %s\n", formatMoney(m.RealizedProfit))
	if m.Unpriced > 0 {
		fmt.Fprintf(out, "Unpriced lots:   %d\n", m.Unpriced)
	}

	if len(m.Allocation) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Allocation:")
		for _, slice := range m.Allocation {
			fmt.Fprintf(out, "  %s: %s\n", assetLabel(slice.AssetType), formatMoney(slice.Value))
		}
	}

	if showSold && len(m.Sold) > 0 {
		fmt.Fprintln(out)
		sw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(sw, "Sold\tAmount\tBought at\tSold at\tRealized\t")
		for _, v := range m.Sold {
			fmt.Fprintf(sw, "%s\t%s\t%s\t%s\t%s\t\n",
				assetLabel(v.Lot.AssetType),
				formatGrams(v.Lot.Amount),
				formatMoney(v.Lot.PurchasePrice),
				formatMoney(*v.Lot.SellingPrice),
				formatMoney(v.RealizedProfit))
		}
		_ = sw.Flush()
	}

	if o.Snapshot != nil {
		fmt.Fprintf(out, "\nprices as of %s\n", o.Snapshot.ObservedAt.In(bigpara.SourceZone).Format("2006-01-02 15:04 MST"))
	}
}
