// Command goldctl prints current precious-metal prices and the valuation of
// the lots recorded in the goldfolio database.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&pricesCmd{}, "")
	commander.Register(&portfolioCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
