// Command listingctl computes listing metrics from the command line.
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
	commander.Register(&computeCmd{out: os.Stdout}, "listings")
	commander.Register(&reportCmd{out: os.Stdout}, "listings")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
