package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

type reportCmd struct {
	raw   bool
	style string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "render today's stock report" }
func (*reportCmd) Usage() string {
	return `report [-raw] [-style dark|light|notty]

  Prints the headline numbers, the per-category breakdown, the expiring
  items and the shopping list.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "print markdown without rendering")
	f.StringVar(&c.style, "style", "dark", "glamour style")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockctl: %v\n", err)
		return subcommands.ExitFailure
	}

	md := a.reporting.Markdown(a.reporting.BuildDailyReport())
	if c.raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}

	out, err := glamour.Render(md, c.style)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
