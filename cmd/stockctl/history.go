package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/mamadbah2/stocktake/internal/service/reporting"
)

type historyCmd struct {
	csv bool
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the change history" }
func (*historyCmd) Usage() string {
	return `history [-csv]

  Lists the retained changes, most recent first.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.csv, "csv", false, "write CSV with a Time,Item,Action header")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockctl: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.csv {
		if err := a.history.WriteCSV(os.Stdout, a.loc); err != nil {
			fmt.Fprintf(os.Stderr, "history: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tITEM\tACTION")
	for _, row := range a.history.Rows(a.loc) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", row[0], row[1], row[2])
	}
	if err := w.Flush(); err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type sheetsPushCmd struct{}

func (*sheetsPushCmd) Name() string     { return "sheets-push" }
func (*sheetsPushCmd) Synopsis() string { return "replace the History sheet with the change history" }
func (*sheetsPushCmd) Usage() string {
	return `sheets-push

  Clears the History tab of the configured spreadsheet and writes the
  retained changes to it.
`
}

func (*sheetsPushCmd) SetFlags(*flag.FlagSet) {}

func (*sheetsPushCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockctl: %v\n", err)
		return subcommands.ExitFailure
	}

	rows, err := a.reporting.PushHistory(ctx)
	if errors.Is(err, reporting.ErrSheetsDisabled) {
		fmt.Fprintln(os.Stderr, "set GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID first")
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheets-push: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "pushed %d rows\n", rows)
	return subcommands.ExitSuccess
}
