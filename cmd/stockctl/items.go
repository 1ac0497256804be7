package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write all items as JSON" }
func (*exportCmd) Usage() string {
	return `export [-o <file>]

  Writes the current items as an indented JSON array, to stdout by default.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockctl: %v\n", err)
		return subcommands.ExitFailure
	}

	data, err := a.store.ExportItemsJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.output == "" {
		fmt.Println(string(data))
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "exported %d items to %s\n", len(a.store.Items()), c.output)
	return subcommands.ExitSuccess
}

type importCmd struct {
	file string
	yes  bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace all items with a JSON export" }
func (*importCmd) Usage() string {
	return `import -f <file> [-y]

  Replaces the whole item collection with the array in <file> ("-" reads
  stdin). Asks for confirmation unless -y is given.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "JSON file to import, - for stdin")
	f.BoolVar(&c.yes, "y", false, "do not ask for confirmation")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "-f is required")
		return subcommands.ExitUsageError
	}
	if c.file == "-" && !c.yes {
		fmt.Fprintln(os.Stderr, "reading from stdin requires -y")
		return subcommands.ExitUsageError
	}

	var (
		data []byte
		err  error
	)
	if c.file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(c.file)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		return subcommands.ExitFailure
	}

	a, err := openApp(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stockctl: %v\n", err)
		return subcommands.ExitFailure
	}

	decision := models.DecisionConfirmed
	if !c.yes {
		decision = promptConfirmer(os.Stdin, os.Stderr).RequestConfirmation(models.PromptImportItems)
	}

	count, err := a.store.ImportItems(operator, data, decision)
	switch {
	case errors.Is(err, models.ErrAborted):
		fmt.Fprintln(os.Stderr, "import cancelled")
		return subcommands.ExitFailure
	case models.Failed(err):
		fmt.Fprintf(os.Stderr, "import: %v\n", err)
		return subcommands.ExitFailure
	case err != nil:
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	fmt.Fprintf(os.Stderr, "imported %d items\n", count)
	return subcommands.ExitSuccess
}
