// Command stockctl administers the stock records on disk: export and import,
// history, the daily digest and operator tokens. Stop the server before
// importing, since both processes write the same files.
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

	commander.Register(&exportCmd{}, "items")
	commander.Register(&importCmd{}, "items")
	commander.Register(&historyCmd{}, "history")
	commander.Register(&sheetsPushCmd{}, "history")
	commander.Register(&reportCmd{}, "reports")
	commander.Register(&tokenCmd{}, "auth")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
