package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dbrowne/toypayments"
	"github.com/dbrowne/toypayments/renderer"
)

type reportCmd struct {
	errorLog string
	currency string
}

func (*reportCmd) Name() string { return "report" }
func (*reportCmd) Synopsis() string {
	return "process a transaction CSV and render an account statement"
}
func (*reportCmd) Usage() string {
	return `tp report [-errors <file>] [-currency <code>] <transactions.csv>

  Processes the transaction file like "tp process", then renders a markdown
  statement of the final accounts and the tally of rejected records.
  With -currency, amounts are displayed as that currency (formatting only,
  no conversion).
`
}

func (p *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.errorLog, "errors", "errors.log", "File receiving rejected records.")
	f.StringVar(&p.currency, "currency", "", "Display currency code (e.g. USD, EUR).")
}

func (p *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: tp report <transactions.csv>")
		return subcommands.ExitUsageError
	}

	logger := newLogger()
	defer logger.Sync()

	in, err := os.Open(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", f.Arg(0), err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	sink := newErrorSink(p.errorLog, logger)
	defer sink.Close()

	engine := toypayments.NewEngine(toypayments.WithLogger(logger))
	runStream(engine, in, sink)

	printMarkdown(renderer.Statement(engine.Snapshots(), sink.Tally(), p.currency))
	return subcommands.ExitSuccess
}
