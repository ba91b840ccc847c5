package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/dbrowne/toypayments"
)

type processCmd struct {
	errorLog string
}

func (*processCmd) Name() string { return "process" }
func (*processCmd) Synopsis() string {
	return "process a transaction CSV and print the final account balances"
}
func (*processCmd) Usage() string {
	return `tp process [-errors <file>] <transactions.csv>

  Streams the transaction file through the engine, one record at a time, and
  prints the final per-client balances as CSV on stdout. Rejected records are
  appended to the error log and never stop the run.
`
}

func (p *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.errorLog, "errors", "errors.log", "File receiving rejected records.")
}

func (p *processCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: tp process <transactions.csv>")
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
	logger.Info("stream processed", zap.Int("rejected", sink.Count()))

	if err := toypayments.WriteSnapshots(os.Stdout, engine.Snapshots()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runStream feeds every record of r through the engine. Failures, whether
// parse- or engine-level, go to the sink and the stream continues.
func runStream(engine *toypayments.Engine, r io.Reader, sink *errorSink) {
	for rec, err := range toypayments.DecodeRecords(r) {
		if err != nil {
			sink.Record(fmt.Errorf("failed to parse record: %w", err))
			continue
		}
		if err := engine.Process(rec); err != nil {
			sink.Record(err)
		}
	}
}
