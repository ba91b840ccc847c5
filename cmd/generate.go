package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/dbrowne/toypayments"
)

type generateCmd struct {
	out    string
	config toypayments.GeneratorConfig

	accounts uint
}

func (*generateCmd) Name() string     { return "generate" }
func (*generateCmd) Synopsis() string { return "generate a random transaction CSV for testing" }
func (*generateCmd) Usage() string {
	return `tp generate [flags]

  Writes a random but well-formed transaction stream: interleaved deposits and
  withdrawals per account, followed by disputes on a subset of the deposits
  and a resolve or chargeback for each. Use -seed for reproducible output.
`
}

func (p *generateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.out, "o", "-", "Output file, - for stdout.")
	f.UintVar(&p.accounts, "accounts", 10, "Number of client accounts.")
	f.IntVar(&p.config.MinPerAccount, "min-tx", 3, "Minimum cash movements per account.")
	f.IntVar(&p.config.MaxPerAccount, "max-tx", 10, "Maximum cash movements per account.")
	f.Float64Var(&p.config.MinAmount, "min-amount", 1, "Minimum amount.")
	f.Float64Var(&p.config.MaxAmount, "max-amount", 1000, "Maximum amount.")
	f.IntVar(&p.config.Precision, "precision", 4, "Fractional digits on amounts (0-4).")
	f.Float64Var(&p.config.WithdrawalProbability, "withdrawal-prob", 0.3, "Probability a movement is a withdrawal.")
	f.Float64Var(&p.config.OverdrawProbability, "overdraw-prob", 0.1, "Probability a withdrawal ignores the balance.")
	f.Float64Var(&p.config.DisputeProbability, "dispute-prob", 0.1, "Probability a deposit is disputed.")
	f.Float64Var(&p.config.ResolveProbability, "resolve-prob", 0.5, "Probability a dispute resolves instead of charging back.")
	f.Int64Var(&p.config.Seed, "seed", 0, "Random seed, 0 for non-deterministic.")
}

func (p *generateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.accounts == 0 || p.accounts > 65535 {
		fmt.Fprintln(os.Stderr, "Error: -accounts must be between 1 and 65535")
		return subcommands.ExitUsageError
	}
	p.config.Accounts = uint16(p.accounts)

	var w io.Writer = os.Stdout
	if p.out != "-" {
		out, err := os.Create(p.out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %q: %v\n", p.out, err)
			return subcommands.ExitFailure
		}
		defer out.Close()
		w = out
	}

	if err := p.config.Generate(w); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
