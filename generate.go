package toypayments

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
)

// GeneratorConfig controls the random transaction-stream generator. The
// generator produces well-formed CSV input for load and soak testing the
// engine; it deliberately includes overdraws and disputes so that a run
// exercises the failure paths too.
type GeneratorConfig struct {
	Accounts      uint16 // number of client accounts
	MinPerAccount int    // minimum deposits/withdrawals per account
	MaxPerAccount int    // maximum deposits/withdrawals per account

	MinAmount float64
	MaxAmount float64
	Precision int // fractional digits, at most MaxFractionDigits

	WithdrawalProbability float64 // chance a cash movement is a withdrawal
	OverdrawProbability   float64 // chance a withdrawal ignores the tracked balance
	DisputeProbability    float64 // chance a deposit is later disputed
	ResolveProbability    float64 // chance a dispute resolves rather than charges back

	Seed int64 // 0 means non-deterministic
}

// Validate checks the configuration ranges.
func (c GeneratorConfig) Validate() error {
	if c.Accounts == 0 {
		return fmt.Errorf("accounts must be > 0")
	}
	if c.MinPerAccount <= 0 || c.MinPerAccount > c.MaxPerAccount {
		return fmt.Errorf("per-account transaction range %d..%d is invalid", c.MinPerAccount, c.MaxPerAccount)
	}
	if c.MinAmount < 0 || c.MinAmount > c.MaxAmount {
		return fmt.Errorf("amount range %g..%g is invalid", c.MinAmount, c.MaxAmount)
	}
	if c.Precision < 0 || c.Precision > MaxFractionDigits {
		return fmt.Errorf("precision must be between 0 and %d", MaxFractionDigits)
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"withdrawal-probability", c.WithdrawalProbability},
		{"overdraw-probability", c.OverdrawProbability},
		{"dispute-probability", c.DisputeProbability},
		{"resolve-probability", c.ResolveProbability},
	} {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%s must be between 0.0 and 1.0", p.name)
		}
	}
	return nil
}

// genState tracks one account's approximate balance during generation so
// withdrawals usually stay within funds.
type genState struct {
	available float64
}

type genDispute struct {
	client uint16
	tx     uint32
}

// Generate writes a random transaction stream to w: a burst of interleaved
// deposits and withdrawals across all accounts, followed by disputes against a
// random subset of the deposits and a resolve or chargeback for each dispute.
// Transaction ids are globally unique and strictly increasing.
func (c GeneratorConfig) Generate(w io.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	seed := c.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	rng := rand.New(rand.NewSource(seed))

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "type,client,tx,amount")

	states := make(map[uint16]*genState)
	remaining := make(map[uint16]int)
	var active []uint16
	for client := uint16(1); ; client++ {
		states[client] = &genState{}
		remaining[client] = c.MinPerAccount + rng.Intn(c.MaxPerAccount-c.MinPerAccount+1)
		active = append(active, client)
		if client == c.Accounts {
			break
		}
	}

	var disputable []genDispute
	nextTx := uint32(1)

	for len(active) > 0 {
		idx := rng.Intn(len(active))
		client := active[idx]
		state := states[client]

		if rng.Float64() < c.WithdrawalProbability {
			var amount float64
			if state.available <= 0 || rng.Float64() < c.OverdrawProbability {
				amount = c.amount(rng)
			} else {
				max := math.Min(state.available, c.MaxAmount)
				min := math.Min(c.MinAmount, max)
				amount = c.round(min + rng.Float64()*(max-min))
			}
			fmt.Fprintf(bw, "withdrawal,%d,%d,%.*f\n", client, nextTx, c.Precision, amount)
			if amount <= state.available {
				state.available -= amount
			}
		} else {
			amount := c.amount(rng)
			fmt.Fprintf(bw, "deposit,%d,%d,%.*f\n", client, nextTx, c.Precision, amount)
			state.available += amount
			if rng.Float64() < c.DisputeProbability {
				disputable = append(disputable, genDispute{client: client, tx: nextTx})
			}
		}

		nextTx++
		remaining[client]--
		if remaining[client] == 0 {
			active[idx] = active[len(active)-1]
			active = active[:len(active)-1]
		}
	}

	rng.Shuffle(len(disputable), func(i, j int) {
		disputable[i], disputable[j] = disputable[j], disputable[i]
	})
	for _, d := range disputable {
		fmt.Fprintf(bw, "dispute,%d,%d,\n", d.client, d.tx)
	}
	for _, d := range disputable {
		if rng.Float64() < c.ResolveProbability {
			fmt.Fprintf(bw, "resolve,%d,%d,\n", d.client, d.tx)
		} else {
			fmt.Fprintf(bw, "chargeback,%d,%d,\n", d.client, d.tx)
		}
	}

	return bw.Flush()
}

func (c GeneratorConfig) amount(rng *rand.Rand) float64 {
	return c.round(c.MinAmount + rng.Float64()*(c.MaxAmount-c.MinAmount))
}

func (c GeneratorConfig) round(v float64) float64 {
	factor := math.Pow10(c.Precision)
	return math.Round(v*factor) / factor
}
