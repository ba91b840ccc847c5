package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dbrowne/toypayments"
)

// errorSink records every rejected record of a run without ever failing the
// run. Rejections are appended to a log file tagged with a per-run id; when
// the file cannot be created the sink silently discards, matching the rule
// that only input and output I/O may be fatal.
type errorSink struct {
	run    string
	w      *bufio.Writer
	closer io.Closer
	log    *zap.Logger
	tally  map[string]int
	count  int
}

func newErrorSink(path string, log *zap.Logger) *errorSink {
	s := &errorSink{
		run:   uuid.NewString(),
		log:   log,
		tally: make(map[string]int),
	}
	f, err := os.Create(path)
	if err != nil {
		log.Debug("cannot create error log, discarding rejections",
			zap.String("path", path), zap.Error(err))
		s.w = bufio.NewWriter(io.Discard)
		return s
	}
	s.w = bufio.NewWriter(f)
	s.closer = f
	return s
}

// Record logs one rejection and keeps counting.
func (s *errorSink) Record(err error) {
	s.count++
	s.tally[reason(err)]++
	fmt.Fprintf(s.w, "run %s: %v\n", s.run, err)
	s.log.Warn("record rejected", zap.String("run", s.run), zap.Error(err))
}

// Count returns the number of rejected records so far.
func (s *errorSink) Count() int { return s.count }

// Tally returns rejection counts grouped by reason.
func (s *errorSink) Tally() map[string]int { return s.tally }

func (s *errorSink) Close() {
	s.w.Flush()
	if s.closer != nil {
		s.closer.Close()
	}
}

// reason maps an error to a short stable label for the rejection tally.
func reason(err error) string {
	var insufficient *toypayments.InsufficientFundsError
	var insufficientHeld *toypayments.InsufficientHeldFundsError
	switch {
	case errors.Is(err, toypayments.ErrMissingAmount):
		return "missing amount"
	case errors.Is(err, toypayments.ErrDuplicateTransaction):
		return "duplicate transaction"
	case errors.Is(err, toypayments.ErrTransactionNotFound):
		return "transaction not found"
	case errors.Is(err, toypayments.ErrClientNotFound):
		return "client not found"
	case errors.Is(err, toypayments.ErrClientMismatch):
		return "client mismatch"
	case errors.Is(err, toypayments.ErrAlreadyDisputed):
		return "already disputed"
	case errors.Is(err, toypayments.ErrNotUnderDispute):
		return "not under dispute"
	case errors.Is(err, toypayments.ErrCannotDisputeWithdrawal):
		return "dispute of withdrawal"
	case errors.Is(err, toypayments.ErrAccountLocked):
		return "account locked"
	case errors.Is(err, toypayments.ErrNegativeAmount):
		return "negative amount"
	case errors.As(err, &insufficient):
		return "insufficient funds"
	case errors.As(err, &insufficientHeld):
		return "insufficient held funds"
	default:
		return "malformed record"
	}
}
