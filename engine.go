package toypayments

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"go.uber.org/zap"
)

// StoredTransaction is a previously accepted deposit or withdrawal that may be
// referenced by later dispute, resolve and chargeback records. The amount is
// immutable once stored; the record is retained for the lifetime of the run so
// the same transaction can go through repeated dispute/resolve cycles.
type StoredTransaction struct {
	kind     RecordType
	client   uint16
	amount   Amount
	disputed bool
}

// Engine processes one transaction record at a time and maintains all account
// and transaction state for a run.
//
// Both maps are exclusively owned by the engine instance; construct one engine
// per run and pass it explicitly. The engine is not safe for concurrent use:
// embedding it in a server requires per-client locking of accounts and
// serialized access to the transaction-id map.
type Engine struct {
	// accounts indexed by client id, created lazily on first reference.
	accounts map[uint16]*Account
	// accepted deposits and withdrawals indexed by their globally unique id.
	transactions map[uint32]*StoredTransaction

	log *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for debug tracing. The engine performs no
// other I/O.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates an empty engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		accounts:     make(map[uint16]*Account),
		transactions: make(map[uint32]*StoredTransaction),
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine-level failures. Account failures (ErrAccountLocked, ErrNegativeAmount,
// InsufficientFundsError, InsufficientHeldFundsError) surface wrapped with the
// transaction and client ids.
var (
	ErrMissingAmount           = errors.New("amount is required")
	ErrDuplicateTransaction    = errors.New("duplicate transaction id")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrClientNotFound          = errors.New("client not found")
	ErrClientMismatch          = errors.New("client mismatch")
	ErrAlreadyDisputed         = errors.New("already under dispute")
	ErrNotUnderDispute         = errors.New("not under dispute")
	ErrCannotDisputeWithdrawal = errors.New("cannot dispute a withdrawal")
)

// Process applies a single record. A non-nil error means the record was
// rejected with no state change; the engine is ready for the next record
// either way.
func (e *Engine) Process(rec Record) error {
	switch rec.Type {
	case TypeDeposit:
		return e.processDeposit(rec)
	case TypeWithdrawal:
		return e.processWithdrawal(rec)
	case TypeDispute:
		return e.processDispute(rec)
	case TypeResolve:
		return e.processResolve(rec)
	case TypeChargeback:
		return e.processChargeback(rec)
	default:
		return fmt.Errorf("tx %d: unknown record type %q", rec.Tx, rec.Type)
	}
}

// account returns the client's account, creating it on first reference.
func (e *Engine) account(client uint16) *Account {
	a, ok := e.accounts[client]
	if !ok {
		a = NewAccount(client)
		e.accounts[client] = a
		e.log.Debug("created account", zap.Uint16("client", client))
	}
	return a
}

func (e *Engine) processDeposit(rec Record) error {
	if rec.Amount == nil {
		return fmt.Errorf("tx %d: deposit: %w", rec.Tx, ErrMissingAmount)
	}
	if _, ok := e.transactions[rec.Tx]; ok {
		return fmt.Errorf("tx %d: %w", rec.Tx, ErrDuplicateTransaction)
	}

	account := e.account(rec.Client)
	if err := account.Deposit(*rec.Amount); err != nil {
		return fmt.Errorf("tx %d (client %d): %w", rec.Tx, rec.Client, err)
	}

	// The record is stored only after the account call succeeds: the stored
	// transaction and the fund mutation commit together or not at all.
	e.transactions[rec.Tx] = &StoredTransaction{kind: TypeDeposit, client: rec.Client, amount: *rec.Amount}

	e.log.Debug("deposit accepted",
		zap.Uint32("tx", rec.Tx), zap.Uint16("client", rec.Client), zap.Stringer("amount", rec.Amount))
	return nil
}

func (e *Engine) processWithdrawal(rec Record) error {
	if rec.Amount == nil {
		return fmt.Errorf("tx %d: withdrawal: %w", rec.Tx, ErrMissingAmount)
	}
	if _, ok := e.transactions[rec.Tx]; ok {
		return fmt.Errorf("tx %d: %w", rec.Tx, ErrDuplicateTransaction)
	}

	// A failing withdrawal still materializes an empty account: the client was
	// referenced and must appear in the final output.
	account := e.account(rec.Client)
	if err := account.Withdraw(*rec.Amount); err != nil {
		return fmt.Errorf("tx %d (client %d): %w", rec.Tx, rec.Client, err)
	}

	// Withdrawals are stored so that a dispute against one is reported as
	// CannotDisputeWithdrawal rather than TransactionNotFound.
	e.transactions[rec.Tx] = &StoredTransaction{kind: TypeWithdrawal, client: rec.Client, amount: *rec.Amount}

	e.log.Debug("withdrawal accepted",
		zap.Uint32("tx", rec.Tx), zap.Uint16("client", rec.Client), zap.Stringer("amount", rec.Amount))
	return nil
}

// lookup fetches the stored transaction and verifies the record's client owns
// it. The checks are shared by dispute, resolve and chargeback.
func (e *Engine) lookup(rec Record) (*StoredTransaction, error) {
	stored, ok := e.transactions[rec.Tx]
	if !ok {
		return nil, fmt.Errorf("tx %d: %w", rec.Tx, ErrTransactionNotFound)
	}
	if stored.client != rec.Client {
		return nil, fmt.Errorf("tx %d: %w: expected client %d, got %d",
			rec.Tx, ErrClientMismatch, stored.client, rec.Client)
	}
	return stored, nil
}

func (e *Engine) processDispute(rec Record) error {
	stored, err := e.lookup(rec)
	if err != nil {
		return err
	}
	if stored.disputed {
		return fmt.Errorf("tx %d: %w", rec.Tx, ErrAlreadyDisputed)
	}
	if stored.kind != TypeDeposit {
		return fmt.Errorf("tx %d: %w", rec.Tx, ErrCannotDisputeWithdrawal)
	}

	account, ok := e.accounts[rec.Client]
	if !ok {
		return fmt.Errorf("client %d: %w", rec.Client, ErrClientNotFound)
	}
	if err := account.Hold(stored.amount); err != nil {
		return fmt.Errorf("tx %d (client %d): %w", rec.Tx, rec.Client, err)
	}
	stored.disputed = true

	e.log.Debug("dispute opened", zap.Uint32("tx", rec.Tx), zap.Uint16("client", rec.Client))
	return nil
}

func (e *Engine) processResolve(rec Record) error {
	stored, err := e.lookup(rec)
	if err != nil {
		return err
	}
	if !stored.disputed {
		return fmt.Errorf("tx %d: %w", rec.Tx, ErrNotUnderDispute)
	}

	account, ok := e.accounts[rec.Client]
	if !ok {
		return fmt.Errorf("client %d: %w", rec.Client, ErrClientNotFound)
	}
	if err := account.Release(stored.amount); err != nil {
		return fmt.Errorf("tx %d (client %d): %w", rec.Tx, rec.Client, err)
	}
	stored.disputed = false

	e.log.Debug("dispute resolved", zap.Uint32("tx", rec.Tx), zap.Uint16("client", rec.Client))
	return nil
}

func (e *Engine) processChargeback(rec Record) error {
	stored, err := e.lookup(rec)
	if err != nil {
		return err
	}
	if !stored.disputed {
		return fmt.Errorf("tx %d: %w", rec.Tx, ErrNotUnderDispute)
	}

	account, ok := e.accounts[rec.Client]
	if !ok {
		return fmt.Errorf("client %d: %w", rec.Client, ErrClientNotFound)
	}
	if err := account.Chargeback(stored.amount); err != nil {
		return fmt.Errorf("tx %d (client %d): %w", rec.Tx, rec.Client, err)
	}
	// The dispute is closed. The record stays around, and only the "not
	// currently disputed" rule guards a future dispute against the same id.
	stored.disputed = false

	e.log.Debug("chargeback applied", zap.Uint32("tx", rec.Tx), zap.Uint16("client", rec.Client))
	return nil
}

// Accounts iterates over all accounts ever referenced, in unspecified order.
// Sorting is the output adapter's responsibility.
func (e *Engine) Accounts() iter.Seq[*Account] {
	return maps.Values(e.accounts)
}

// Account returns the account for the given client, or nil if the client was
// never referenced.
func (e *Engine) Account(client uint16) *Account {
	return e.accounts[client]
}
