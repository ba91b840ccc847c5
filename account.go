package toypayments

import (
	"errors"
	"fmt"
)

// Account owns one client's fund state and the arithmetic rules of deposits,
// withdrawals, holds, releases and chargebacks.
//
// The locked flag gates only the two client-initiated cash movements (deposit,
// withdraw). Hold, release and chargeback are ledger-initiated corrections and
// stay processable after a lock, otherwise an account could never be unwound
// after fraud detection.
type Account struct {
	client    uint16
	available Amount
	held      Amount
	locked    bool
}

// NewAccount creates an empty, unlocked account for the given client.
func NewAccount(client uint16) *Account {
	return &Account{client: client}
}

func (a *Account) Client() uint16    { return a.client }
func (a *Account) Available() Amount { return a.available }
func (a *Account) Held() Amount      { return a.held }
func (a *Account) Locked() bool      { return a.locked }

// Total returns available + held. It is always derived, never stored.
func (a *Account) Total() Amount { return a.available.Add(a.held) }

// Account-level failures. InsufficientFundsError and
// InsufficientHeldFundsError carry the amounts involved; the rest are plain
// sentinels.
var (
	ErrAccountLocked  = errors.New("account is locked")
	ErrNegativeAmount = errors.New("negative amount not allowed")
)

// InsufficientFundsError reports a withdrawal or hold exceeding the available
// balance.
type InsufficientFundsError struct {
	Requested Amount
	Available Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: requested %s, available %s", e.Requested, e.Available)
}

// InsufficientHeldFundsError reports a release or chargeback exceeding the
// held balance.
type InsufficientHeldFundsError struct {
	Requested Amount
	Held      Amount
}

func (e *InsufficientHeldFundsError) Error() string {
	return fmt.Sprintf("insufficient held funds: requested %s, held %s", e.Requested, e.Held)
}

// Deposit adds amount to the available balance.
func (a *Account) Deposit(amount Amount) error {
	if a.locked {
		return ErrAccountLocked
	}
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	a.available = a.available.Add(amount)
	return nil
}

// Withdraw removes amount from the available balance.
func (a *Account) Withdraw(amount Amount) error {
	if a.locked {
		return ErrAccountLocked
	}
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if a.available.LessThan(amount) {
		return &InsufficientFundsError{Requested: amount, Available: a.available}
	}
	a.available = a.available.Sub(amount)
	return nil
}

// Hold moves amount from available to held. Not gated by locked: disputes must
// still be processable against a locked account.
func (a *Account) Hold(amount Amount) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if a.available.LessThan(amount) {
		return &InsufficientFundsError{Requested: amount, Available: a.available}
	}
	a.available = a.available.Sub(amount)
	a.held = a.held.Add(amount)
	return nil
}

// Release moves amount from held back to available. Not gated by locked.
func (a *Account) Release(amount Amount) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if a.held.LessThan(amount) {
		return &InsufficientHeldFundsError{Requested: amount, Held: a.held}
	}
	a.held = a.held.Sub(amount)
	a.available = a.available.Add(amount)
	return nil
}

// Chargeback removes amount from held and locks the account permanently.
// Not gated by locked, so a second chargeback on a different held amount still
// succeeds.
func (a *Account) Chargeback(amount Amount) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	if a.held.LessThan(amount) {
		return &InsufficientHeldFundsError{Requested: amount, Held: a.held}
	}
	a.held = a.held.Sub(amount)
	a.locked = true
	return nil
}
