package toypayments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deposit(client uint16, tx uint32, amount string) Record {
	a, err := ParseAmount(amount)
	if err != nil {
		panic(err)
	}
	return Record{Type: TypeDeposit, Client: client, Tx: tx, Amount: &a}
}

func withdrawal(client uint16, tx uint32, amount string) Record {
	a, err := ParseAmount(amount)
	if err != nil {
		panic(err)
	}
	return Record{Type: TypeWithdrawal, Client: client, Tx: tx, Amount: &a}
}

func dispute(client uint16, tx uint32) Record {
	return Record{Type: TypeDispute, Client: client, Tx: tx}
}

func resolve(client uint16, tx uint32) Record {
	return Record{Type: TypeResolve, Client: client, Tx: tx}
}

func chargeback(client uint16, tx uint32) Record {
	return Record{Type: TypeChargeback, Client: client, Tx: tx}
}

func TestEngine_BasicDepositWithdrawal(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(deposit(1, 2, "50.0")))
	require.NoError(t, e.Process(withdrawal(1, 3, "75.0")))

	a := e.Account(1)
	require.NotNil(t, a)
	assert.Equal(t, "75.0000", a.Available().String())
	assert.Equal(t, "75.0000", a.Total().String())
}

func TestEngine_MultipleClients(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(deposit(2, 2, "200.0")))
	require.NoError(t, e.Process(withdrawal(1, 3, "50.0")))

	assert.Equal(t, "50.0000", e.Account(1).Available().String())
	assert.Equal(t, "200.0000", e.Account(2).Available().String())
}

func TestEngine_DisputeResolveFlow(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(dispute(1, 1)))

	a := e.Account(1)
	assert.Equal(t, "0.0000", a.Available().String())
	assert.Equal(t, "100.0000", a.Held().String())
	assert.Equal(t, "100.0000", a.Total().String())

	require.NoError(t, e.Process(resolve(1, 1)))
	assert.Equal(t, "100.0000", a.Available().String())
	assert.Equal(t, "0.0000", a.Held().String())
	assert.False(t, a.Locked())
}

func TestEngine_DisputeChargebackFlow(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(chargeback(1, 1)))

	a := e.Account(1)
	assert.Equal(t, "0.0000", a.Available().String())
	assert.Equal(t, "0.0000", a.Held().String())
	assert.Equal(t, "0.0000", a.Total().String())
	assert.True(t, a.Locked())
}

func TestEngine_MissingAmount(t *testing.T) {
	e := NewEngine()

	err := e.Process(Record{Type: TypeDeposit, Client: 1, Tx: 1})
	require.ErrorIs(t, err, ErrMissingAmount)

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	err = e.Process(Record{Type: TypeWithdrawal, Client: 1, Tx: 2})
	require.ErrorIs(t, err, ErrMissingAmount)
}

func TestEngine_DuplicateTransactionID(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	err := e.Process(deposit(1, 1, "50.0"))
	require.ErrorIs(t, err, ErrDuplicateTransaction)

	// The duplicate must not have touched the balance.
	assert.Equal(t, "100.0000", e.Account(1).Available().String())
}

func TestEngine_DuplicateIDAcrossClients(t *testing.T) {
	// Transaction ids are globally unique, not per client.
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	err := e.Process(deposit(2, 1, "200.0"))
	require.ErrorIs(t, err, ErrDuplicateTransaction)
}

func TestEngine_WithdrawalIDCollidesWithDeposit(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	err := e.Process(withdrawal(1, 1, "10.0"))
	require.ErrorIs(t, err, ErrDuplicateTransaction)
}

func TestEngine_WithdrawalInsufficientFunds(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "50.0")))
	err := e.Process(withdrawal(1, 2, "100.0"))

	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "100.0000", insufficient.Requested.String())
	assert.Equal(t, "50.0000", insufficient.Available.String())
}

func TestEngine_FailedWithdrawalStillCreatesAccount(t *testing.T) {
	e := NewEngine()

	err := e.Process(withdrawal(1, 1, "50.0"))
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)

	// The account was materialized and must appear in the output.
	a := e.Account(1)
	require.NotNil(t, a)
	assert.Equal(t, "0.0000", a.Available().String())

	rows := e.Snapshots()
	require.Len(t, rows, 1)
	assert.Equal(t, uint16(1), rows[0].Client)
}

func TestEngine_FailedWithdrawalNotStored(t *testing.T) {
	e := NewEngine()

	_ = e.Process(withdrawal(1, 1, "50.0")) // fails, must not be stored

	// The id stays free for a later transaction.
	require.NoError(t, e.Process(deposit(1, 1, "25.0")))
	assert.Equal(t, "25.0000", e.Account(1).Available().String())
}

func TestEngine_DisputeNonexistentTx(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.ErrorIs(t, e.Process(dispute(1, 999)), ErrTransactionNotFound)
	require.ErrorIs(t, e.Process(resolve(1, 999)), ErrTransactionNotFound)
	require.ErrorIs(t, e.Process(chargeback(1, 999)), ErrTransactionNotFound)
}

func TestEngine_ClientMismatch(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))

	// Client 2 tries to act on client 1's transaction.
	require.ErrorIs(t, e.Process(dispute(2, 1)), ErrClientMismatch)
	require.NoError(t, e.Process(dispute(1, 1)))
	require.ErrorIs(t, e.Process(resolve(2, 1)), ErrClientMismatch)
	require.ErrorIs(t, e.Process(chargeback(2, 1)), ErrClientMismatch)
}

func TestEngine_DoubleDisputeRejected(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.ErrorIs(t, e.Process(dispute(1, 1)), ErrAlreadyDisputed)
}

func TestEngine_DisputeWithdrawalRejected(t *testing.T) {
	// Withdrawals are stored but can never be disputed; the rejection is
	// distinct from TransactionNotFound.
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(withdrawal(1, 2, "50.0")))
	require.ErrorIs(t, e.Process(dispute(1, 2)), ErrCannotDisputeWithdrawal)
}

func TestEngine_ResolveNotDisputed(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.ErrorIs(t, e.Process(resolve(1, 1)), ErrNotUnderDispute)
}

func TestEngine_ChargebackWithoutDispute(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.ErrorIs(t, e.Process(chargeback(1, 1)), ErrNotUnderDispute)
	assert.False(t, e.Account(1).Locked())
}

func TestEngine_DisputeInsufficientFunds(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(withdrawal(1, 2, "80.0")))

	// Disputing the 100 deposit when only 20 is available fails.
	err := e.Process(dispute(1, 1))
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "100.0000", insufficient.Requested.String())
	assert.Equal(t, "20.0000", insufficient.Available.String())

	// No partial state change and the dispute flag stayed clear, so a later
	// dispute is still possible.
	a := e.Account(1)
	assert.Equal(t, "20.0000", a.Available().String())
	assert.Equal(t, "0.0000", a.Held().String())
	assert.False(t, a.Locked())
}

func TestEngine_RedisputeAfterResolve(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(resolve(1, 1)))

	// The record is back to not-disputed and can be disputed again, restoring
	// the same held amount.
	require.NoError(t, e.Process(dispute(1, 1)))
	a := e.Account(1)
	assert.Equal(t, "0.0000", a.Available().String())
	assert.Equal(t, "100.0000", a.Held().String())
}

func TestEngine_MultipleDisputeResolveCycles(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Process(dispute(1, 1)), "cycle %d", i)
		assert.Equal(t, "100.0000", e.Account(1).Held().String())
		require.NoError(t, e.Process(resolve(1, 1)), "cycle %d", i)
		assert.Equal(t, "100.0000", e.Account(1).Available().String())
	}
}

func TestEngine_DisputeAfterChargeback(t *testing.T) {
	// A chargeback clears the disputed flag; nothing but the "not currently
	// disputed" rule guards a later dispute against the same id. The second
	// dispute here fails only because the funds are gone.
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(chargeback(1, 1)))

	err := e.Process(dispute(1, 1))
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
}

func TestEngine_DisputeOnLockedAccount(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(deposit(1, 2, "50.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(chargeback(1, 1)))

	// The account is locked, but tx 2 can still be disputed.
	require.NoError(t, e.Process(dispute(1, 2)))

	a := e.Account(1)
	assert.True(t, a.Locked())
	assert.Equal(t, "0.0000", a.Available().String())
	assert.Equal(t, "50.0000", a.Held().String())
}

func TestEngine_ResolveOnLockedAccount(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(deposit(1, 2, "50.0")))
	require.NoError(t, e.Process(dispute(1, 2)))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(chargeback(1, 1)))

	// The account is locked, but the open dispute on tx 2 still resolves.
	require.NoError(t, e.Process(resolve(1, 2)))

	a := e.Account(1)
	assert.True(t, a.Locked())
	assert.Equal(t, "50.0000", a.Available().String())
	assert.Equal(t, "0.0000", a.Held().String())
}

func TestEngine_DepositOnLockedAccountRejected(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(dispute(1, 1)))
	require.NoError(t, e.Process(chargeback(1, 1)))

	require.ErrorIs(t, e.Process(deposit(1, 2, "10.0")), ErrAccountLocked)
	require.ErrorIs(t, e.Process(withdrawal(1, 3, "10.0")), ErrAccountLocked)

	// Rejected deposits on a locked account are not stored either.
	require.ErrorIs(t, e.Process(dispute(1, 2)), ErrTransactionNotFound)
}

func TestEngine_NegativeAmountsRejected(t *testing.T) {
	e := NewEngine()

	require.ErrorIs(t, e.Process(deposit(1, 1, "-100.0")), ErrNegativeAmount)

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.ErrorIs(t, e.Process(withdrawal(1, 2, "-50.0")), ErrNegativeAmount)
}

func TestEngine_ZeroAmounts(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "0.0")))
	assert.Equal(t, "0.0000", e.Account(1).Available().String())

	require.NoError(t, e.Process(deposit(1, 2, "100.0")))
	require.NoError(t, e.Process(withdrawal(1, 3, "0.0")))
	assert.Equal(t, "100.0000", e.Account(1).Available().String())
}

func TestEngine_IDBoundaries(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(0, 0, "100.0")))
	require.NoError(t, e.Process(dispute(0, 0)))
	assert.Equal(t, "100.0000", e.Account(0).Held().String())

	require.NoError(t, e.Process(deposit(^uint16(0), ^uint32(0), "100.0")))
	require.NoError(t, e.Process(dispute(^uint16(0), ^uint32(0))))
	assert.Equal(t, "100.0000", e.Account(^uint16(0)).Held().String())
}

func TestEngine_SmallAmountPrecision(t *testing.T) {
	e := NewEngine()

	// 10 deposits of 0.0001 must total exactly 0.0010.
	for tx := uint32(1); tx <= 10; tx++ {
		require.NoError(t, e.Process(deposit(1, tx, "0.0001")))
	}
	assert.Equal(t, "0.0010", e.Account(1).Available().String())
}

func TestEngine_Conservation(t *testing.T) {
	// Without chargebacks, available+held equals the sum of successful
	// deposits minus successful withdrawals, whatever the dispute churn.
	e := NewEngine()

	require.NoError(t, e.Process(deposit(1, 1, "100.0")))
	require.NoError(t, e.Process(deposit(1, 2, "40.5")))
	require.NoError(t, e.Process(withdrawal(1, 3, "20.25")))
	require.NoError(t, e.Process(dispute(1, 2)))
	require.NoError(t, e.Process(resolve(1, 2)))
	require.NoError(t, e.Process(dispute(1, 1)))

	a := e.Account(1)
	assert.Equal(t, "120.2500", a.Total().String())
}

func TestEngine_UnknownRecordType(t *testing.T) {
	e := NewEngine()
	require.Error(t, e.Process(Record{Type: "transfer", Client: 1, Tx: 1}))
}

func TestEngine_Snapshots(t *testing.T) {
	e := NewEngine()

	require.NoError(t, e.Process(deposit(7, 1, "10.0")))
	require.NoError(t, e.Process(deposit(2, 2, "20.0")))
	require.NoError(t, e.Process(deposit(5, 3, "30.0")))
	require.NoError(t, e.Process(dispute(5, 3)))
	require.NoError(t, e.Process(chargeback(5, 3)))

	rows := e.Snapshots()
	require.Len(t, rows, 3)
	assert.Equal(t, uint16(2), rows[0].Client)
	assert.Equal(t, uint16(5), rows[1].Client)
	assert.Equal(t, uint16(7), rows[2].Client)

	assert.Equal(t, "0.0000", rows[1].Available.String())
	assert.True(t, rows[1].Locked)
	assert.Equal(t, "10.0000", rows[2].Total.String())
}

func TestEngine_AccountsIterator(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Process(deposit(1, 1, "10.0")))
	require.NoError(t, e.Process(deposit(2, 2, "20.0")))

	seen := make(map[uint16]bool)
	for a := range e.Accounts() {
		seen[a.Client()] = true
	}
	assert.Equal(t, map[uint16]bool{1: true, 2: true}, seen)
}
