package toypayments

import "fmt"

// RecordType is a typed string identifying a transaction record.
type RecordType string

// Record types accepted on the input stream. Matching is case-sensitive.
const (
	TypeDeposit    RecordType = "deposit"
	TypeWithdrawal RecordType = "withdrawal"
	TypeDispute    RecordType = "dispute"
	TypeResolve    RecordType = "resolve"
	TypeChargeback RecordType = "chargeback"
)

// ParseRecordType parses a string into a RecordType.
func ParseRecordType(s string) (RecordType, error) {
	switch t := RecordType(s); t {
	case TypeDeposit, TypeWithdrawal, TypeDispute, TypeResolve, TypeChargeback:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Record is one input transaction handed to the engine.
//
// Amount is nil for dispute, resolve and chargeback records; the referenced
// deposit's stored amount is authoritative for those.
type Record struct {
	Type   RecordType
	Client uint16
	Tx     uint32
	Amount *Amount
}
