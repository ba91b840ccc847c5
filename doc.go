// Package toypayments implements a streaming transaction-processing engine.
//
// The engine consumes an ordered stream of transaction records (deposit,
// withdrawal, dispute, resolve, chargeback) and maintains one account per
// client with exact-decimal available and held balances. Disputes move funds
// between available and held; a chargeback removes held funds and permanently
// locks the account. Every record either fully applies or leaves no trace, and
// a rejected record never stops the stream.
//
// The package is a library: it performs no I/O beyond the CSV codecs that the
// caller points at its own readers and writers. The tp command in tp/ wires
// the engine to files, an error log and rendered reports.
package toypayments
