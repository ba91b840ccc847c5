package toypayments

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// This file contains the input side of the CSV boundary. The format is one
// record per line after a "type,client,tx,amount" header; fields may carry
// surrounding whitespace, and the amount column may be blank or missing
// entirely for dispute, resolve and chargeback records.

// DecodeRecords streams records from r, one at a time; it never buffers the
// whole input. A malformed line yields a line-numbered error and the stream
// continues with the next line.
func DecodeRecords(r io.Reader) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		cr := csv.NewReader(r)
		cr.TrimLeadingSpace = true
		cr.FieldsPerRecord = -1 // the amount column is optional

		// Skip the header. An empty input yields nothing.
		if _, err := cr.Read(); err != nil {
			if err != io.EOF {
				yield(Record{}, fmt.Errorf("reading header: %w", err))
			}
			return
		}

		line := 1
		for {
			fields, err := cr.Read()
			if err == io.EOF {
				return
			}
			line++
			if err != nil {
				if !yield(Record{}, fmt.Errorf("line %d: %w", line, err)) {
					return
				}
				continue
			}
			rec, err := parseRecord(fields)
			if err != nil {
				if !yield(Record{}, fmt.Errorf("line %d: %w", line, err)) {
					return
				}
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func parseRecord(fields []string) (Record, error) {
	if len(fields) < 3 {
		return Record{}, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}

	kind, err := ParseRecordType(fields[0])
	if err != nil {
		return Record{}, err
	}
	client, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return Record{}, fmt.Errorf("invalid client id %q: %w", fields[1], err)
	}
	tx, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("invalid transaction id %q: %w", fields[2], err)
	}

	rec := Record{Type: kind, Client: uint16(client), Tx: uint32(tx)}
	if len(fields) >= 4 && fields[3] != "" {
		amount, err := ParseAmount(fields[3])
		if err != nil {
			return Record{}, err
		}
		rec.Amount = &amount
	}
	return rec, nil
}
