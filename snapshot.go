package toypayments

import (
	"cmp"
	"slices"
)

// Snapshot is the final reported state of one client account.
type Snapshot struct {
	Client    uint16
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}

func newSnapshot(a *Account) Snapshot {
	return Snapshot{
		Client:    a.Client(),
		Available: a.Available(),
		Held:      a.Held(),
		Total:     a.Total(),
		Locked:    a.Locked(),
	}
}

// Snapshots returns one row per client ever referenced, ascending by client
// id, independent of whether any of the client's transactions succeeded.
func (e *Engine) Snapshots() []Snapshot {
	rows := make([]Snapshot, 0, len(e.accounts))
	for _, a := range e.accounts {
		rows = append(rows, newSnapshot(a))
	}
	slices.SortFunc(rows, func(x, y Snapshot) int { return cmp.Compare(x.Client, y.Client) })
	return rows
}
