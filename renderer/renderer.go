// Package renderer renders processing results as markdown reports.
package renderer

import (
	"bytes"
	"fmt"
	"sort"

	md "github.com/nao1215/markdown"

	"github.com/dbrowne/toypayments"
)

// Statement renders the final account snapshots, and the tally of rejected
// records if any, as a markdown document. When currency is non-empty the
// amounts are displayed as localized currency strings instead of raw
// 4-decimal values; this is formatting only, no conversion happens.
func Statement(rows []toypayments.Snapshot, rejected map[string]int, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Account Statement")
	doc.PlainText(fmt.Sprintf("%d account(s)", len(rows)))

	display := func(a toypayments.Amount) string {
		if currency == "" {
			return a.String()
		}
		return a.Display(currency)
	}

	table := md.TableSet{
		Header: []string{"Client", "Available", "Held", "Total", "Locked"},
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", row.Client),
			display(row.Available),
			display(row.Held),
			display(row.Total),
			fmt.Sprintf("%t", row.Locked),
		})
	}
	doc.Table(table)

	if len(rejected) > 0 {
		doc.H2("Rejected records")
		reasons := make([]string, 0, len(rejected))
		for reason := range rejected {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)

		tally := md.TableSet{
			Header: []string{"Reason", "Count"},
			Rows:   make([][]string, 0, len(reasons)),
		}
		for _, reason := range reasons {
			tally.Rows = append(tally.Rows, []string{reason, fmt.Sprintf("%d", rejected[reason])})
		}
		doc.Table(tally)
	}

	return doc.String()
}
