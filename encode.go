package toypayments

import (
	"bufio"
	"fmt"
	"io"
)

// snapshotHeader is the first line of the output format.
const snapshotHeader = "client,available,held,total,locked"

// WriteSnapshots writes the final account rows to w: a header followed by one
// row per client, amounts with exactly 4 fractional digits, locked rendered as
// true/false. Rows are written in the order given; Engine.Snapshots already
// sorts ascending by client id.
func WriteSnapshots(w io.Writer, rows []Snapshot) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, snapshotHeader)
	for _, row := range rows {
		fmt.Fprintf(bw, "%d,%s,%s,%s,%t\n", row.Client, row.Available, row.Held, row.Total, row.Locked)
	}
	return bw.Flush()
}
