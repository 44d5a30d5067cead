package search

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Stats describes how much work a search did.
type Stats struct {
	Attempts   uint64
	Backtracks uint64
	MaxDepth   int
	Workers    int
}

// WriteTable renders the statistics as a table.
func (s Stats) WriteTable(w io.Writer) {
	t := table.NewWriter()
	t.SetTitle("Search")
	t.AppendHeader(table.Row{"Attempts", "Backtracks", "Max depth", "Workers"})
	t.AppendRow(table.Row{s.Attempts, s.Backtracks, s.MaxDepth, s.Workers})

	fmt.Fprintln(w, t.Render())
}
