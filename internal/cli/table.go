package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"readinglist/internal/books"
)

// KeyValue is one row of a detail table.
type KeyValue struct {
	Key   string
	Value string
}

// RenderDetails prints rows as a two-column bordered table under title.
func RenderDetails(out io.Writer, title string, rows []KeyValue) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Title.Align = text.AlignLeft
	tw.Style().Format.Header = text.FormatDefault
	if title != "" {
		tw.SetTitle(text.Bold.Sprint(title))
	}
	for _, r := range rows {
		tw.AppendRow(table.Row{text.FgHiBlack.Sprint(r.Key), r.Value})
	}
	tw.Render()
}

// formatStatus colors a status label.
func formatStatus(s books.Status) string {
	switch s {
	case books.StatusRead:
		return text.FgGreen.Sprint(s.Label())
	case books.StatusReading:
		return text.FgYellow.Sprint(s.Label())
	case books.StatusToRead:
		return text.FgCyan.Sprint(s.Label())
	}
	return s.Label()
}
