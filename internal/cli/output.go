package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"readinglist/internal/books"
	pkgstrings "readinglist/pkg/strings"
)

// Printer renders books in the format selected by CommandFlags.
type Printer struct {
	out       io.Writer
	format    OutputFormat
	noHeaders bool
	quiet     bool
	tmpl      *template.Template
}

// NewPrinter validates flags and parses the --template, if any, with the
// sprig function map.
func NewPrinter(out io.Writer, flags CommandFlags) (*Printer, error) {
	if err := flags.Validate(); err != nil {
		return nil, err
	}

	p := &Printer{
		out:       out,
		format:    OutputFormat(flags.OutputFormat),
		noHeaders: flags.NoHeaders,
		quiet:     flags.Quiet,
	}
	if flags.Template != "" {
		tmpl, err := template.New("book").Funcs(sprig.TxtFuncMap()).Parse(flags.Template)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		p.tmpl = tmpl
	}
	return p, nil
}

// PrintBooks writes list.
func (p *Printer) PrintBooks(list []books.Book) error {
	if p.tmpl != nil {
		for _, b := range list {
			if err := p.execute(b); err != nil {
				return err
			}
		}
		return nil
	}

	switch p.format {
	case OutputFormatJSON:
		if list == nil {
			list = []books.Book{}
		}
		return p.outputJSON(list)
	case OutputFormatYAML:
		return p.outputYAML(list)
	default:
		if len(list) == 0 && !p.quiet {
			fmt.Fprintln(p.out, "No books found")
			return nil
		}
		p.outputTable(list)
		return nil
	}
}

// PrintBook writes a single book.
func (p *Printer) PrintBook(b books.Book) error {
	if p.tmpl != nil {
		return p.execute(b)
	}

	switch p.format {
	case OutputFormatJSON:
		return p.outputJSON(b)
	case OutputFormatYAML:
		return p.outputYAML(b)
	default:
		p.outputTable([]books.Book{b})
		return nil
	}
}

func (p *Printer) execute(b books.Book) error {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, b); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	buf.WriteByte('\n')
	_, err := p.out.Write(buf.Bytes())
	return err
}

func (p *Printer) outputJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to convert to JSON: %w", err)
	}
	fmt.Fprintln(p.out, string(data))
	return nil
}

func (p *Printer) outputYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	fmt.Fprint(p.out, string(data))
	return nil
}

func (p *Printer) outputTable(list []books.Book) {
	tw := NewPlainTableWriter(p.out)
	tw.SetNoHeaders(p.noHeaders)

	if p.format == OutputFormatWide {
		tw.SetHeaders([]string{"uuid", "title", "author", "status"})
		for _, b := range list {
			tw.AppendRow([]string{b.UUID, b.Title, b.Author, formatStatus(b.Status)})
		}
	} else {
		tw.SetHeaders([]string{"title", "author", "status"})
		for _, b := range list {
			tw.AppendRow([]string{
				pkgstrings.TruncateCell(b.Title, pkgstrings.DefaultCellMaxLen),
				pkgstrings.TruncateCell(b.Author, pkgstrings.DefaultCellMaxLen),
				formatStatus(b.Status),
			})
		}
	}
	tw.Render()
}
