package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"readinglist/internal/books"
)

var sampleBooks = []books.Book{
	{UUID: "0f8fad5b-d9cb-469f-a165-70867728950e", Title: "Dune", Author: "Frank Herbert", Status: books.StatusRead},
	{UUID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", Title: "Hyperion", Author: "Dan Simmons", Status: books.StatusToRead},
}

func newTestPrinter(t *testing.T, flags CommandFlags) (*Printer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	if flags.OutputFormat == "" {
		flags.OutputFormat = string(OutputFormatTable)
	}
	p, err := NewPrinter(&buf, flags)
	require.NoError(t, err)
	return p, &buf
}

func TestPrinter_Table(t *testing.T) {
	p, buf := newTestPrinter(t, CommandFlags{})
	require.NoError(t, p.PrintBooks(sampleBooks))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "TITLE"))
	assert.Contains(t, lines[1], "Dune")
	assert.Contains(t, lines[1], "Read")
	assert.NotContains(t, buf.String(), sampleBooks[0].UUID)
}

func TestPrinter_WideIncludesUUID(t *testing.T) {
	p, buf := newTestPrinter(t, CommandFlags{OutputFormat: "wide", NoHeaders: true})
	require.NoError(t, p.PrintBooks(sampleBooks))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], sampleBooks[0].UUID))
}

func TestPrinter_EmptyTable(t *testing.T) {
	p, buf := newTestPrinter(t, CommandFlags{})
	require.NoError(t, p.PrintBooks(nil))
	assert.Equal(t, "No books found\n", buf.String())

	p, buf = newTestPrinter(t, CommandFlags{Quiet: true})
	require.NoError(t, p.PrintBooks(nil))
	assert.NotContains(t, buf.String(), "No books found")
}

func TestPrinter_JSON(t *testing.T) {
	p, buf := newTestPrinter(t, CommandFlags{OutputFormat: "json"})
	require.NoError(t, p.PrintBooks(sampleBooks))

	var got []books.Book
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleBooks, got)

	p, buf = newTestPrinter(t, CommandFlags{OutputFormat: "json"})
	require.NoError(t, p.PrintBooks(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPrinter_YAML(t *testing.T) {
	p, buf := newTestPrinter(t, CommandFlags{OutputFormat: "yaml"})
	require.NoError(t, p.PrintBook(sampleBooks[1]))

	var got map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Hyperion", got["title"])
	assert.Equal(t, "to_read", got["status"])
}

func TestPrinter_Template(t *testing.T) {
	p, buf := newTestPrinter(t, CommandFlags{OutputFormat: "json", Template: `{{ .Title | upper }} by {{ .Author | trunc 5 }}`})
	require.NoError(t, p.PrintBooks(sampleBooks))
	assert.Equal(t, "DUNE by Frank\nHYPERION by Dan S\n", buf.String())
}

func TestNewPrinter_Errors(t *testing.T) {
	_, err := NewPrinter(&bytes.Buffer{}, CommandFlags{OutputFormat: "xml"})
	assert.Error(t, err)

	_, err = NewPrinter(&bytes.Buffer{}, CommandFlags{OutputFormat: "table", Template: "{{ .Title "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid template")
}

func TestPrinter_TableTruncatesLongTitles(t *testing.T) {
	long := books.Book{UUID: "u", Title: strings.Repeat("x", 60), Author: "A", Status: books.StatusRead}

	p, buf := newTestPrinter(t, CommandFlags{NoHeaders: true})
	require.NoError(t, p.PrintBook(long))
	assert.Contains(t, buf.String(), strings.Repeat("x", 37)+"...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", 38))

	p, buf = newTestPrinter(t, CommandFlags{OutputFormat: "wide", NoHeaders: true})
	require.NoError(t, p.PrintBook(long))
	assert.Contains(t, buf.String(), long.Title)
}
