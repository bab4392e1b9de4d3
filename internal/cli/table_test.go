package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"readinglist/internal/books"
)

func TestRenderDetails(t *testing.T) {
	var buf bytes.Buffer
	RenderDetails(&buf, "Authentication", []KeyValue{
		{Key: "Mode", Value: "cookie"},
		{Key: "Identity", Value: "reader@example.com"},
	})

	out := buf.String()
	assert.Contains(t, out, "Authentication")
	assert.Contains(t, out, "Mode")
	assert.Contains(t, out, "reader@example.com")
}

func TestFormatStatus(t *testing.T) {
	assert.Contains(t, formatStatus(books.StatusRead), "Read")
	assert.Contains(t, formatStatus(books.StatusToRead), "To read")
	assert.Equal(t, "unknown", formatStatus(books.Status("unknown")))
}
