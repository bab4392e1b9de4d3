package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short title unchanged", "Dune", 10, "Dune"},
		{"exact length unchanged", "Dune", 4, "Dune"},
		{"long title truncated", "The Hitchhiker's Guide to the Galaxy", 15, "The Hitchhik..."},
		{"line breaks flattened", "Gödel, Escher,\nBach", 40, "Gödel, Escher, Bach"},
		{"runs of whitespace collapsed", "  War \t and   Peace ", 40, "War and Peace"},
		{"multi-byte runes kept whole", "ノルウェイの森の物語", 6, "ノルウ..."},
		{"tiny limit clamped", "Middlemarch", 1, "M..."},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateCell(tt.input, tt.maxLen))
		})
	}
}
