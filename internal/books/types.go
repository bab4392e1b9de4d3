package books

import (
	"fmt"
	"strings"
)

// Status is a book's reading status.
type Status string

const (
	StatusRead    Status = "read"
	StatusToRead  Status = "to_read"
	StatusReading Status = "reading"
)

// Statuses lists every accepted status.
var Statuses = []Status{StatusRead, StatusToRead, StatusReading}

// Valid reports whether s is an accepted status.
func (s Status) Valid() bool {
	switch s {
	case StatusRead, StatusToRead, StatusReading:
		return true
	}
	return false
}

// Label is the human-readable form used in tables.
func (s Status) Label() string {
	switch s {
	case StatusRead:
		return "Read"
	case StatusToRead:
		return "To read"
	case StatusReading:
		return "Reading"
	}
	return string(s)
}

// ParseStatus accepts a status name, case-insensitively, with "-" for "_".
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !status.Valid() {
		return "", fmt.Errorf("invalid status %q: accepted statuses: read | to_read | reading", s)
	}
	return status, nil
}

// Book is a reading-list entry.
type Book struct {
	UUID   string `json:"uuid"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Status Status `json:"status,omitempty"`
}

// complete reports whether the record carries the fields needed for display.
func (b Book) complete() bool {
	return b.Title != "" && b.Author != ""
}

// NewBook is the payload for adding a book.
type NewBook struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Status Status `json:"status"`
}
