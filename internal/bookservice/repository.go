package bookservice

import (
	"context"
	"errors"

	"readinglist/internal/books"
)

// ErrNotFound is returned when no book has the requested UUID.
var ErrNotFound = errors.New("book not found")

// Repository persists books. List returns the newest book first.
type Repository interface {
	Add(ctx context.Context, b books.Book) error
	Get(ctx context.Context, id string) (*books.Book, error)
	List(ctx context.Context) ([]books.Book, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status books.Status) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
