package bookservice

import (
	"context"
	"sync"

	"readinglist/internal/books"
)

// MemoryRepository keeps books in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	books map[string]books.Book
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{books: make(map[string]books.Book)}
}

func (r *MemoryRepository) Add(ctx context.Context, b books.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[b.UUID]; !ok {
		r.order = append(r.order, b.UUID)
	}
	r.books[b.UUID] = b
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*books.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]books.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]books.Book, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.books[r.order[i]])
	}
	return out, nil
}

func (r *MemoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.books[id]
	return ok, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id string, status books.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	r.books[id] = b
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return ErrNotFound
	}
	delete(r.books, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}
