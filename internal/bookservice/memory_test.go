package bookservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readinglist/internal/books"
)

func TestMemoryRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Add(ctx, books.Book{UUID: id, Title: id, Author: id, Status: books.StatusRead}))
	}
	require.NoError(t, repo.Delete(ctx, "b"))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].UUID)
	assert.Equal(t, "a", list[1].UUID)
}

func TestMemoryRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", books.StatusRead), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)

	ok, err := repo.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Add(ctx, books.Book{UUID: "a", Title: "Dune", Author: "Frank Herbert", Status: books.StatusRead}))

	b, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	b.Title = "changed"

	again, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Dune", again.Title)
}
