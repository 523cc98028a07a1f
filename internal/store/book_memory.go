package store

import (
	"context"
	"sort"
	"sync"

	"booktracker/internal/book"
)

// BookMemory keeps books in process memory. Used by booksd when no
// database is configured, and by tests.
type BookMemory struct {
	mu    sync.RWMutex
	books map[string]book.Book
}

func NewBookMemory() *BookMemory {
	return &BookMemory{books: make(map[string]book.Book)}
}

func (m *BookMemory) List(ctx context.Context) ([]book.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]book.Book, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateAdded.Equal(out[j].DateAdded) {
			return out[i].DateAdded.After(out[j].DateAdded)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *BookMemory) Get(ctx context.Context, id string) (book.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (m *BookMemory) Create(ctx context.Context, b book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.books[b.ID] = b
	return nil
}

func (m *BookMemory) Replace(ctx context.Context, b book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[b.ID]; !ok {
		return book.ErrNotFound
	}
	m.books[b.ID] = b
	return nil
}

func (m *BookMemory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return book.ErrNotFound
	}
	delete(m.books, id)
	return nil
}
