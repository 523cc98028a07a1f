package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"booktracker/internal/book"
	"booktracker/internal/logger"
	"booktracker/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCreator struct {
	mock.Mock
	mu sync.Mutex
}

func (m *mockCreator) Create(ctx context.Context, p book.Payload) (book.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(ctx, p)
	return args.Get(0).(book.Record), args.Error(1)
}

func TestSampleShelf_IsValid(t *testing.T) {
	for _, p := range sampleShelf {
		assert.NoError(t, validation.Check(p), p.Title)
	}
}

func TestSeed(t *testing.T) {
	t.Run("creates every book", func(t *testing.T) {
		m := new(mockCreator)
		for _, p := range sampleShelf {
			m.On("Create", mock.Anything, p).Return(book.Record{ID: "id-" + p.Title, Title: p.Title}, nil).Once()
		}

		n, err := seed(context.Background(), m, sampleShelf, 2, logger.Discard())
		assert.NoError(t, err)
		assert.Equal(t, len(sampleShelf), n)
		m.AssertExpectations(t)
	})

	t.Run("reports the first failure", func(t *testing.T) {
		m := new(mockCreator)
		m.On("Create", mock.Anything, sampleShelf[0]).Return(book.Record{}, errors.New("server down"))

		n, err := seed(context.Background(), m, sampleShelf[:1], 1, logger.Discard())
		assert.ErrorContains(t, err, "server down")
		assert.ErrorContains(t, err, "The Hobbit")
		assert.Equal(t, 0, n)
	})
}
