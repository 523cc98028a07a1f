package book

import (
	"context"
	"time"

	"booktracker/internal/validation"

	"github.com/google/uuid"
)

// Service provides book-related business logic for the books server.
type Service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// List returns every stored book.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

// Get returns a book by its id.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	return s.repo.Get(ctx, id)
}

// Create assigns an id and dateAdded and stores the book. dateAdded is cut
// to microseconds, the resolution Postgres stores.
func (s *Service) Create(ctx context.Context, p Payload) (Book, error) {
	if err := validation.Check(p); err != nil {
		return Book{}, err
	}
	b := p.Book(s.newID(), s.now().UTC().Truncate(time.Microsecond))
	if err := s.repo.Create(ctx, b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Replace overwrites every editable field of an existing book. The id and
// dateAdded are kept.
func (s *Service) Replace(ctx context.Context, id string, p Payload) (Book, error) {
	if err := validation.Check(p); err != nil {
		return Book{}, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	b := p.Book(existing.ID, existing.DateAdded)
	if err := s.repo.Replace(ctx, b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Delete removes a book by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
