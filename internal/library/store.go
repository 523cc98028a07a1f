// Package library keeps a local cache of the remote book collection and
// derives the filtered views the CLI renders.
//
// The cache is a projection of the server's collection, not the source of
// truth. Every mutation is applied locally only after the server has
// answered, as one locked assignment, so readers never observe a partially
// updated collection. Racing writes to the same record resolve
// last-response-wins; there is no version check.
package library

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"booktracker/internal/book"
	"booktracker/internal/logger"
	"booktracker/internal/platform/booksapi"
)

// Client is the remote collection the store synchronises with.
type Client interface {
	List(ctx context.Context) ([]*book.Record, error)
	Create(ctx context.Context, p book.Payload) (book.Record, error)
	Replace(ctx context.Context, id string, p book.Payload) (book.Record, error)
	Delete(ctx context.Context, id string) error
}

type Store struct {
	client Client
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	books    []book.Book
	criteria book.Criteria

	inflight atomic.Int32
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the time source used for records without a dateAdded.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store with permissive filter criteria.
func New(client Client, opts ...Option) *Store {
	s := &Store{
		client:   client,
		logger:   logger.Discard(),
		now:      time.Now,
		books:    []book.Book{},
		criteria: book.DefaultCriteria(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin marks an operation in flight; the returned func must be deferred.
func (s *Store) begin() func() {
	s.inflight.Add(1)
	return func() { s.inflight.Add(-1) }
}

// IsLoading reports whether any operation is waiting on the server. It is a
// UI hint only and never blocks callers.
func (s *Store) IsLoading() bool {
	return s.inflight.Load() > 0
}

// FetchAll replaces the cache with the server's collection. On any failure
// the cache is emptied rather than left stale.
func (s *Store) FetchAll(ctx context.Context) bool {
	defer s.begin()()

	records, err := s.client.List(ctx)
	if err != nil {
		s.logger.Error("fetch books failed", "err", err)
		s.mu.Lock()
		s.books = []book.Book{}
		s.mu.Unlock()
		return false
	}

	now := s.now()
	books := make([]book.Book, 0, len(records))
	for i, r := range records {
		if r == nil || r.ID == "" {
			s.logger.Warn("skipping malformed book record", "index", i)
			continue
		}
		books = append(books, r.Normalize(now))
	}

	s.mu.Lock()
	s.books = books
	s.mu.Unlock()

	s.logger.Info("books fetched", "count", len(books))
	return true
}

// Add creates a book on the server and prepends the server's copy. The
// returned book carries the server-assigned id; ok is false on failure and
// the cache is untouched.
func (s *Store) Add(ctx context.Context, p book.Payload) (book.Book, bool) {
	defer s.begin()()

	rec, err := s.client.Create(ctx, p)
	if err != nil {
		s.logger.Error("add book failed", "title", p.Title, "err", err)
		return book.Book{}, false
	}
	created := rec.Normalize(s.now())

	s.mu.Lock()
	books := make([]book.Book, 0, len(s.books)+1)
	books = append(books, created)
	for _, b := range s.books {
		if b.ID != created.ID {
			books = append(books, b)
		}
	}
	s.books = books
	s.mu.Unlock()

	s.logger.Info("book added", "id", created.ID)
	return created, true
}

// Update replaces b on the server and then in the cache. If the server
// accepts the write but the cache no longer holds b.ID, the whole
// collection is refetched and the update still counts as a success.
func (s *Store) Update(ctx context.Context, b book.Book) bool {
	if b.ID == "" {
		s.logger.Error("update book: missing id")
		return false
	}
	defer s.begin()()

	rec, err := s.client.Replace(ctx, b.ID, b.Payload())
	if err != nil {
		s.logger.Error("update book failed", "id", b.ID, "err", err)
		return false
	}
	// The cache entry is keyed on the id the PUT targeted.
	if rec.ID != b.ID {
		if rec.ID != "" {
			s.logger.Warn("update response id mismatch", "id", b.ID, "got", rec.ID)
		}
		rec.ID = b.ID
	}
	updated := rec.Normalize(s.now())

	s.mu.Lock()
	idx := s.indexLocked(b.ID)
	if idx >= 0 {
		if rec.DateAdded == "" {
			updated.DateAdded = s.books[idx].DateAdded
		}
		s.books[idx] = updated
	}
	s.mu.Unlock()

	if idx < 0 {
		s.logger.Warn("updated book missing from cache, refetching", "id", b.ID)
		s.FetchAll(ctx)
		return true
	}

	s.logger.Info("book updated", "id", b.ID)
	return true
}

// Remove deletes id on the server. A 404 still drops any local copy, since
// the server has confirmed it does not exist, but reports false.
func (s *Store) Remove(ctx context.Context, id string) bool {
	if id == "" {
		s.logger.Error("remove book: missing id")
		return false
	}
	defer s.begin()()

	err := s.client.Delete(ctx, id)
	switch {
	case err == nil:
		s.removeLocal(id)
		s.logger.Info("book removed", "id", id)
		return true
	case booksapi.IsNotFound(err):
		removed := s.removeLocal(id)
		s.logger.Warn("book not found on server", "id", id, "removed_locally", removed)
		return false
	default:
		s.logger.Error("remove book failed", "id", id, "err", err)
		return false
	}
}

func (s *Store) removeLocal(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return false
	}
	books := make([]book.Book, 0, len(s.books)-1)
	books = append(books, s.books[:idx]...)
	books = append(books, s.books[idx+1:]...)
	s.books = books
	return true
}

func (s *Store) indexLocked(id string) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// SetFilter merges p into the current criteria.
func (s *Store) SetFilter(p book.CriteriaPatch) {
	s.mu.Lock()
	s.criteria = s.criteria.Merge(p)
	s.mu.Unlock()
}

func (s *Store) Filter() book.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// All returns a copy of the cache in stored order.
func (s *Store) All() []book.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]book.Book, len(s.books))
	copy(out, s.books)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// Filtered returns the books matching the current criteria.
func (s *Store) Filtered() []book.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectLocked(s.criteria.Match)
}

func (s *Store) Owned() []book.Book {
	return s.byList(book.ListOwned)
}

func (s *Store) Wishlist() []book.Book {
	return s.byList(book.ListWant)
}

func (s *Store) byList(lt book.ListType) []book.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectLocked(func(b book.Book) bool { return b.ListType == lt })
}

func (s *Store) selectLocked(keep func(book.Book) bool) []book.Book {
	out := []book.Book{}
	for _, b := range s.books {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

// ByID returns the first cached book with the given id.
func (s *Store) ByID(id string) (book.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexLocked(id); idx >= 0 {
		return s.books[idx], true
	}
	return book.Book{}, false
}
