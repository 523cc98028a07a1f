package book

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// ListType tags which list a book belongs to.
type ListType string

const (
	ListOwned ListType = "owned"
	ListWant  ListType = "want"
	// ListAll is only meaningful as a filter value.
	ListAll ListType = "all"
)

// ParseListType accepts a membership tag as stored on a book.
func ParseListType(s string) (ListType, error) {
	switch ListType(s) {
	case ListOwned, ListWant:
		return ListType(s), nil
	default:
		return "", fmt.Errorf("invalid list type: %s", s)
	}
}

// Payload is the client-editable part of a book: everything except the
// server-assigned id and dateAdded.
type Payload struct {
	Title         string   `json:"title" validate:"notblank,max=300"`
	Author        string   `json:"author" validate:"notblank,max=200"`
	Genre         string   `json:"genre" validate:"max=100"`
	YearPublished int      `json:"yearPublished" validate:"gte=0,lte=9999"`
	Rating        int      `json:"rating" validate:"gte=0,lte=5"`
	Notes         string   `json:"notes"`
	ListType      ListType `json:"listType" validate:"required,oneof=owned want"`
}

// Book represents a book entity held by the client cache.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre"`
	YearPublished int       `json:"yearPublished"`
	Rating        int       `json:"rating"`
	Notes         string    `json:"notes"`
	ListType      ListType  `json:"listType"`
	DateAdded     time.Time `json:"dateAdded"`
}

// Payload strips the server-owned fields.
func (b Book) Payload() Payload {
	return Payload{
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		YearPublished: b.YearPublished,
		Rating:        b.Rating,
		Notes:         b.Notes,
		ListType:      b.ListType,
	}
}

// Book builds a full record from the payload.
func (p Payload) Book(id string, added time.Time) Book {
	return Book{
		ID:            id,
		Title:         p.Title,
		Author:        p.Author,
		Genre:         p.Genre,
		YearPublished: p.YearPublished,
		Rating:        p.Rating,
		Notes:         p.Notes,
		ListType:      p.ListType,
		DateAdded:     added,
	}
}

// Record is a book as it travels over the wire. DateAdded stays a raw
// string until Normalize runs.
type Record struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Genre         string   `json:"genre"`
	YearPublished int      `json:"yearPublished"`
	Rating        int      `json:"rating"`
	Notes         string   `json:"notes"`
	ListType      ListType `json:"listType"`
	DateAdded     string   `json:"dateAdded,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats servers are known to emit.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize converts a wire record into a Book. A missing or unparseable
// dateAdded becomes now.
func (r Record) Normalize(now time.Time) Book {
	added, ok := ParseTimestamp(r.DateAdded)
	if !ok {
		added = now
	}
	return Book{
		ID:            r.ID,
		Title:         r.Title,
		Author:        r.Author,
		Genre:         r.Genre,
		YearPublished: r.YearPublished,
		Rating:        r.Rating,
		Notes:         r.Notes,
		ListType:      r.ListType,
		DateAdded:     added,
	}
}

// RecordOf renders a Book in wire form.
func RecordOf(b Book) Record {
	r := Record{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		YearPublished: b.YearPublished,
		Rating:        b.Rating,
		Notes:         b.Notes,
		ListType:      b.ListType,
	}
	if !b.DateAdded.IsZero() {
		r.DateAdded = b.DateAdded.UTC().Format(time.RFC3339Nano)
	}
	return r
}
