package store

//Repository implementation (Postgres)

import (
	"context"
	"errors"

	"booktracker/internal/book"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookPG struct {
	db *pgxpool.Pool
}

func NewBookPG(db *pgxpool.Pool) *BookPG {
	return &BookPG{db: db}
}

const bookColumns = `id, title, author, genre, year_published, rating, notes, list_type, date_added`

func scanBook(row pgx.Row) (book.Book, error) {
	var b book.Book
	var listType string
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.YearPublished, &b.Rating, &b.Notes, &listType, &b.DateAdded); err != nil {
		return book.Book{}, err
	}
	b.ListType = book.ListType(listType)
	b.DateAdded = b.DateAdded.UTC()
	return b, nil
}

// List returns books newest first, matching the order clients prepend in.
func (r *BookPG) List(ctx context.Context) ([]book.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY date_added DESC, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []book.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *BookPG) Get(ctx context.Context, id string) (book.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	b, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return b, nil
}

func (r *BookPG) Create(ctx context.Context, b book.Book) error {
	query := `
	INSERT INTO books (` + bookColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		b.ID, b.Title, b.Author, b.Genre, b.YearPublished, b.Rating, b.Notes, string(b.ListType), b.DateAdded)
	return err
}

func (r *BookPG) Replace(ctx context.Context, b book.Book) error {
	query := `
	UPDATE books
	SET title = $2, author = $3, genre = $4, year_published = $5,
	    rating = $6, notes = $7, list_type = $8, updated_at = now()
	WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		b.ID, b.Title, b.Author, b.Genre, b.YearPublished, b.Rating, b.Notes, string(b.ListType))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return book.ErrNotFound
	}
	return nil
}

func (r *BookPG) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return book.ErrNotFound
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *BookPG) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
