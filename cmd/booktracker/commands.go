package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"booktracker/internal/book"
	"booktracker/internal/validation"
)

var errMissingID = errors.New("missing book id")

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parseWithID accepts the id either before or after the flags.
func parseWithID(fs *flag.FlagSet, args []string) (string, error) {
	var id string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		id, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if id == "" && fs.NArg() > 0 {
		id = fs.Arg(0)
	}
	if strings.TrimSpace(id) == "" {
		return "", errMissingID
	}
	return id, nil
}

type payloadFlags struct {
	title, author, genre, notes, list *string
	year, rating                      *int
}

func bindPayload(fs *flag.FlagSet, def book.Payload) *payloadFlags {
	return &payloadFlags{
		title:  fs.String("title", def.Title, "title"),
		author: fs.String("author", def.Author, "author"),
		genre:  fs.String("genre", def.Genre, "genre"),
		year:   fs.Int("year", def.YearPublished, "year published"),
		rating: fs.Int("rating", def.Rating, "rating, 0 to 5"),
		notes:  fs.String("notes", def.Notes, "notes"),
		list:   fs.String("list", string(def.ListType), "owned or want"),
	}
}

// apply copies the flags the user actually set onto p.
func (f *payloadFlags) apply(fs *flag.FlagSet, p *book.Payload) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			p.Title = *f.title
		case "author":
			p.Author = *f.author
		case "genre":
			p.Genre = *f.genre
		case "year":
			p.YearPublished = *f.year
		case "rating":
			p.Rating = *f.rating
		case "notes":
			p.Notes = *f.notes
		case "list":
			p.ListType = book.ListType(*f.list)
		}
	})
}

func (a *app) invalid(err error) int {
	fmt.Fprintln(a.stderr, "invalid book:")
	var verr *validation.Error
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			fmt.Fprintf(a.stderr, "  %s: %s\n", f.Field, f.Message)
		}
	}
	return exitFail
}

func (a *app) usageError(fs *flag.FlagSet, err error) int {
	if errors.Is(err, errMissingID) {
		fmt.Fprintf(a.stderr, "%s: %v\n", fs.Name(), err)
	}
	return exitUsage
}

func (a *app) list(ctx context.Context, args []string) int {
	fs := newFlagSet("list", a.stderr)
	lt := fs.String("list", string(book.ListAll), "all, owned or want")
	genre := fs.String("genre", "", "genre contains (case-insensitive)")
	author := fs.String("author", "", "author contains (case-insensitive)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	listType := book.ListType(*lt)
	if listType != book.ListAll {
		if _, err := book.ParseListType(*lt); err != nil {
			fmt.Fprintf(a.stderr, "list: %v\n", err)
			return exitUsage
		}
	}

	if !a.store.FetchAll(ctx) {
		fmt.Fprintln(a.stderr, "could not load books")
		return exitFail
	}
	a.store.SetFilter(book.CriteriaPatch{ListType: &listType, Genre: genre, Author: author})

	books := a.store.Filtered()
	if len(books) == 0 {
		fmt.Fprintln(a.stdout, "no books match")
	} else {
		renderTable(a.stdout, books)
	}
	fmt.Fprintf(a.stdout, "\n%d of %d books (owned %d, wishlist %d)\n",
		len(books), a.store.Len(), len(a.store.Owned()), len(a.store.Wishlist()))
	return exitOK
}

func (a *app) add(ctx context.Context, args []string) int {
	fs := newFlagSet("add", a.stderr)
	pf := bindPayload(fs, book.Payload{ListType: book.ListOwned})
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	p := book.Payload{ListType: book.ListOwned}
	pf.apply(fs, &p)
	if err := validation.Check(p); err != nil {
		return a.invalid(err)
	}

	created, ok := a.store.Add(ctx, p)
	if !ok {
		fmt.Fprintln(a.stderr, "could not add book")
		return exitFail
	}
	fmt.Fprintf(a.stdout, "added %s\n\n", created.ID)
	renderDetail(a.stdout, created)
	return exitOK
}

func (a *app) show(ctx context.Context, args []string) int {
	fs := newFlagSet("show", a.stderr)
	id, err := parseWithID(fs, args)
	if err != nil {
		return a.usageError(fs, err)
	}

	if !a.store.FetchAll(ctx) {
		fmt.Fprintln(a.stderr, "could not load books")
		return exitFail
	}
	b, ok := a.store.ByID(id)
	if !ok {
		fmt.Fprintf(a.stderr, "book %s not found\n", id)
		return exitFail
	}
	renderDetail(a.stdout, b)
	return exitOK
}

func (a *app) edit(ctx context.Context, args []string) int {
	fs := newFlagSet("edit", a.stderr)
	pf := bindPayload(fs, book.Payload{})
	id, err := parseWithID(fs, args)
	if err != nil {
		return a.usageError(fs, err)
	}

	if !a.store.FetchAll(ctx) {
		fmt.Fprintln(a.stderr, "could not load books")
		return exitFail
	}
	current, ok := a.store.ByID(id)
	if !ok {
		fmt.Fprintf(a.stderr, "book %s not found\n", id)
		return exitFail
	}

	p := current.Payload()
	pf.apply(fs, &p)
	if err := validation.Check(p); err != nil {
		return a.invalid(err)
	}

	if !a.store.Update(ctx, p.Book(current.ID, current.DateAdded)) {
		fmt.Fprintln(a.stderr, "could not update book")
		return exitFail
	}
	if updated, ok := a.store.ByID(id); ok {
		renderDetail(a.stdout, updated)
	}
	return exitOK
}

func (a *app) remove(ctx context.Context, args []string) int {
	fs := newFlagSet("delete", a.stderr)
	id, err := parseWithID(fs, args)
	if err != nil {
		return a.usageError(fs, err)
	}

	if !a.store.Remove(ctx, id) {
		fmt.Fprintf(a.stderr, "could not delete book %s\n", id)
		return exitFail
	}
	fmt.Fprintf(a.stdout, "deleted %s\n", id)
	return exitOK
}
