package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"booktracker/internal/book"
	"booktracker/internal/config"
	"booktracker/internal/logger"
	"booktracker/internal/platform/booksapi"

	"golang.org/x/sync/errgroup"
)

// sampleShelf is the starter collection posted to a fresh server.
var sampleShelf = []book.Payload{
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", YearPublished: 1937, Rating: 5, Notes: "A classic adventure.", ListType: book.ListOwned},
	{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", YearPublished: 1965, Rating: 5, Notes: "Epic sci-fi.", ListType: book.ListOwned},
	{Title: "Project Hail Mary", Author: "Andy Weir", Genre: "Science Fiction", YearPublished: 2021, Rating: 4, Notes: "Enjoyed this one.", ListType: book.ListWant},
	{Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Classic Romance", YearPublished: 1813, Rating: 4, ListType: book.ListOwned},
	{Title: "1984", Author: "George Orwell", Genre: "Dystopian", YearPublished: 1949, Rating: 5, Notes: "Thought-provoking.", ListType: book.ListWant},
}

type creator interface {
	Create(ctx context.Context, p book.Payload) (book.Record, error)
}

func main() {
	concurrency := flag.Int("concurrency", 4, "parallel create requests")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Format: cfg.Log.Format, Level: logger.ParseLevel(cfg.Log.Level)})

	client := booksapi.NewClient(cfg.API.BaseURL,
		booksapi.WithTimeout(cfg.API.Timeout),
		booksapi.WithRateLimit(cfg.API.RPS, *concurrency),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := seed(ctx, client, sampleShelf, *concurrency, log)
	if err != nil {
		log.Error("seed failed", "created", n, "err", err)
		os.Exit(1)
	}
	log.Info("seed complete", "created", n, "api", cfg.API.BaseURL)
}

// seed posts every payload, at most limit at a time, and stops at the first
// failure.
func seed(ctx context.Context, c creator, shelf []book.Payload, limit int, log *slog.Logger) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	var created atomic.Int32
	for _, p := range shelf {
		p := p
		g.Go(func() error {
			rec, err := c.Create(gctx, p)
			if err != nil {
				return fmt.Errorf("create %q: %w", p.Title, err)
			}
			created.Add(1)
			log.Info("book created", "id", rec.ID, "title", rec.Title)
			return nil
		})
	}
	err := g.Wait()
	return int(created.Load()), err
}
