package book

//go:generate mockgen -source=ports.go -destination=mock_repository_test.go -package=book

import (
	"context"
)

// Repository defines the contract for book data storage.
type Repository interface {
	List(ctx context.Context) ([]Book, error)
	Get(ctx context.Context, id string) (Book, error)
	Create(ctx context.Context, b Book) error
	Replace(ctx context.Context, b Book) error
	Delete(ctx context.Context, id string) error
}
