package repositories

import (
	"context"

	"github.com/greenfeen/storefront/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Carts() CartRepository
	Catalog() CatalogRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CartRepository persists per-session carts. Load returns an empty cart when
// none has been saved yet or when the stored payload cannot be decoded, so a
// corrupted record never takes the session down.
type CartRepository interface {
	Load(ctx context.Context, sessionID string) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// CatalogRepository stores the product listing shown on the shop page.
type CatalogRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Replace(ctx context.Context, products []domain.Product) error
	Count(ctx context.Context) (int, error)
}

// HealthRepository reports whether the backing store is reachable.
type HealthRepository interface {
	Check(ctx context.Context) error
}
