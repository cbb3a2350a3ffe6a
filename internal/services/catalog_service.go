package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/repositories"
)

var errCatalogRepositoryRequired = errors.New("catalog service: repository is required")

// ErrCatalogUnavailable indicates the catalog cannot be read from the store.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

// CategoryAll is the filter value matching every product.
const CategoryAll = "all"

// CatalogServiceDeps wires the catalog repository.
type CatalogServiceDeps struct {
	Repository repositories.CatalogRepository
	Logger     func(context.Context, string, map[string]any)
}

type catalogService struct {
	repo   repositories.CatalogRepository
	logger func(context.Context, string, map[string]any)
}

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Repository == nil {
		return nil, errCatalogRepositoryRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &catalogService{repo: deps.Repository, logger: logger}, nil
}

// List returns the full catalog.
func (s *catalogService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, ErrCatalogUnavailable
	}
	return products, nil
}

// Filter returns the products in the requested category together with the
// count label shown above the product grid. Unknown categories simply match
// nothing; they are not an error.
func (s *catalogService) Filter(ctx context.Context, category string) (FilterResult, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = CategoryAll
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return FilterResult{}, ErrCatalogUnavailable
	}

	matched := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if category == CategoryAll || strings.EqualFold(product.Category, category) {
			matched = append(matched, product)
		}
	}

	return FilterResult{
		Products: matched,
		Category: category,
		Summary:  countLabel(len(matched)),
	}, nil
}

// Seed loads the product listing into an empty store. A populated store is
// left alone so redeploys do not clobber catalog edits.
func (s *catalogService) Seed(ctx context.Context, products []domain.Product) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return ErrCatalogUnavailable
	}
	if count > 0 {
		return nil
	}
	if err := s.repo.Replace(ctx, products); err != nil {
		return ErrCatalogUnavailable
	}
	s.logger(ctx, "catalog.seeded", map[string]any{"products": len(products)})
	return nil
}

func countLabel(n int) string {
	if n == 1 {
		return "Showing 1 product"
	}
	return fmt.Sprintf("Showing %d products", n)
}
