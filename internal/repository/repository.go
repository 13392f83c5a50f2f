package repository

import (
	"context"

	"github.com/utafrali/variantcatalog/internal/domain"
)

// CombinationFilter defines array-contains criteria for searching stored
// combinations. Slices inside one field are ANDed for ExactMatch, TypeMatch
// and SearchTags, and ORed for FuzzyMatch and PriceRange.
type CombinationFilter struct {
	ProductID  *string
	ExactMatch []string
	TypeMatch  []string
	SearchTags []string
	FuzzyMatch []string
	PriceRange []string
	InStock    *bool
	Page       int
	PerPage    int
}

// CombinationRepository defines persistence operations for generated
// combinations.
type CombinationRepository interface {
	// ReplaceForProduct atomically swaps the stored combinations of a product.
	ReplaceForProduct(ctx context.Context, productID string, combinations []domain.ProductCombination) error

	// ListByProduct returns the combinations of a product, default first.
	ListByProduct(ctx context.Context, productID string) ([]domain.ProductCombination, error)

	// GetByID retrieves a single combination.
	GetByID(ctx context.Context, id string) (*domain.ProductCombination, error)

	// Search returns combinations matching filter along with the total count.
	Search(ctx context.Context, filter CombinationFilter) ([]domain.ProductCombination, int, error)

	// UpdateQuantity sets the stock of one combination and returns it.
	UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.ProductCombination, error)

	// DeleteByProduct removes every combination of a product and reports how
	// many rows were removed.
	DeleteByProduct(ctx context.Context, productID string) (int64, error)
}

// CombinationCache caches the combination list of a product.
type CombinationCache interface {
	Get(ctx context.Context, productID string) ([]domain.ProductCombination, bool, error)
	Set(ctx context.Context, productID string, combinations []domain.ProductCombination) error
	Invalidate(ctx context.Context, productID string) error
}
