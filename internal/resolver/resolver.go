// Package resolver selects the variant templates a product type offers.
package resolver

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/pkg/logger"
)

// commonVariantNames are template id fragments promoted by the recommended
// ordering.
var commonVariantNames = []string{"color", "size", "material", "storage", "ram", "condition"}

// Catalog is the read-only view of the registry the resolver needs.
type Catalog interface {
	GetProductType(id string) *domain.ProductType
	ListVariantTemplates() []domain.VariantTemplate
	GetVariantTemplate(id string) (domain.VariantTemplate, bool)
	Mapping(categoryID, productSlug string) []string
}

// Resolver maps product type ids to variant templates.
type Resolver struct {
	catalog Catalog
	logger  *slog.Logger
}

// New creates a Resolver over the given catalog.
func New(catalog Catalog, logger *slog.Logger) *Resolver {
	return &Resolver{catalog: catalog, logger: logger}
}

// VariantTemplates returns the templates a product of the given type should
// offer. An explicit mapping wins outright; otherwise templates are matched by
// their category, subcategory and product type scopes. Malformed or unknown
// ids yield an empty slice.
func (r *Resolver) VariantTemplates(ctx context.Context, productTypeID string) []domain.VariantTemplate {
	key, err := domain.ParseProductTypeID(productTypeID)
	if err != nil {
		logger.WithContext(ctx, r.logger).Warn("malformed product type id",
			slog.String("product_type_id", productTypeID),
			slog.String("error", err.Error()),
		)
		return []domain.VariantTemplate{}
	}

	if r.catalog.GetProductType(productTypeID) == nil {
		logger.WithContext(ctx, r.logger).Debug("unknown product type",
			slog.String("product_type_id", productTypeID),
		)
		return []domain.VariantTemplate{}
	}

	if ids := r.catalog.Mapping(key.CategoryID, key.Slug); len(ids) > 0 {
		out := make([]domain.VariantTemplate, 0, len(ids))
		for _, id := range ids {
			if tpl, ok := r.catalog.GetVariantTemplate(id); ok {
				out = append(out, tpl)
			}
		}
		return out
	}

	subKey := key.SubcategoryKey()
	out := []domain.VariantTemplate{}
	for _, tpl := range r.catalog.ListVariantTemplates() {
		if slices.Contains(tpl.CategoryIDs, key.CategoryID) ||
			slices.Contains(tpl.SubcategoryIDs, subKey) ||
			slices.Contains(tpl.ProductTypeIDs, productTypeID) {
			out = append(out, tpl)
		}
	}
	return out
}

// RecommendedVariantTemplates returns VariantTemplates ordered with required
// templates first, then common variant axes, then by name.
func (r *Resolver) RecommendedVariantTemplates(ctx context.Context, productTypeID string) []domain.VariantTemplate {
	templates := r.VariantTemplates(ctx, productTypeID)
	slices.SortStableFunc(templates, compareRecommended)
	return templates
}

func compareRecommended(a, b domain.VariantTemplate) int {
	if a.IsRequired != b.IsRequired {
		if a.IsRequired {
			return -1
		}
		return 1
	}
	ca, cb := isCommon(a.ID), isCommon(b.ID)
	if ca != cb {
		if ca {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}

func isCommon(templateID string) bool {
	id := strings.ToLower(templateID)
	for _, name := range commonVariantNames {
		if strings.Contains(id, name) {
			return true
		}
	}
	return false
}
