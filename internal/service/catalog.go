package service

import (
	"context"
	"strings"

	"github.com/utafrali/variantcatalog/internal/catalog"
	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/internal/resolver"
	"github.com/utafrali/variantcatalog/internal/variant"
	apperrors "github.com/utafrali/variantcatalog/pkg/errors"
)

// CatalogService exposes the static catalog, template resolution and the
// variant string codec.
type CatalogService struct {
	registry *catalog.Registry
	resolver *resolver.Resolver
	encoder  *variant.Encoder
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(registry *catalog.Registry, resolver *resolver.Resolver, encoder *variant.Encoder) *CatalogService {
	return &CatalogService{
		registry: registry,
		resolver: resolver,
		encoder:  encoder,
	}
}

// ListCategories returns the category tree in seed order.
func (s *CatalogService) ListCategories() []domain.Category {
	return s.registry.ListCategories()
}

// GetCategory returns one category.
func (s *CatalogService) GetCategory(id string) (*domain.Category, error) {
	c := s.registry.GetCategory(id)
	if c == nil {
		return nil, apperrors.NotFound("category", id)
	}
	return c, nil
}

// GetSubcategory returns one subcategory of a category.
func (s *CatalogService) GetSubcategory(categoryID, subcategoryID string) (*domain.Subcategory, error) {
	if s.registry.GetCategory(categoryID) == nil {
		return nil, apperrors.NotFound("category", categoryID)
	}
	sub := s.registry.GetSubcategory(categoryID, subcategoryID)
	if sub == nil {
		return nil, apperrors.NotFound("subcategory", categoryID+"/"+subcategoryID)
	}
	return sub, nil
}

// ListProductTypes returns every product type, or only those of categoryID
// when it is not empty.
func (s *CatalogService) ListProductTypes(categoryID string) ([]domain.ProductType, error) {
	if categoryID == "" {
		return s.registry.ListProductTypes(), nil
	}
	if s.registry.GetCategory(categoryID) == nil {
		return nil, apperrors.NotFound("category", categoryID)
	}
	return s.registry.ListProductTypesByCategory(categoryID), nil
}

// GetProductType returns one product type.
func (s *CatalogService) GetProductType(id string) (*domain.ProductType, error) {
	pt := s.registry.GetProductType(id)
	if pt == nil {
		return nil, apperrors.NotFound("product type", id)
	}
	return pt, nil
}

// VariantTemplatesFor resolves the templates of a product type. Unknown or
// malformed ids resolve to an empty list.
func (s *CatalogService) VariantTemplatesFor(ctx context.Context, productTypeID string, recommended bool) []domain.VariantTemplate {
	if recommended {
		return s.resolver.RecommendedVariantTemplates(ctx, productTypeID)
	}
	return s.resolver.VariantTemplates(ctx, productTypeID)
}

// ListVariantTemplates returns the derived template catalog.
func (s *CatalogService) ListVariantTemplates() []domain.VariantTemplate {
	return s.registry.ListVariantTemplates()
}

// GetVariantTemplate returns one derived template.
func (s *CatalogService) GetVariantTemplate(id string) (*domain.VariantTemplate, error) {
	tpl, ok := s.registry.GetVariantTemplate(id)
	if !ok {
		return nil, apperrors.NotFound("variant template", id)
	}
	return &tpl, nil
}

// EncodeResult is the output of Encode.
type EncodeResult struct {
	Tokens       []string            `json:"tokens"`
	Joined       string              `json:"joined"`
	SearchTags   []string            `json:"search_tags"`
	FilterArrays domain.FilterArrays `json:"filter_arrays"`
}

// Encode turns variant values into tokens, tags and filter arrays. With
// strict set, values the catalog does not know are rejected.
func (s *CatalogService) Encode(values domain.VariantValues, opts variant.EncodeOptions, strict bool) (*EncodeResult, error) {
	if strict {
		if err := s.encoder.Validate(values); err != nil {
			return nil, apperrors.Unprocessable(err.Error(), err)
		}
	}
	tokens := s.encoder.Encode(values, opts)
	sep := opts.Separator
	if sep == "" {
		sep = variant.DefaultEncodeOptions().Separator
	}
	return &EncodeResult{
		Tokens:       tokens,
		Joined:       strings.Join(tokens, sep),
		SearchTags:   s.encoder.SearchTags(values),
		FilterArrays: s.encoder.FilterArrays(values),
	}, nil
}

// Decode parses encoded tokens.
func (s *CatalogService) Decode(tokens []string, opts variant.EncodeOptions) []domain.DecodedVariant {
	return variant.Decode(tokens, opts)
}
