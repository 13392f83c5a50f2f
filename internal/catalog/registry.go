// Package catalog holds the immutable snapshot of categories, product types
// and variant templates that the rest of the service reads from.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/pkg/slug"
)

// Registry is a read-only catalog snapshot. It is built once with New and is
// safe for concurrent use; every accessor returns a copy.
type Registry struct {
	categories      []domain.Category
	productTypes    []domain.ProductType
	productTypeByID map[string]int
	templates       []domain.VariantTemplate
	templateByID    map[string]int
	mapping         map[string]map[string][]string
}

// New builds a registry from seed data, deriving template input types,
// range bounds and display groups.
func New(seed Seed) (*Registry, error) {
	r := &Registry{
		productTypeByID: make(map[string]int),
		templateByID:    make(map[string]int),
		mapping:         make(map[string]map[string][]string, len(seed.Mapping)),
	}

	groups := newGroupIndex(seed.DisplayGroups, seed.CategoryGroups)
	for _, def := range seed.Templates {
		if def.ID == "" {
			return nil, fmt.Errorf("template with empty id")
		}
		if _, dup := r.templateByID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", def.ID)
		}
		tpl, err := deriveTemplate(def, groups)
		if err != nil {
			return nil, fmt.Errorf("derive template: %w", err)
		}
		r.templateByID[tpl.ID] = len(r.templates)
		r.templates = append(r.templates, tpl)
	}

	for categoryID, bySlug := range seed.Mapping {
		m := make(map[string][]string, len(bySlug))
		for productSlug, ids := range bySlug {
			for _, id := range ids {
				if _, ok := r.templateByID[id]; !ok {
					return nil, fmt.Errorf("mapping %s/%s references unknown template %q", categoryID, productSlug, id)
				}
			}
			m[productSlug] = slices.Clone(ids)
		}
		r.mapping[categoryID] = m
	}

	seenCategories := make(map[string]struct{}, len(seed.Categories))
	for _, cd := range seed.Categories {
		if err := validateSegment("category", cd.ID); err != nil {
			return nil, err
		}
		if _, dup := seenCategories[cd.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %q", cd.ID)
		}
		seenCategories[cd.ID] = struct{}{}

		cat := domain.Category{ID: cd.ID, Name: cd.Name, Subcategories: []domain.Subcategory{}}
		for _, sd := range cd.Subcategories {
			if err := validateSegment("subcategory", sd.ID); err != nil {
				return nil, err
			}
			sub := domain.Subcategory{ID: sd.ID, Name: sd.Name, ProductTypes: []string{}}
			for _, pd := range sd.ProductTypes {
				pt := r.buildProductType(cd.ID, sd.ID, pd)
				if _, dup := r.productTypeByID[pt.ID]; dup {
					return nil, fmt.Errorf("duplicate product type id %q", pt.ID)
				}
				r.productTypeByID[pt.ID] = len(r.productTypes)
				r.productTypes = append(r.productTypes, pt)
				sub.ProductTypes = append(sub.ProductTypes, pt.Slug)
			}
			cat.Subcategories = append(cat.Subcategories, sub)
		}
		r.categories = append(r.categories, cat)
	}

	return r, nil
}

// MustNew is like New but panics on invalid seed data. It is intended for the
// compiled-in default catalog.
func MustNew(seed Seed) *Registry {
	r, err := New(seed)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return r
}

func (r *Registry) buildProductType(categoryID, subcategoryID string, def ProductTypeDefinition) domain.ProductType {
	productSlug := def.Slug
	if productSlug == "" {
		productSlug = slug.Generate(def.Name)
	}
	name := def.Name
	if name == "" {
		name = productSlug
	}
	return domain.ProductType{
		ID:                      domain.ProductTypeID(categoryID, subcategoryID, productSlug),
		Slug:                    productSlug,
		Name:                    name,
		CategoryID:              categoryID,
		SubcategoryID:           subcategoryID,
		DefaultVariantTemplates: r.Mapping(categoryID, productSlug),
	}
}

func validateSegment(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s with empty id", kind)
	}
	if strings.Contains(id, "-") {
		return fmt.Errorf("%s id %q must not contain '-'", kind, id)
	}
	return nil
}

// ListCategories returns all categories in seed order.
func (r *Registry) ListCategories() []domain.Category {
	out := make([]domain.Category, len(r.categories))
	for i, c := range r.categories {
		out[i] = cloneCategory(c)
	}
	return out
}

// GetCategory returns the category with the given ID or nil.
func (r *Registry) GetCategory(id string) *domain.Category {
	for _, c := range r.categories {
		if c.ID == id {
			cc := cloneCategory(c)
			return &cc
		}
	}
	return nil
}

// GetSubcategory returns a subcategory of the given category or nil.
func (r *Registry) GetSubcategory(categoryID, subcategoryID string) *domain.Subcategory {
	for _, c := range r.categories {
		if c.ID != categoryID {
			continue
		}
		for _, s := range c.Subcategories {
			if s.ID == subcategoryID {
				sc := domain.Subcategory{ID: s.ID, Name: s.Name, ProductTypes: slices.Clone(s.ProductTypes)}
				return &sc
			}
		}
	}
	return nil
}

// ListProductTypes returns every product type flattened across the tree.
func (r *Registry) ListProductTypes() []domain.ProductType {
	out := make([]domain.ProductType, len(r.productTypes))
	for i, pt := range r.productTypes {
		out[i] = cloneProductType(pt)
	}
	return out
}

// ListProductTypesByCategory returns the product types of one category.
func (r *Registry) ListProductTypesByCategory(categoryID string) []domain.ProductType {
	out := []domain.ProductType{}
	for _, pt := range r.productTypes {
		if pt.CategoryID == categoryID {
			out = append(out, cloneProductType(pt))
		}
	}
	return out
}

// GetProductType returns the product type with the given composite ID or nil.
func (r *Registry) GetProductType(id string) *domain.ProductType {
	idx, ok := r.productTypeByID[id]
	if !ok {
		return nil
	}
	pt := cloneProductType(r.productTypes[idx])
	return &pt
}

// ListVariantTemplates returns every derived variant template in seed order.
func (r *Registry) ListVariantTemplates() []domain.VariantTemplate {
	out := make([]domain.VariantTemplate, len(r.templates))
	for i, t := range r.templates {
		out[i] = t.Clone()
	}
	return out
}

// GetVariantTemplate returns the template with the given ID.
func (r *Registry) GetVariantTemplate(id string) (domain.VariantTemplate, bool) {
	idx, ok := r.templateByID[id]
	if !ok {
		return domain.VariantTemplate{}, false
	}
	return r.templates[idx].Clone(), true
}

// Mapping returns the explicit template IDs configured for a product type
// slug within a category. The result is never nil.
func (r *Registry) Mapping(categoryID, productSlug string) []string {
	ids := r.mapping[categoryID][productSlug]
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}

func cloneCategory(c domain.Category) domain.Category {
	out := domain.Category{ID: c.ID, Name: c.Name, Subcategories: make([]domain.Subcategory, len(c.Subcategories))}
	for i, s := range c.Subcategories {
		out.Subcategories[i] = domain.Subcategory{ID: s.ID, Name: s.Name, ProductTypes: slices.Clone(s.ProductTypes)}
	}
	return out
}

func cloneProductType(pt domain.ProductType) domain.ProductType {
	pt.DefaultVariantTemplates = slices.Clone(pt.DefaultVariantTemplates)
	return pt
}
