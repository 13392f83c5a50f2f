package domain

import (
	"strings"
)

// Category is the top level of the static catalog tree.
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Subcategory groups product types within a category.
type Subcategory struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ProductTypes []string `json:"product_types"`
}

// ProductType is a leaf of the catalog tree. Its ID is the composite key
// "<categoryId>-<subcategoryId>-<slug>".
type ProductType struct {
	ID                      string   `json:"id"`
	Slug                    string   `json:"slug"`
	Name                    string   `json:"name"`
	CategoryID              string   `json:"category_id"`
	SubcategoryID           string   `json:"subcategory_id"`
	DefaultVariantTemplates []string `json:"default_variant_templates"`
}

// ProductTypeKey is the parsed form of a product type ID.
type ProductTypeKey struct {
	CategoryID    string
	SubcategoryID string
	Slug          string
}

// SubcategoryKey returns the "<categoryId>-<subcategoryId>" composite used by
// template subcategory scoping.
func (k ProductTypeKey) SubcategoryKey() string {
	return k.CategoryID + "-" + k.SubcategoryID
}

// String rebuilds the composite product type ID.
func (k ProductTypeKey) String() string {
	return ProductTypeID(k.CategoryID, k.SubcategoryID, k.Slug)
}

// ProductTypeID builds the composite product type identifier.
func ProductTypeID(categoryID, subcategoryID, slug string) string {
	return categoryID + "-" + subcategoryID + "-" + slug
}

// ParseProductTypeID splits a composite product type ID into its category,
// subcategory and slug. The slug keeps any further hyphens.
func ParseProductTypeID(id string) (ProductTypeKey, error) {
	parts := strings.Split(id, "-")
	if len(parts) < 3 {
		return ProductTypeKey{}, ErrMalformedProductTypeID
	}
	for _, p := range parts[:2] {
		if p == "" {
			return ProductTypeKey{}, ErrMalformedProductTypeID
		}
	}
	slug := strings.Join(parts[2:], "-")
	if slug == "" {
		return ProductTypeKey{}, ErrMalformedProductTypeID
	}
	return ProductTypeKey{
		CategoryID:    parts[0],
		SubcategoryID: parts[1],
		Slug:          slug,
	}, nil
}
