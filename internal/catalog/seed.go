package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/variantcatalog/internal/domain"
)

// Seed is the raw data a Registry is built from.
type Seed struct {
	Categories []CategoryDefinition
	Templates  []TemplateDefinition

	// Mapping lists the explicit templates per category ID and product type slug.
	Mapping map[string]map[string][]string

	DisplayGroups  []Group
	CategoryGroups []Group
}

// CategoryDefinition describes a category and its subcategories.
type CategoryDefinition struct {
	ID            string
	Name          string
	Subcategories []SubcategoryDefinition
}

// SubcategoryDefinition describes a subcategory and its product types.
type SubcategoryDefinition struct {
	ID           string
	Name         string
	ProductTypes []ProductTypeDefinition
}

// ProductTypeDefinition describes a product type. An empty Slug is generated
// from Name.
type ProductTypeDefinition struct {
	Slug string
	Name string
}

// TemplateDefinition is a variant template before input type derivation.
// Kind is the native input kind as authored by admins.
type TemplateDefinition struct {
	ID             string
	Name           string
	Description    string
	Kind           string
	Required       bool
	CategoryIDs    []string
	SubcategoryIDs []string
	ProductTypeIDs []string
	Options        []domain.VariantOption
}

// Group names a set of templates shown together in filter panels.
type Group struct {
	Name        string
	TemplateIDs []string
}

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func plain(value, label string, delta int64) domain.VariantOption {
	return domain.NewPlainOption(value, label, price(delta))
}

func color(value, label, hex string, delta int64) domain.VariantOption {
	return domain.NewColorOption(value, label, hex, price(delta))
}

func numbers(values ...string) []domain.VariantOption {
	out := make([]domain.VariantOption, len(values))
	for i, v := range values {
		out[i] = plain(v, v, 0)
		out[i].SortOrder = i
	}
	return out
}

func withDefault(opts []domain.VariantOption, idx int) []domain.VariantOption {
	opts[idx].IsDefault = true
	return opts
}

// DefaultSeed returns the compiled-in catalog loaded at startup.
func DefaultSeed() Seed {
	return Seed{
		Categories: []CategoryDefinition{
			{
				ID: "electronics", Name: "Electronics",
				Subcategories: []SubcategoryDefinition{
					{ID: "phones", Name: "Phones", ProductTypes: []ProductTypeDefinition{
						{Name: "Smartphone"}, {Name: "Feature Phone"},
					}},
					{ID: "computers", Name: "Computers", ProductTypes: []ProductTypeDefinition{
						{Name: "Laptop"}, {Name: "Tablet"},
					}},
					{ID: "audio", Name: "Audio", ProductTypes: []ProductTypeDefinition{
						{Name: "Headphones"}, {Name: "Speaker"},
					}},
				},
			},
			{
				ID: "fashion", Name: "Fashion",
				Subcategories: []SubcategoryDefinition{
					{ID: "clothing", Name: "Clothing", ProductTypes: []ProductTypeDefinition{
						{Slug: "t-shirt", Name: "T-Shirt"}, {Name: "Jeans"}, {Name: "Dress"},
					}},
					{ID: "footwear", Name: "Footwear", ProductTypes: []ProductTypeDefinition{
						{Name: "Sneakers"}, {Name: "Boots"},
					}},
					{ID: "accessories", Name: "Accessories", ProductTypes: []ProductTypeDefinition{
						{Name: "Watch"}, {Name: "Bag"},
					}},
				},
			},
			{
				ID: "beauty", Name: "Beauty",
				Subcategories: []SubcategoryDefinition{
					{ID: "skincare", Name: "Skincare", ProductTypes: []ProductTypeDefinition{
						{Name: "Sunscreen"}, {Name: "Moisturizer"},
					}},
					{ID: "fragrance", Name: "Fragrance", ProductTypes: []ProductTypeDefinition{
						{Name: "Perfume"},
					}},
				},
			},
			{
				ID: "home", Name: "Home & Kitchen",
				Subcategories: []SubcategoryDefinition{
					{ID: "kitchen", Name: "Kitchen", ProductTypes: []ProductTypeDefinition{
						{Name: "Blender"}, {Name: "Cookware"},
					}},
					{ID: "furniture", Name: "Furniture", ProductTypes: []ProductTypeDefinition{
						{Name: "Sofa"}, {Name: "Chair"},
					}},
				},
			},
			{
				ID: "sports", Name: "Sports & Outdoors",
				Subcategories: []SubcategoryDefinition{
					{ID: "fitness", Name: "Fitness", ProductTypes: []ProductTypeDefinition{
						{Name: "Dumbbell"}, {Name: "Yoga Mat"},
					}},
				},
			},
		},

		Templates: []TemplateDefinition{
			{
				ID: "color", Name: "Color", Kind: "color", Required: true,
				CategoryIDs: []string{"electronics", "fashion", "home", "sports"},
				Options: withDefault([]domain.VariantOption{
					color("black", "Black", "#000000", 0),
					color("white", "White", "#FFFFFF", 0),
					color("red", "Red", "#FF0000", 0),
					color("blue", "Blue", "#0000FF", 0),
					color("green", "Green", "#00FF00", 0),
					color("silver", "Silver", "#C0C0C0", 10),
					color("gold", "Gold", "#FFD700", 25),
				}, 0),
			},
			{
				ID: "size", Name: "Size", Kind: "select", Required: true,
				CategoryIDs: []string{"fashion"},
				Options: withDefault([]domain.VariantOption{
					plain("xs", "Extra Small", 0),
					plain("s", "Small", 0),
					plain("m", "Medium", 0),
					plain("l", "Large", 0),
					plain("xl", "Extra Large", 2),
					plain("xxl", "2X Large", 4),
				}, 2),
			},
			{
				ID: "shoe-size", Name: "Shoe Size", Kind: "number", Required: true,
				SubcategoryIDs: []string{"fashion-footwear"},
				Options:        numbers("6", "7", "8", "9", "10", "11", "12"),
			},
			{
				ID: "material", Name: "Material", Kind: "select",
				SubcategoryIDs: []string{"fashion-clothing", "home-furniture"},
				Options: []domain.VariantOption{
					plain("cotton", "Cotton", 0),
					plain("polyester", "Polyester", -2),
					plain("linen", "Linen", 8),
					plain("leather", "Leather", 60),
				},
			},
			{
				ID: "storage", Name: "Storage", Kind: "select", Required: true,
				Options: withDefault([]domain.VariantOption{
					plain("64gb", "64 GB", 0),
					plain("128gb", "128 GB", 50),
					plain("256gb", "256 GB", 120),
					plain("512gb", "512 GB", 280),
				}, 0),
			},
			{
				ID: "ram", Name: "RAM", Kind: "select",
				Options: []domain.VariantOption{
					plain("8gb", "8 GB", 0),
					plain("16gb", "16 GB", 80),
					plain("32gb", "32 GB", 200),
				},
			},
			{
				ID: "condition", Name: "Condition", Kind: "select",
				Options: withDefault([]domain.VariantOption{
					plain("new", "New", 0),
					plain("refurbished", "Refurbished", -75),
					plain("used", "Used", -150),
				}, 0),
			},
			{
				ID: "screen-size", Name: "Screen Size", Kind: "number",
				Options: numbers("13", "14", "15.6", "17"),
			},
			{
				ID: "battery-life", Name: "Battery Life", Kind: "number",
				SubcategoryIDs: []string{"electronics-audio"},
				Options:        numbers("8", "12", "20", "30"),
			},
			{
				ID: "features", Name: "Features", Kind: "multiselect",
				SubcategoryIDs: []string{"electronics-audio"},
				Options: []domain.VariantOption{
					plain("noise-cancelling", "Noise Cancelling", 40),
					plain("waterproof", "Waterproof", 15),
					plain("wireless-charging", "Wireless Charging", 20),
				},
			},
			{
				ID: "spf", Name: "SPF", Kind: "number", Required: true,
				Options: numbers("15", "30", "50"),
			},
			{
				ID: "volume", Name: "Volume", Kind: "number",
				Options: numbers("30", "50", "100"),
			},
			{
				ID: "scent", Name: "Scent", Kind: "select",
				Options: []domain.VariantOption{
					plain("floral", "Floral", 0),
					plain("woody", "Woody", 5),
					plain("citrus", "Citrus", 0),
				},
			},
			{
				ID: "weight", Name: "Weight", Kind: "number", Required: true,
				ProductTypeIDs: []string{"sports-fitness-dumbbell"},
				Options:        numbers("5", "10", "15", "20", "25"),
			},
			{
				ID: "wattage", Name: "Wattage", Kind: "number",
				ProductTypeIDs: []string{"home-kitchen-blender"},
				Options:        numbers("300", "600", "1000"),
			},
			{
				ID: "engraving", Name: "Engraving", Kind: "text",
				Description:    "Custom engraving text",
				ProductTypeIDs: []string{"fashion-accessories-watch"},
			},
			{
				ID: "gift-wrap", Name: "Gift Wrap", Kind: "boolean",
				CategoryIDs: []string{"fashion", "beauty"},
				Options: []domain.VariantOption{
					plain("no", "No", 0),
					plain("yes", "Yes", 5),
				},
			},
			{
				ID: "thickness", Name: "Thickness", Kind: "number",
				ProductTypeIDs: []string{"sports-fitness-yoga-mat"},
				Options:        numbers("4mm", "6mm", "8mm"),
			},
		},

		Mapping: map[string]map[string][]string{
			"electronics": {
				"smartphone": {"color", "storage", "ram", "condition"},
				"laptop":     {"color", "storage", "ram", "screen-size", "condition"},
				"tablet":     {"color", "storage", "condition"},
			},
			"fashion": {
				"t-shirt":  {"color", "size", "material"},
				"sneakers": {"color", "shoe-size"},
			},
			"beauty": {
				"sunscreen": {"spf", "volume"},
				"perfume":   {"volume", "scent"},
			},
		},

		DisplayGroups: []Group{
			{Name: "Appearance", TemplateIDs: []string{"color", "material"}},
			{Name: "Sizing", TemplateIDs: []string{"size", "shoe-size", "screen-size", "thickness"}},
			{Name: "Performance", TemplateIDs: []string{"storage", "ram", "battery-life", "wattage"}},
			{Name: "Personalization", TemplateIDs: []string{"engraving", "gift-wrap"}},
		},
		CategoryGroups: []Group{
			{Name: "Beauty Attributes", TemplateIDs: []string{"spf", "volume", "scent", "color"}},
			{Name: "General", TemplateIDs: []string{"condition", "weight"}},
		},
	}
}
