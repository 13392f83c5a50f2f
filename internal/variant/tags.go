package variant

import (
	"strconv"
	"strings"

	"github.com/utafrali/variantcatalog/internal/domain"
)

// colorNames maps upper-case six digit hex codes to coarse color families.
var colorNames = map[string]string{
	"#000000": "black",
	"#1C1C1C": "black",
	"#FFFFFF": "white",
	"#F5F5F5": "white",
	"#FF0000": "red",
	"#8B0000": "red",
	"#DC143C": "red",
	"#00FF00": "green",
	"#008000": "green",
	"#228B22": "green",
	"#0000FF": "blue",
	"#000080": "blue",
	"#4169E1": "blue",
	"#87CEEB": "blue",
	"#FFFF00": "yellow",
	"#FFD700": "gold",
	"#FFA500": "orange",
	"#FF8C00": "orange",
	"#800080": "purple",
	"#8A2BE2": "purple",
	"#FFC0CB": "pink",
	"#FF69B4": "pink",
	"#808080": "gray",
	"#A9A9A9": "gray",
	"#D3D3D3": "gray",
	"#A52A2A": "brown",
	"#8B4513": "brown",
	"#C0C0C0": "silver",
}

var sizeTokens = map[string]string{
	"xs":     "small",
	"s":      "small",
	"sm":     "small",
	"small":  "small",
	"m":      "medium",
	"md":     "medium",
	"medium": "medium",
	"l":      "large",
	"lg":     "large",
	"large":  "large",
	"xl":     "extralarge",
	"xxl":    "extralarge",
	"2xl":    "extralarge",
	"3xl":    "extralarge",
	"xxxl":   "extralarge",
}

// colorCategory names the color family of a hex code, or "other".
func colorCategory(code string) string {
	hex := strings.ToUpper(strings.TrimSpace(code))
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if len(hex) == 4 {
		hex = "#" + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2) + strings.Repeat(hex[3:4], 2)
	}
	if name, ok := colorNames[hex]; ok {
		return name
	}
	return "other"
}

// sizeCategory buckets a raw size value: known letter sizes by table, numbers
// by range, anything else "other".
func sizeCategory(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if c, ok := sizeTokens[value]; ok {
		return c
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return "other"
	}
	switch {
	case n <= 6:
		return "small"
	case n <= 10:
		return "medium"
	case n <= 14:
		return "large"
	default:
		return "extralarge"
	}
}

func isColorTemplate(id string) bool {
	id = strings.ToLower(id)
	return strings.Contains(id, "color") || strings.Contains(id, "colour")
}

// SearchTags builds the coarse tags used for faceted search. The result keeps
// first-seen order and holds no duplicates.
func (e *Encoder) SearchTags(values domain.VariantValues) []string {
	tags := newStringSet()
	for _, r := range e.resolve(values) {
		t := CleanString(r.template.ID)
		v := CleanString(r.value)

		tags.add(t + ":" + v)
		if r.hasOption {
			if label := CleanString(r.option.Label); label != "" && label != v {
				tags.add(t + ":" + label)
			}
		}
		tags.add("has:" + t)

		if r.hasOption && !r.option.AdditionalPrice.IsZero() {
			tags.add("pricemod:" + PriceBucket(r.option.AdditionalPrice))
		}
		if isColorTemplate(r.template.ID) {
			tags.add("colorcat:" + colorCategory(r.option.ColorCode))
		}
		if strings.Contains(strings.ToLower(r.template.ID), "size") {
			tags.add("sizecat:" + sizeCategory(r.value))
		}
	}
	return tags.items
}

// FilterArrays builds the parallel array columns queried with array-contains
// predicates.
func (e *Encoder) FilterArrays(values domain.VariantValues) domain.FilterArrays {
	exact, fuzzy, types, prices := newStringSet(), newStringSet(), newStringSet(), newStringSet()
	for _, r := range e.resolve(values) {
		t := CleanString(r.template.ID)
		v := CleanString(r.value)

		exact.add(t + "-" + v)
		fuzzy.add(v)
		types.add(t)
		if r.hasOption && !r.option.AdditionalPrice.IsZero() {
			prices.add(PriceBucket(r.option.AdditionalPrice))
		}
	}
	return domain.FilterArrays{
		ExactMatch: exact.items,
		FuzzyMatch: fuzzy.items,
		TypeMatch:  types.items,
		PriceRange: prices.items,
	}
}

type stringSet struct {
	seen  map[string]struct{}
	items []string
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *stringSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
