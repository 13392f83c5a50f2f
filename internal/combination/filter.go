package combination

import (
	"slices"
	"strings"

	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/internal/variant"
)

// Filter keeps the combinations whose encoded strings match every filter key
// with at least one of its allowed values. Keys are ANDed, values ORed.
func Filter(combinations []domain.ProductCombination, filters map[string][]string) []domain.ProductCombination {
	out := []domain.ProductCombination{}
	for _, c := range combinations {
		if matches(c, filters) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c domain.ProductCombination, filters map[string][]string) bool {
	opts := variant.DefaultEncodeOptions()
	tokens := make(map[string]struct{}, len(c.VariantStrings))
	for _, s := range c.VariantStrings {
		tokens[variant.StripPrice(s, opts)] = struct{}{}
	}

	for variantType, allowed := range filters {
		t := variant.CleanString(variantType)
		found := false
		for _, v := range allowed {
			if _, ok := tokens[t+"-"+variant.CleanString(v)]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// UniqueVariantValues indexes the encoded strings of combinations into sorted
// distinct values per variant type, for building filter facets.
func UniqueVariantValues(combinations []domain.ProductCombination) map[string][]string {
	opts := variant.DefaultEncodeOptions()
	sets := make(map[string]map[string]struct{})

	for _, c := range combinations {
		known := make([]string, 0, len(c.VariantValues))
		for _, k := range c.VariantValues.Keys() {
			known = append(known, variant.CleanString(k))
		}

		for _, s := range c.VariantStrings {
			variantType, value := splitToken(variant.StripPrice(s, opts), known)
			if variantType == "" || value == "" {
				continue
			}
			if sets[variantType] == nil {
				sets[variantType] = make(map[string]struct{})
			}
			sets[variantType][value] = struct{}{}
		}
	}

	out := make(map[string][]string, len(sets))
	for variantType, values := range sets {
		list := make([]string, 0, len(values))
		for v := range values {
			list = append(list, v)
		}
		slices.Sort(list)
		out[variantType] = list
	}
	return out
}

// splitToken separates a stripped token into type and value. The longest
// known type prefix wins so hyphenated template ids survive; otherwise the
// token is split at its first '-'.
func splitToken(token string, known []string) (string, string) {
	best := ""
	for _, k := range known {
		if len(k) > len(best) && strings.HasPrefix(token, k+"-") {
			best = k
		}
	}
	if best != "" {
		return best, token[len(best)+1:]
	}

	d := variant.Decode([]string{token}, variant.DefaultEncodeOptions())
	return d[0].VariantType, d[0].Value
}
