package combination

import (
	"strings"
	"unicode"

	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/internal/variant"
)

const maxGenericSuffix = 6

// skuSuffix derives the SKU fragment for one template/value pair.
func skuSuffix(templateID, value string) string {
	id := strings.ToLower(templateID)
	v := variant.CleanString(value)

	switch {
	case strings.Contains(id, "color") || strings.Contains(id, "colour"):
		letters := lettersOnly(v)
		if len(letters) > 3 {
			letters = letters[:3]
		}
		return strings.ToUpper(letters)
	case strings.Contains(id, "size"):
		return strings.ToUpper(v)
	case strings.Contains(id, "storage") || strings.Contains(id, "ram") || strings.Contains(id, "memory"):
		return strings.ToUpper(alphanumeric(v))
	default:
		s := strings.ToUpper(alphanumeric(v))
		if len(s) > maxGenericSuffix {
			s = s[:maxGenericSuffix]
		}
		return s
	}
}

// BuildSKU appends one suffix per pair to baseSku in pair order. Empty
// suffixes are skipped, so no suffixes leaves baseSku unchanged.
func BuildSKU(baseSku string, values domain.VariantValues) string {
	parts := []string{baseSku}
	for _, p := range values {
		if s := skuSuffix(p.TemplateID, p.Value); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-")
}

func lettersOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, s)
}

func alphanumeric(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
