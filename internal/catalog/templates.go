package catalog

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/utafrali/variantcatalog/internal/domain"
)

// DefaultGroup is the display group of templates no group table claims.
const DefaultGroup = "Other"

// unitHints maps substrings of a template ID to the display unit of range
// templates. The first match wins.
var unitHints = []struct {
	contains string
	unit     string
}{
	{"spf", "SPF"},
	{"volume", "ml"},
	{"battery", "hours"},
	{"weight", "lbs"},
	{"screen", "inches"},
	{"wattage", "W"},
}

// derivedInputType classifies a template's native input kind.
func derivedInputType(kind string, options []domain.VariantOption) (domain.InputType, []float64) {
	switch strings.ToLower(kind) {
	case "number", "range", "numeric", "slider":
		values, ok := numericValues(options)
		if !ok {
			return domain.InputTypeSelect, nil
		}
		return domain.InputTypeRange, values
	case "text":
		return domain.InputTypeText, nil
	case "color":
		return domain.InputTypeColor, nil
	case "multiselect":
		return domain.InputTypeMultiselect, nil
	case "boolean":
		return domain.InputTypeBoolean, nil
	default:
		return domain.InputTypeSelect, nil
	}
}

// numericValues parses every option value as a number. It reports false when
// there are no options or any value is not a finite number.
func numericValues(options []domain.VariantOption) ([]float64, bool) {
	if len(options) == 0 {
		return nil, false
	}
	values := make([]float64, 0, len(options))
	for _, o := range options {
		f, err := strconv.ParseFloat(strings.TrimSpace(o.Value), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		values = append(values, f)
	}
	return values, true
}

// rangeBounds returns min, max and the smallest positive gap between sorted
// distinct values. The step is 1 when no positive gap exists.
func rangeBounds(values []float64) (minValue, maxValue, step float64) {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	minValue, maxValue = sorted[0], sorted[len(sorted)-1]
	step = 0
	for i := 1; i < len(sorted); i++ {
		d := sorted[i] - sorted[i-1]
		if d > 0 && (step == 0 || d < step) {
			step = d
		}
	}
	if step == 0 {
		step = 1
	}
	return minValue, maxValue, step
}

// inferUnit guesses a display unit from the template ID.
func inferUnit(templateID string) string {
	id := strings.ToLower(templateID)
	for _, h := range unitHints {
		if strings.Contains(id, h.contains) {
			return h.unit
		}
	}
	return ""
}

// groupIndex resolves display group names by template ID.
type groupIndex struct {
	display  map[string]string
	category map[string]string
}

func newGroupIndex(display, category []Group) groupIndex {
	idx := groupIndex{
		display:  make(map[string]string),
		category: make(map[string]string),
	}
	for _, g := range display {
		for _, id := range g.TemplateIDs {
			if _, ok := idx.display[id]; !ok {
				idx.display[id] = g.Name
			}
		}
	}
	for _, g := range category {
		for _, id := range g.TemplateIDs {
			if _, ok := idx.category[id]; !ok {
				idx.category[id] = g.Name
			}
		}
	}
	return idx
}

// lookup prefers the display group table over the category group table.
func (g groupIndex) lookup(templateID string) string {
	if name, ok := g.display[templateID]; ok {
		return name
	}
	if name, ok := g.category[templateID]; ok {
		return name
	}
	return DefaultGroup
}

func deriveTemplate(def TemplateDefinition, groups groupIndex) (domain.VariantTemplate, error) {
	inputType, values := derivedInputType(def.Kind, def.Options)

	name := def.Name
	if name == "" {
		name = def.ID
	}

	tpl := domain.VariantTemplate{
		ID:             def.ID,
		Name:           name,
		Description:    def.Description,
		InputType:      inputType,
		IsRequired:     def.Required,
		CategoryIDs:    slices.Clone(def.CategoryIDs),
		SubcategoryIDs: slices.Clone(def.SubcategoryIDs),
		ProductTypeIDs: slices.Clone(def.ProductTypeIDs),
		Options:        slices.Clone(def.Options),
		Group:          groups.lookup(def.ID),
	}
	if tpl.Options == nil {
		tpl.Options = []domain.VariantOption{}
	}

	if inputType == domain.InputTypeRange {
		minValue, maxValue, step := rangeBounds(values)
		tpl.MinValue = &minValue
		tpl.MaxValue = &maxValue
		tpl.Step = &step
		tpl.Unit = inferUnit(def.ID)
	}

	return domain.NewVariantTemplate(tpl)
}
