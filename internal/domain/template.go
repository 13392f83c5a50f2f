package domain

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// InputType describes how a variant template is presented and filtered.
type InputType string

// Input type constants.
const (
	InputTypeText        InputType = "text"
	InputTypeColor       InputType = "color"
	InputTypeRange       InputType = "range"
	InputTypeNumber      InputType = "number"
	InputTypeSelect      InputType = "select"
	InputTypeMultiselect InputType = "multiselect"
	InputTypeBoolean     InputType = "boolean"
)

// ValidInputTypes returns every supported input type.
func ValidInputTypes() []InputType {
	return []InputType{
		InputTypeText, InputTypeColor, InputTypeRange, InputTypeNumber,
		InputTypeSelect, InputTypeMultiselect, InputTypeBoolean,
	}
}

// IsValidInputType checks whether t is a supported input type.
func IsValidInputType(t InputType) bool {
	return slices.Contains(ValidInputTypes(), t)
}

// SingleSelect reports whether at most one option of a template with this
// input type may be marked as default.
func (t InputType) SingleSelect() bool {
	return t != InputTypeMultiselect
}

// OptionKind discriminates plain options from color swatches.
type OptionKind string

// Option kinds.
const (
	OptionKindPlain OptionKind = "plain"
	OptionKindColor OptionKind = "color"
)

// VariantOption is one selectable value of a variant template.
type VariantOption struct {
	Value           string          `json:"value"`
	Label           string          `json:"label"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	Kind            OptionKind      `json:"kind"`
	ColorCode       string          `json:"color_code,omitempty"`
	IsDefault       bool            `json:"is_default"`
	SortOrder       int             `json:"sort_order"`
	IsActive        bool            `json:"is_active"`
}

// NewPlainOption creates an active plain option. An empty label falls back to
// the value.
func NewPlainOption(value, label string, additionalPrice decimal.Decimal) VariantOption {
	if label == "" {
		label = value
	}
	return VariantOption{
		Value:           value,
		Label:           label,
		AdditionalPrice: additionalPrice,
		Kind:            OptionKindPlain,
		IsActive:        true,
	}
}

// NewColorOption creates an active color option carrying a hex color code.
func NewColorOption(value, label, colorCode string, additionalPrice decimal.Decimal) VariantOption {
	opt := NewPlainOption(value, label, additionalPrice)
	opt.Kind = OptionKindColor
	opt.ColorCode = colorCode
	return opt
}

// IsColor reports whether the option is a color swatch.
func (o VariantOption) IsColor() bool {
	return o.Kind == OptionKindColor
}

// VariantTemplate is a configurable product axis such as Color or Size.
type VariantTemplate struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	InputType      InputType       `json:"input_type"`
	IsRequired     bool            `json:"is_required"`
	CategoryIDs    []string        `json:"category_ids,omitempty"`
	SubcategoryIDs []string        `json:"subcategory_ids,omitempty"`
	ProductTypeIDs []string        `json:"product_type_ids,omitempty"`
	Options        []VariantOption `json:"variant_options"`
	Group          string          `json:"group"`

	// Populated for range templates only.
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
	Step     *float64 `json:"step,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}

// NewVariantTemplate validates t and returns it. Option values must be unique
// and single-select templates may carry at most one default option.
func NewVariantTemplate(t VariantTemplate) (VariantTemplate, error) {
	if !IsValidInputType(t.InputType) {
		return VariantTemplate{}, fmt.Errorf("template %s: invalid input type %q", t.ID, t.InputType)
	}

	seen := make(map[string]struct{}, len(t.Options))
	defaults := 0
	for _, o := range t.Options {
		if _, dup := seen[o.Value]; dup {
			return VariantTemplate{}, fmt.Errorf("template %s: option %q: %w", t.ID, o.Value, ErrDuplicateOption)
		}
		seen[o.Value] = struct{}{}
		if o.IsDefault {
			defaults++
		}
	}
	if t.InputType.SingleSelect() && defaults > 1 {
		return VariantTemplate{}, fmt.Errorf("template %s: %w", t.ID, ErrMultipleDefaults)
	}

	return t.Clone(), nil
}

// Option returns the option with the given value.
func (t *VariantTemplate) Option(value string) (VariantOption, bool) {
	for _, o := range t.Options {
		if o.Value == value {
			return o, true
		}
	}
	return VariantOption{}, false
}

// SetDefaultOption marks value as the default option. For single-select
// templates every other option loses its default flag.
func (t *VariantTemplate) SetDefaultOption(value string) error {
	idx := -1
	for i := range t.Options {
		if t.Options[i].Value == value {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("template %s: option %q: %w", t.ID, value, ErrUnknownOption)
	}

	if t.InputType.SingleSelect() {
		for i := range t.Options {
			t.Options[i].IsDefault = false
		}
	}
	t.Options[idx].IsDefault = true
	return nil
}

// DefaultOption returns the first option marked as default.
func (t *VariantTemplate) DefaultOption() (VariantOption, bool) {
	for _, o := range t.Options {
		if o.IsDefault {
			return o, true
		}
	}
	return VariantOption{}, false
}

// Clone returns a deep copy of the template.
func (t VariantTemplate) Clone() VariantTemplate {
	c := t
	c.CategoryIDs = slices.Clone(t.CategoryIDs)
	c.SubcategoryIDs = slices.Clone(t.SubcategoryIDs)
	c.ProductTypeIDs = slices.Clone(t.ProductTypeIDs)
	c.Options = slices.Clone(t.Options)
	c.MinValue = cloneFloat(t.MinValue)
	c.MaxValue = cloneFloat(t.MaxValue)
	c.Step = cloneFloat(t.Step)
	return c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
