package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// VariantSelection is a template together with the options enabled for a
// product. It is generator input only and never persisted in this form.
type VariantSelection struct {
	TemplateID string          `json:"template_id"`
	Options    []VariantOption `json:"options"`
}

// VariantValue is one template/value pair of a combination.
type VariantValue struct {
	TemplateID string `json:"template_id"`
	Value      string `json:"value"`
}

// VariantValues maps template IDs to option values, preserving insertion
// order. The order drives SKU suffix concatenation; equality ignores it.
type VariantValues []VariantValue

// Get returns the value recorded for templateID.
func (v VariantValues) Get(templateID string) (string, bool) {
	for _, p := range v {
		if p.TemplateID == templateID {
			return p.Value, true
		}
	}
	return "", false
}

// Set records value for templateID, replacing an existing entry in place.
func (v VariantValues) Set(templateID, value string) VariantValues {
	for i := range v {
		if v[i].TemplateID == templateID {
			v[i].Value = value
			return v
		}
	}
	return append(v, VariantValue{TemplateID: templateID, Value: value})
}

// Keys returns the template IDs in insertion order.
func (v VariantValues) Keys() []string {
	keys := make([]string, len(v))
	for i, p := range v {
		keys[i] = p.TemplateID
	}
	return keys
}

// Map returns the pairs as a plain map.
func (v VariantValues) Map() map[string]string {
	m := make(map[string]string, len(v))
	for _, p := range v {
		m[p.TemplateID] = p.Value
	}
	return m
}

// Equal reports whether both sets hold the same pairs regardless of order.
func (v VariantValues) Equal(other VariantValues) bool {
	if len(v) != len(other) {
		return false
	}
	for _, p := range v {
		val, ok := other.Get(p.TemplateID)
		if !ok || val != p.Value {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the pairs as a JSON object in insertion order.
func (v VariantValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(p.TemplateID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (v *VariantValues) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*v = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("variant values: expected object, got %v", tok)
	}

	out := VariantValues{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("variant values: expected string key, got %v", keyTok)
		}
		var val string
		if err := dec.Decode(&val); err != nil {
			return fmt.Errorf("variant values: key %q: %w", key, err)
		}
		out = out.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*v = out
	return nil
}

// FilterArrays are parallel indexed-array columns used for array-contains
// queries against the combination store.
type FilterArrays struct {
	ExactMatch []string `json:"exact_match"`
	FuzzyMatch []string `json:"fuzzy_match"`
	TypeMatch  []string `json:"type_match"`
	PriceRange []string `json:"price_range"`
}

// ProductCombination is one purchasable cell of the cartesian product of a
// product's selected variant options.
type ProductCombination struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id,omitempty"`
	VariantValues  VariantValues   `json:"variant_values"`
	SKU            string          `json:"sku"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	IsDefault      bool            `json:"is_default"`
	VariantStrings []string        `json:"variant_strings,omitempty"`
	SearchTags     []string        `json:"search_tags,omitempty"`
	Filters        FilterArrays    `json:"filters"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at,omitempty"`
}

// DecodedVariant is the parsed form of one encoded variant token.
type DecodedVariant struct {
	VariantType   string `json:"variant_type"`
	Value         string `json:"value"`
	HasPrice      bool   `json:"has_price"`
	PriceModifier int64  `json:"price_modifier"`
}
