package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Product Type ID Tests
// ============================================================================

func TestParseProductTypeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ProductTypeKey
		wantErr bool
	}{
		{
			name:  "three segments",
			input: "electronics-phones-smartphone",
			want:  ProductTypeKey{CategoryID: "electronics", SubcategoryID: "phones", Slug: "smartphone"},
		},
		{
			name:  "slug keeps extra hyphens",
			input: "fashion-clothing-t-shirt",
			want:  ProductTypeKey{CategoryID: "fashion", SubcategoryID: "clothing", Slug: "t-shirt"},
		},
		{name: "two segments", input: "fashion-clothing", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "empty category", input: "-clothing-shirt", wantErr: true},
		{name: "empty slug", input: "fashion-clothing-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProductTypeID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedProductTypeID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestProductTypeKey_SubcategoryKey(t *testing.T) {
	k := ProductTypeKey{CategoryID: "beauty", SubcategoryID: "skincare", Slug: "sunscreen"}
	assert.Equal(t, "beauty-skincare", k.SubcategoryKey())
}

// ============================================================================
// Variant Template Tests
// ============================================================================

func colorTemplate() VariantTemplate {
	return VariantTemplate{
		ID:        "color",
		Name:      "Color",
		InputType: InputTypeColor,
		Options: []VariantOption{
			NewColorOption("red", "Red", "#FF0000", decimal.Zero),
			NewColorOption("blue", "Blue", "#0000FF", decimal.NewFromInt(5)),
		},
	}
}

func TestNewVariantTemplate_Valid(t *testing.T) {
	tpl := colorTemplate()
	tpl.Options[0].IsDefault = true

	got, err := NewVariantTemplate(tpl)
	require.NoError(t, err)
	assert.Equal(t, "color", got.ID)
	assert.Len(t, got.Options, 2)
}

func TestNewVariantTemplate_MultipleDefaultsRejected(t *testing.T) {
	tpl := colorTemplate()
	tpl.Options[0].IsDefault = true
	tpl.Options[1].IsDefault = true

	_, err := NewVariantTemplate(tpl)
	assert.ErrorIs(t, err, ErrMultipleDefaults)
}

func TestNewVariantTemplate_MultiselectAllowsMultipleDefaults(t *testing.T) {
	tpl := colorTemplate()
	tpl.InputType = InputTypeMultiselect
	tpl.Options[0].IsDefault = true
	tpl.Options[1].IsDefault = true

	_, err := NewVariantTemplate(tpl)
	assert.NoError(t, err)
}

func TestNewVariantTemplate_DuplicateOption(t *testing.T) {
	tpl := colorTemplate()
	tpl.Options = append(tpl.Options, NewPlainOption("red", "", decimal.Zero))

	_, err := NewVariantTemplate(tpl)
	assert.ErrorIs(t, err, ErrDuplicateOption)
}

func TestNewVariantTemplate_InvalidInputType(t *testing.T) {
	tpl := colorTemplate()
	tpl.InputType = "slider"

	_, err := NewVariantTemplate(tpl)
	assert.Error(t, err)
}

func TestSetDefaultOption_ClearsOthers(t *testing.T) {
	tpl := colorTemplate()
	tpl.Options[0].IsDefault = true

	require.NoError(t, tpl.SetDefaultOption("blue"))

	assert.False(t, tpl.Options[0].IsDefault)
	assert.True(t, tpl.Options[1].IsDefault)
	def, ok := tpl.DefaultOption()
	require.True(t, ok)
	assert.Equal(t, "blue", def.Value)
}

func TestSetDefaultOption_UnknownValue(t *testing.T) {
	tpl := colorTemplate()
	err := tpl.SetDefaultOption("green")
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestClone_IsIndependent(t *testing.T) {
	tpl := colorTemplate()
	tpl.CategoryIDs = []string{"fashion"}

	c := tpl.Clone()
	c.Options[0].Label = "Crimson"
	c.CategoryIDs[0] = "beauty"

	assert.Equal(t, "Red", tpl.Options[0].Label)
	assert.Equal(t, "fashion", tpl.CategoryIDs[0])
}

func TestNewPlainOption_LabelFallback(t *testing.T) {
	o := NewPlainOption("xl", "", decimal.Zero)
	assert.Equal(t, "xl", o.Label)
	assert.True(t, o.IsActive)
	assert.False(t, o.IsColor())
}

// ============================================================================
// Variant Values Tests
// ============================================================================

func TestVariantValues_JSONPreservesOrder(t *testing.T) {
	v := VariantValues{}.Set("size", "m").Set("color", "red")

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"size":"m","color":"red"}`, string(b))

	var decoded VariantValues
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, []string{"size", "color"}, decoded.Keys())
}

func TestVariantValues_EqualIgnoresOrder(t *testing.T) {
	a := VariantValues{}.Set("color", "red").Set("size", "m")
	b := VariantValues{}.Set("size", "m").Set("color", "red")
	c := VariantValues{}.Set("size", "l").Set("color", "red")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestVariantValues_SetReplaces(t *testing.T) {
	v := VariantValues{}.Set("color", "red").Set("color", "blue")
	require.Len(t, v, 1)
	got, ok := v.Get("color")
	assert.True(t, ok)
	assert.Equal(t, "blue", got)
}

func TestVariantValues_UnmarshalRejectsArray(t *testing.T) {
	var v VariantValues
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &v))
}
