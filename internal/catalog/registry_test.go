package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/variantcatalog/internal/domain"
)

func testSeed() Seed {
	return Seed{
		Categories: []CategoryDefinition{
			{
				ID: "fashion", Name: "Fashion",
				Subcategories: []SubcategoryDefinition{
					{ID: "clothing", Name: "Clothing", ProductTypes: []ProductTypeDefinition{
						{Slug: "t-shirt", Name: "T-Shirt"},
						{Name: "Winter Jacket"},
					}},
				},
			},
			{
				ID: "beauty", Name: "Beauty",
				Subcategories: []SubcategoryDefinition{
					{ID: "skincare", Name: "Skincare", ProductTypes: []ProductTypeDefinition{
						{Name: "Sunscreen"},
					}},
				},
			},
		},
		Templates: []TemplateDefinition{
			{ID: "color", Name: "Color", Kind: "color", Options: []domain.VariantOption{
				domain.NewColorOption("red", "Red", "#FF0000", decimal.Zero),
			}},
			{ID: "size", Name: "Size", Kind: "select", CategoryIDs: []string{"fashion"}},
			{ID: "spf", Name: "SPF", Kind: "number", Options: numbers("15", "30", "50")},
			{ID: "volume", Name: "Volume", Kind: "number", Options: numbers("100", "30", "50", "30")},
			{ID: "battery-life", Kind: "number", Options: numbers("10")},
			{ID: "shoe-size", Kind: "number", Options: numbers("7", "7.5", "wide")},
			{ID: "weight", Kind: "number"},
			{ID: "features", Kind: "multiselect"},
			{ID: "mystery", Kind: "dropdown"},
		},
		Mapping: map[string]map[string][]string{
			"fashion": {"t-shirt": {"color", "size"}},
		},
		DisplayGroups:  []Group{{Name: "Appearance", TemplateIDs: []string{"color"}}},
		CategoryGroups: []Group{{Name: "Beauty", TemplateIDs: []string{"spf", "color"}}},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(testSeed())
	require.NoError(t, err)
	return r
}

// ============================================================================
// Tree traversal
// ============================================================================

func TestListCategories_SeedOrder(t *testing.T) {
	r := newTestRegistry(t)

	cats := r.ListCategories()
	require.Len(t, cats, 2)
	assert.Equal(t, "fashion", cats[0].ID)
	assert.Equal(t, "beauty", cats[1].ID)
	assert.Equal(t, []string{"t-shirt", "winter-jacket"}, cats[0].Subcategories[0].ProductTypes)
}

func TestListCategories_CopyOnRead(t *testing.T) {
	r := newTestRegistry(t)

	cats := r.ListCategories()
	cats[0].Name = "Mutated"
	cats[0].Subcategories[0].ProductTypes[0] = "mutated"

	again := r.ListCategories()
	assert.Equal(t, "Fashion", again[0].Name)
	assert.Equal(t, "t-shirt", again[0].Subcategories[0].ProductTypes[0])
}

func TestGetCategory(t *testing.T) {
	r := newTestRegistry(t)

	c := r.GetCategory("beauty")
	require.NotNil(t, c)
	assert.Equal(t, "Beauty", c.Name)
	assert.Nil(t, r.GetCategory("toys"))
}

func TestGetSubcategory(t *testing.T) {
	r := newTestRegistry(t)

	s := r.GetSubcategory("fashion", "clothing")
	require.NotNil(t, s)
	assert.Equal(t, "Clothing", s.Name)
	assert.Nil(t, r.GetSubcategory("fashion", "footwear"))
	assert.Nil(t, r.GetSubcategory("beauty", "clothing"))
}

func TestListProductTypes_Flattened(t *testing.T) {
	r := newTestRegistry(t)

	pts := r.ListProductTypes()
	require.Len(t, pts, 3)
	assert.Equal(t, "fashion-clothing-t-shirt", pts[0].ID)
	assert.Equal(t, []string{"color", "size"}, pts[0].DefaultVariantTemplates)
	assert.Equal(t, "fashion-clothing-winter-jacket", pts[1].ID)
	assert.NotNil(t, pts[1].DefaultVariantTemplates)
	assert.Empty(t, pts[1].DefaultVariantTemplates)
	assert.Equal(t, "beauty-skincare-sunscreen", pts[2].ID)
}

func TestListProductTypesByCategory(t *testing.T) {
	r := newTestRegistry(t)

	assert.Len(t, r.ListProductTypesByCategory("fashion"), 2)
	assert.Len(t, r.ListProductTypesByCategory("beauty"), 1)
	assert.Empty(t, r.ListProductTypesByCategory("toys"))
}

func TestGetProductType(t *testing.T) {
	r := newTestRegistry(t)

	pt := r.GetProductType("fashion-clothing-t-shirt")
	require.NotNil(t, pt)
	assert.Equal(t, "t-shirt", pt.Slug)
	assert.Equal(t, "T-Shirt", pt.Name)
	assert.Equal(t, "fashion", pt.CategoryID)
	assert.Equal(t, "clothing", pt.SubcategoryID)
	assert.Nil(t, r.GetProductType("fashion-clothing-socks"))
}

func TestMapping_NeverNil(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, []string{"color", "size"}, r.Mapping("fashion", "t-shirt"))
	got := r.Mapping("beauty", "sunscreen")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ============================================================================
// Template derivation
// ============================================================================

func TestListVariantTemplates_DerivesInputTypes(t *testing.T) {
	r := newTestRegistry(t)

	want := map[string]domain.InputType{
		"color":        domain.InputTypeColor,
		"size":         domain.InputTypeSelect,
		"spf":          domain.InputTypeRange,
		"volume":       domain.InputTypeRange,
		"battery-life": domain.InputTypeRange,
		"shoe-size":    domain.InputTypeSelect,
		"weight":       domain.InputTypeSelect,
		"features":     domain.InputTypeMultiselect,
		"mystery":      domain.InputTypeSelect,
	}

	tpls := r.ListVariantTemplates()
	require.Len(t, tpls, len(want))
	for _, tpl := range tpls {
		assert.Equal(t, want[tpl.ID], tpl.InputType, "template %s", tpl.ID)
	}
}

func TestRangeTemplate_BoundsStepAndUnit(t *testing.T) {
	r := newTestRegistry(t)

	spf, ok := r.GetVariantTemplate("spf")
	require.True(t, ok)
	require.NotNil(t, spf.MinValue)
	assert.Equal(t, 15.0, *spf.MinValue)
	assert.Equal(t, 50.0, *spf.MaxValue)
	assert.Equal(t, 15.0, *spf.Step)
	assert.Equal(t, "SPF", spf.Unit)

	vol, ok := r.GetVariantTemplate("volume")
	require.True(t, ok)
	assert.Equal(t, 30.0, *vol.MinValue)
	assert.Equal(t, 100.0, *vol.MaxValue)
	assert.Equal(t, 20.0, *vol.Step)
	assert.Equal(t, "ml", vol.Unit)
}

func TestRangeTemplate_SingleValueDefaultsStep(t *testing.T) {
	r := newTestRegistry(t)

	b, ok := r.GetVariantTemplate("battery-life")
	require.True(t, ok)
	assert.Equal(t, 1.0, *b.Step)
	assert.Equal(t, 10.0, *b.MinValue)
	assert.Equal(t, 10.0, *b.MaxValue)
	assert.Equal(t, "hours", b.Unit)
}

func TestSelectTemplate_HasNoRangeFields(t *testing.T) {
	r := newTestRegistry(t)

	s, ok := r.GetVariantTemplate("shoe-size")
	require.True(t, ok)
	assert.Nil(t, s.MinValue)
	assert.Nil(t, s.MaxValue)
	assert.Nil(t, s.Step)
	assert.Empty(t, s.Unit)
}

func TestRangeTemplate_NonFiniteValuesStaySelect(t *testing.T) {
	seed := testSeed()
	seed.Templates = append(seed.Templates,
		TemplateDefinition{ID: "strength", Kind: "number", Options: numbers("NaN", "10")},
		TemplateDefinition{ID: "reach", Kind: "number", Options: numbers("Inf", "-infinity")},
	)
	r, err := New(seed)
	require.NoError(t, err)

	for _, id := range []string{"strength", "reach"} {
		tpl, ok := r.GetVariantTemplate(id)
		require.True(t, ok, id)
		assert.Equal(t, domain.InputTypeSelect, tpl.InputType, id)
		assert.Nil(t, tpl.MinValue, id)
		assert.Nil(t, tpl.MaxValue, id)
		assert.Nil(t, tpl.Step, id)
	}

	_, err = json.Marshal(r.ListVariantTemplates())
	assert.NoError(t, err)
}

func TestTemplateGroups_DisplayTableWins(t *testing.T) {
	r := newTestRegistry(t)

	color, _ := r.GetVariantTemplate("color")
	spf, _ := r.GetVariantTemplate("spf")
	size, _ := r.GetVariantTemplate("size")

	assert.Equal(t, "Appearance", color.Group)
	assert.Equal(t, "Beauty", spf.Group)
	assert.Equal(t, DefaultGroup, size.Group)
}

func TestTemplateName_FallsBackToID(t *testing.T) {
	r := newTestRegistry(t)

	b, _ := r.GetVariantTemplate("battery-life")
	assert.Equal(t, "battery-life", b.Name)
}

func TestGetVariantTemplate_CopyOnRead(t *testing.T) {
	r := newTestRegistry(t)

	c, ok := r.GetVariantTemplate("color")
	require.True(t, ok)
	c.Options[0].Value = "mutated"

	again, _ := r.GetVariantTemplate("color")
	assert.Equal(t, "red", again.Options[0].Value)
}

func TestGetVariantTemplate_Unknown(t *testing.T) {
	r := newTestRegistry(t)

	_, ok := r.GetVariantTemplate("nope")
	assert.False(t, ok)
}

// ============================================================================
// Construction errors
// ============================================================================

func TestNew_RejectsUnknownMappingTemplate(t *testing.T) {
	seed := testSeed()
	seed.Mapping["fashion"]["t-shirt"] = []string{"color", "pattern"}

	_, err := New(seed)
	assert.ErrorContains(t, err, "unknown template")
}

func TestNew_RejectsDuplicateTemplate(t *testing.T) {
	seed := testSeed()
	seed.Templates = append(seed.Templates, TemplateDefinition{ID: "color"})

	_, err := New(seed)
	assert.ErrorContains(t, err, "duplicate template")
}

func TestNew_RejectsHyphenatedCategory(t *testing.T) {
	seed := testSeed()
	seed.Categories[0].ID = "men-fashion"

	_, err := New(seed)
	assert.Error(t, err)
}

func TestNew_RejectsMultipleDefaults(t *testing.T) {
	seed := testSeed()
	opts := []domain.VariantOption{
		domain.NewPlainOption("a", "", decimal.Zero),
		domain.NewPlainOption("b", "", decimal.Zero),
	}
	opts[0].IsDefault = true
	opts[1].IsDefault = true
	seed.Templates = append(seed.Templates, TemplateDefinition{ID: "pattern", Kind: "select", Options: opts})

	_, err := New(seed)
	assert.ErrorIs(t, err, domain.ErrMultipleDefaults)
}

func TestDefaultSeed_Builds(t *testing.T) {
	r, err := New(DefaultSeed())
	require.NoError(t, err)

	pt := r.GetProductType("electronics-phones-smartphone")
	require.NotNil(t, pt)
	assert.Equal(t, []string{"color", "storage", "ram", "condition"}, pt.DefaultVariantTemplates)

	assert.NotNil(t, r.GetProductType("sports-fitness-yoga-mat"))

	screen, ok := r.GetVariantTemplate("screen-size")
	require.True(t, ok)
	assert.Equal(t, domain.InputTypeRange, screen.InputType)
	assert.Equal(t, "inches", screen.Unit)
	assert.InDelta(t, 1.0, *screen.Step, 1e-9)
	assert.Equal(t, 17.0, *screen.MaxValue)

	thickness, _ := r.GetVariantTemplate("thickness")
	assert.Equal(t, domain.InputTypeSelect, thickness.InputType)
}
