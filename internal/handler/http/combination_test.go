package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/variantcatalog/internal/event"
)

type comboView struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	IsDefault bool   `json:"is_default"`
}

func skus(combos []comboView) []string {
	out := make([]string, len(combos))
	for i, c := range combos {
		out[i] = c.SKU
	}
	return out
}

// saveTee stores the tee combinations for a new product and returns its id.
func saveTee(t *testing.T, h *harness) string {
	t.Helper()
	productID := uuid.NewString()
	rec := h.do(t, http.MethodPut, "/api/v1/products/"+productID+"/combinations", adminToken, teeRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return productID
}

func TestPreview(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", teeRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	combos := decodeData[[]comboView](t, rec)
	require.Len(t, combos, 4)
	assert.Equal(t, "TEE-RED-M", combos[0].SKU)
	assert.True(t, combos[0].IsDefault)
	assert.Equal(t, "22", combos[1].Price)
	assert.Empty(t, h.repo.byProduct)
	assert.Empty(t, h.publisher.topics)
}

func TestPreview_InlineOptions(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", map[string]any{
		"base_sku":   "MUG",
		"base_price": "10",
		"variants": []map[string]any{{
			"template_id": "color",
			"options": []map[string]any{
				{"value": "teal", "label": "Teal", "additional_price": "1.5", "color_code": "#008080"},
			},
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	combos := decodeData[[]comboView](t, rec)
	require.Len(t, combos, 1)
	assert.Equal(t, "11.5", combos[0].Price)
}

func TestPreview_Validation(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", map[string]any{"base_sku": "TEE"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "variants")

	body := teeRequest()
	delete(body, "base_sku")
	rec = h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decodeEnvelope(t, rec).Error.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", map[string]any{
		"base_sku": "TEE",
		"variants": []map[string]any{{"template_id": "Not A Slug", "values": []string{"x"}}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error.Fields, "variants[0].template_id")
}

func TestPreview_TooManyCombinations(t *testing.T) {
	h := newHarness(t)

	inline := func(templateID string) map[string]any {
		opts := make([]map[string]any, 4)
		for i := range opts {
			opts[i] = map[string]any{"value": fmt.Sprintf("v%d", i)}
		}
		return map[string]any{"template_id": templateID, "options": opts}
	}
	rec := h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", map[string]any{
		"base_sku": "TEE",
		"variants": []map[string]any{inline("color"), inline("size"), inline("material")},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "TOO_MANY_COMBINATIONS", decodeEnvelope(t, rec).Error.Code)
}

func TestPreview_DimensionCap(t *testing.T) {
	h := newHarness(t)

	binary := func(n int) []map[string]any {
		variants := make([]map[string]any, n)
		for i := range variants {
			variants[i] = map[string]any{
				"template_id": fmt.Sprintf("dim-%c", 'a'+i),
				"options":     []map[string]any{{"value": "x"}, {"value": "y"}},
			}
		}
		return variants
	}

	rec := h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", map[string]any{
		"base_sku": "TEE",
		"variants": binary(20),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "TOO_MANY_COMBINATIONS", decodeEnvelope(t, rec).Error.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", map[string]any{
		"base_sku": "TEE",
		"variants": binary(21),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "variants")
}

func TestPreview_RepeatedTemplate(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", map[string]any{
		"base_sku": "TEE",
		"variants": []map[string]any{
			{"template_id": "color", "values": []string{"red", "blue"}},
			{"template_id": "color", "values": []string{"green"}},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeEnvelope(t, rec).Error.Code)
}

func TestSave_RequiresAdmin(t *testing.T) {
	h := newHarness(t)
	path := "/api/v1/products/" + uuid.NewString() + "/combinations"

	rec := h.do(t, http.MethodPut, path, "", teeRequest())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPut, path, "bogus", teeRequest())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPut, path, userToken, teeRequest())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodDelete, path, userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Empty(t, h.repo.byProduct)
}

func TestSave_InvalidProductID(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPut, "/api/v1/products/not-a-uuid/combinations", adminToken, teeRequest())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", decodeEnvelope(t, rec).Error.Code)
}

func TestSaveAndList(t *testing.T) {
	h := newHarness(t)
	productID := saveTee(t, h)

	assert.Len(t, h.repo.byProduct[productID], 4)
	assert.Equal(t, []string{event.TopicCombinationsGenerated}, h.publisher.topics)

	rec := h.do(t, http.MethodGet, "/api/v1/products/"+productID+"/combinations", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"TEE-RED-M", "TEE-RED-XL", "TEE-BLU-M", "TEE-BLU-XL"}, skus(decodeData[[]comboView](t, rec)))
	assert.True(t, h.redis.Exists("variant:combinations:"+productID))

	rec = h.do(t, http.MethodGet, "/api/v1/products/"+productID+"/combinations?filter.color=red&filter.size=xl,m", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"TEE-RED-M", "TEE-RED-XL"}, skus(decodeData[[]comboView](t, rec)))

	rec = h.do(t, http.MethodGet, "/api/v1/products/"+productID+"/combinations/facets", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	facets := decodeData[map[string][]string](t, rec)
	assert.Equal(t, []string{"blue", "red"}, facets["color"])
	assert.Equal(t, []string{"m", "xl"}, facets["size"])
}

func TestSave_ReplacesAndInvalidatesCache(t *testing.T) {
	h := newHarness(t)
	productID := saveTee(t, h)

	rec := h.do(t, http.MethodGet, "/api/v1/products/"+productID+"/combinations", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, h.redis.Exists("variant:combinations:"+productID))

	body := teeRequest()
	body["variants"] = []map[string]any{{"template_id": "color", "values": []string{"red"}}}
	rec = h.do(t, http.MethodPut, "/api/v1/products/"+productID+"/combinations", adminToken, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, h.redis.Exists("variant:combinations:"+productID))

	rec = h.do(t, http.MethodGet, "/api/v1/products/"+productID+"/combinations", "", nil)
	assert.Equal(t, []string{"TEE-RED"}, skus(decodeData[[]comboView](t, rec)))
}

func TestListUnknownProductIsEmpty(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/products/"+uuid.NewString()+"/combinations", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]comboView](t, rec))
}

func TestGetCombination(t *testing.T) {
	h := newHarness(t)
	productID := saveTee(t, h)
	id := h.repo.byProduct[productID][1].ID

	rec := h.do(t, http.MethodGet, "/api/v1/combinations/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[comboView](t, rec)
	assert.Equal(t, "TEE-RED-XL", got.SKU)
	assert.Equal(t, productID, got.ProductID)

	rec = h.do(t, http.MethodGet, "/api/v1/combinations/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/combinations/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	productID := saveTee(t, h)
	saveTee(t, h)

	rec := h.do(t, http.MethodGet, "/api/v1/combinations/search?exact=color-red&per_page=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data       []comboView `json:"data"`
		TotalCount int         `json:"total_count"`
		PerPage    int         `json:"per_page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 4, page.TotalCount)
	assert.Equal(t, 10, page.PerPage)

	rec = h.do(t, http.MethodGet, "/api/v1/combinations/search?product_id="+productID+"&exact=color-red,size-xl", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, []string{"TEE-RED-XL"}, skus(page.Data))

	rec = h.do(t, http.MethodGet, "/api/v1/combinations/search?in_stock=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/combinations/search?product_id=nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateQuantity(t *testing.T) {
	h := newHarness(t)
	productID := saveTee(t, h)
	id := h.repo.byProduct[productID][0].ID

	h.do(t, http.MethodGet, "/api/v1/products/"+productID+"/combinations", "", nil)
	require.True(t, h.redis.Exists("variant:combinations:"+productID))

	rec := h.do(t, http.MethodPatch, "/api/v1/combinations/"+id+"/quantity", adminToken, map[string]any{"quantity": 7})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 7, decodeData[comboView](t, rec).Quantity)
	assert.False(t, h.redis.Exists("variant:combinations:"+productID))
	assert.Contains(t, h.publisher.topics, event.TopicCombinationStockUpdated)

	rec = h.do(t, http.MethodPatch, "/api/v1/combinations/"+id+"/quantity", adminToken, map[string]any{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPatch, "/api/v1/combinations/"+id+"/quantity", adminToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPatch, "/api/v1/combinations/"+uuid.NewString()+"/quantity", adminToken, map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodPatch, "/api/v1/combinations/"+id+"/quantity", userToken, map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteCombinations(t *testing.T) {
	h := newHarness(t)
	productID := saveTee(t, h)

	rec := h.do(t, http.MethodDelete, "/api/v1/products/"+productID+"/combinations", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeData[struct {
		ProductID string `json:"product_id"`
		Deleted   int64  `json:"deleted"`
	}](t, rec)
	assert.Equal(t, productID, res.ProductID)
	assert.Equal(t, int64(4), res.Deleted)
	assert.Contains(t, h.publisher.topics, event.TopicCombinationsDeleted)
	assert.Empty(t, h.repo.byProduct[productID])
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	h.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	rec = h.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestPreview_RateLimited(t *testing.T) {
	h := newHarnessWith(t, func(cfg *RouterConfig) {
		cfg.RateLimitRPS = 1
		cfg.RateLimitBurst = 2
	})

	for i := 0; i < 2; i++ {
		rec := h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", teeRequest())
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := h.do(t, http.MethodPost, "/api/v1/combinations/preview", "", teeRequest())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Catalog reads are not limited.
	rec = h.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
