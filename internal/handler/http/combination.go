package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/internal/repository"
	"github.com/utafrali/variantcatalog/internal/service"
	"github.com/utafrali/variantcatalog/pkg/httputil"
	"github.com/utafrali/variantcatalog/pkg/pagination"
)

// filterPrefix marks list query parameters that filter by variant value,
// e.g. filter.color=red,blue.
const filterPrefix = "filter."

// CombinationHandler handles HTTP requests for product combinations.
type CombinationHandler struct {
	service *service.CombinationService
	logger  *slog.Logger
}

// NewCombinationHandler creates a new combination HTTP handler.
func NewCombinationHandler(svc *service.CombinationService, logger *slog.Logger) *CombinationHandler {
	return &CombinationHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// OptionRequest is an inline option that bypasses the catalog lookup.
type OptionRequest struct {
	Value           string          `json:"value" validate:"required,max=100"`
	Label           string          `json:"label" validate:"max=200"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
	ColorCode       string          `json:"color_code" validate:"omitempty,hexcolor"`
}

// SelectionRequest selects options of one variant template, either by value
// or inline.
type SelectionRequest struct {
	TemplateID string          `json:"template_id" validate:"required,slug"`
	Values     []string        `json:"values" validate:"required_without=Options,max=100,dive,required"`
	Options    []OptionRequest `json:"options" validate:"max=100,dive"`
}

// GenerateRequest is the JSON request body for previewing or saving
// combinations. BaseSKU and BasePrice may be omitted when saving; they are
// then taken from the product service.
type GenerateRequest struct {
	BaseSKU   string             `json:"base_sku" validate:"omitempty,max=64"`
	BasePrice *decimal.Decimal   `json:"base_price"`
	Variants  []SelectionRequest `json:"variants" validate:"required,min=1,max=20,dive"`
}

func (req *GenerateRequest) input() *service.GenerateInput {
	in := &service.GenerateInput{
		BaseSKU:    req.BaseSKU,
		BasePrice:  req.BasePrice,
		Selections: make([]service.SelectionInput, 0, len(req.Variants)),
	}
	for _, v := range req.Variants {
		sel := service.SelectionInput{TemplateID: v.TemplateID, Values: v.Values}
		for _, o := range v.Options {
			opt := domain.NewPlainOption(o.Value, o.Label, o.AdditionalPrice)
			if o.ColorCode != "" {
				opt = domain.NewColorOption(o.Value, o.Label, o.ColorCode, o.AdditionalPrice)
			}
			sel.Options = append(sel.Options, opt)
		}
		in.Selections = append(in.Selections, sel)
	}
	return in
}

// UpdateQuantityRequest is the JSON request body for setting stock.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// --- Handlers ---

// Preview handles POST /api/v1/combinations/preview
func (h *CombinationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.BaseSKU) == "" {
		writeInvalidParam(w, "base_sku is required")
		return
	}

	combos, err := h.service.Preview(r.Context(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, combos)
}

// Save handles PUT /api/v1/products/{productId}/combinations
func (h *CombinationHandler) Save(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	var req GenerateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	combos, err := h.service.Save(r.Context(), productID.String(), req.input())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, combos)
}

// List handles GET /api/v1/products/{productId}/combinations[?filter.<type>=a,b]
func (h *CombinationHandler) List(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	filters := make(map[string][]string)
	for key, values := range r.URL.Query() {
		templateID, found := strings.CutPrefix(key, filterPrefix)
		if !found || templateID == "" {
			continue
		}
		for _, v := range values {
			filters[templateID] = append(filters[templateID], splitList(v)...)
		}
	}

	combos, err := h.service.List(r.Context(), productID.String(), filters)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, combos)
}

// Facets handles GET /api/v1/products/{productId}/combinations/facets
func (h *CombinationHandler) Facets(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	facets, err := h.service.Facets(r.Context(), productID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, facets)
}

// Delete handles DELETE /api/v1/products/{productId}/combinations
func (h *CombinationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productId"))
	if !ok {
		return
	}

	n, err := h.service.Delete(r.Context(), productID.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, map[string]any{"product_id": productID.String(), "deleted": n})
}

// Get handles GET /api/v1/combinations/{id}
func (h *CombinationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, c)
}

// UpdateQuantity handles PATCH /api/v1/combinations/{id}/quantity
func (h *CombinationHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.service.UpdateQuantity(r.Context(), id.String(), *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, c)
}

// Search handles GET /api/v1/combinations/search
//
// Query parameters (comma separated lists): product_id, exact (e.g.
// color-red), type (e.g. color), tag (e.g. color:red), fuzzy, price_range
// (e.g. 10to25), in_stock, page, per_page.
func (h *CombinationHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pagination.FromRequest(r)

	filter := repository.CombinationFilter{
		ExactMatch: splitList(q.Get("exact")),
		TypeMatch:  splitList(q.Get("type")),
		SearchTags: splitList(q.Get("tag")),
		FuzzyMatch: splitList(q.Get("fuzzy")),
		PriceRange: splitList(q.Get("price_range")),
		Page:       page.Page,
		PerPage:    page.PerPage,
	}
	if v := q.Get("product_id"); v != "" {
		id, ok := httputil.ParseUUID(w, v)
		if !ok {
			return
		}
		s := id.String()
		filter.ProductID = &s
	}
	if v := q.Get("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			writeInvalidParam(w, "in_stock must be true or false")
			return
		}
		filter.InStock = &inStock
	}

	combos, total, err := h.service.Search(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(combos, total, page))
}
