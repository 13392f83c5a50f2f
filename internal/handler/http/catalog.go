package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/internal/service"
	"github.com/utafrali/variantcatalog/internal/variant"
	"github.com/utafrali/variantcatalog/pkg/httputil"
)

// CatalogHandler serves the read-only catalog and the variant string codec.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// EncodeOptionsRequest overrides the default token format. IncludePrice
// defaults to true.
type EncodeOptionsRequest struct {
	Separator      string `json:"separator" validate:"omitempty,max=4"`
	PriceSeparator string `json:"price_separator" validate:"omitempty,max=4"`
	IncludePrice   *bool  `json:"include_price"`
	IncludeName    bool   `json:"include_name"`
	MaxLength      int    `json:"max_length" validate:"gte=0,lte=1000"`
}

func (o *EncodeOptionsRequest) options() variant.EncodeOptions {
	opts := variant.DefaultEncodeOptions()
	if o == nil {
		return opts
	}
	if o.Separator != "" {
		opts.Separator = o.Separator
	}
	if o.PriceSeparator != "" {
		opts.PriceSeparator = o.PriceSeparator
	}
	if o.IncludePrice != nil {
		opts.IncludePrice = *o.IncludePrice
	}
	opts.IncludeName = o.IncludeName
	if o.MaxLength > 0 {
		opts.MaxLength = o.MaxLength
	}
	return opts
}

// EncodeRequest is the JSON request body for encoding variant values.
type EncodeRequest struct {
	Values  domain.VariantValues  `json:"values" validate:"required,min=1"`
	Options *EncodeOptionsRequest `json:"options"`
	Strict  bool                  `json:"strict"`
}

// DecodeRequest is the JSON request body for decoding variant tokens.
type DecodeRequest struct {
	Tokens  []string              `json:"tokens" validate:"required,min=1,dive,required"`
	Options *EncodeOptionsRequest `json:"options"`
}

// --- Handlers ---

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.ListCategories())
}

// GetCategory handles GET /api/v1/categories/{categoryId}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategory(chi.URLParam(r, "categoryId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, category)
}

// GetSubcategory handles GET /api/v1/categories/{categoryId}/subcategories/{subcategoryId}
func (h *CatalogHandler) GetSubcategory(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.GetSubcategory(chi.URLParam(r, "categoryId"), chi.URLParam(r, "subcategoryId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, sub)
}

// ListCategoryProductTypes handles GET /api/v1/categories/{categoryId}/product-types
func (h *CatalogHandler) ListCategoryProductTypes(w http.ResponseWriter, r *http.Request) {
	h.writeProductTypes(w, r, chi.URLParam(r, "categoryId"))
}

// ListProductTypes handles GET /api/v1/product-types[?category_id=]
func (h *CatalogHandler) ListProductTypes(w http.ResponseWriter, r *http.Request) {
	h.writeProductTypes(w, r, r.URL.Query().Get("category_id"))
}

func (h *CatalogHandler) writeProductTypes(w http.ResponseWriter, r *http.Request, categoryID string) {
	types, err := h.service.ListProductTypes(categoryID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, types)
}

// GetProductType handles GET /api/v1/product-types/{productTypeId}
func (h *CatalogHandler) GetProductType(w http.ResponseWriter, r *http.Request) {
	pt, err := h.service.GetProductType(chi.URLParam(r, "productTypeId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, pt)
}

// ListProductTypeTemplates handles
// GET /api/v1/product-types/{productTypeId}/variant-templates[?recommended=true].
// Unknown product types yield an empty list.
func (h *CatalogHandler) ListProductTypeTemplates(w http.ResponseWriter, r *http.Request) {
	recommended := httputil.QueryBool(r, "recommended", false)
	templates := h.service.VariantTemplatesFor(r.Context(), chi.URLParam(r, "productTypeId"), recommended)
	httputil.WriteData(w, http.StatusOK, templates)
}

// ListVariantTemplates handles GET /api/v1/variant-templates
func (h *CatalogHandler) ListVariantTemplates(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.ListVariantTemplates())
}

// GetVariantTemplate handles GET /api/v1/variant-templates/{templateId}
func (h *CatalogHandler) GetVariantTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.service.GetVariantTemplate(chi.URLParam(r, "templateId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, tpl)
}

// Encode handles POST /api/v1/variants/encode
func (h *CatalogHandler) Encode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.service.Encode(req.Values, req.Options.options(), req.Strict)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// Decode handles POST /api/v1/variants/decode
func (h *CatalogHandler) Decode(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	httputil.WriteData(w, http.StatusOK, h.service.Decode(req.Tokens, req.Options.options()))
}
