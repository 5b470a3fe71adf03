package handler

import (
	"net/http"

	"shopcart/internal/model"
	"shopcart/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler serves the public catalogue. A session is optional.
type CatalogHandler struct {
	service service.CatalogService
	resp    *Responder
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service service.CatalogService, resp *Responder, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		resp:    resp,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// ListProducts handles GET /api/products.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListProducts(r.Context(), optionalToken(r), productQuery(r))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetProduct handles GET /api/products/{id}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), optionalToken(r), id)
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context(), optionalToken(r))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// productQuery reads catalogue filters from the query string. Bounds are
// enforced by the service.
func productQuery(r *http.Request) model.ProductQuery {
	q := r.URL.Query()
	return model.ProductQuery{
		Page:           queryInt(r, "page"),
		Limit:          queryInt(r, "limit"),
		OrderBy:        q.Get("orderBy"),
		OrderDirection: q.Get("orderDirection"),
		Category:       q.Get("category"),
		Search:         q.Get("search"),
		MinPrice:       queryFloat(r, "minPrice"),
		MaxPrice:       queryFloat(r, "maxPrice"),
	}
}
