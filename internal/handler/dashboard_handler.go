package handler

import (
	"net/http"

	"shopcart/internal/service"

	"github.com/rs/zerolog"
)

// DashboardHandler serves the merchant analytics widgets.
type DashboardHandler struct {
	service service.DashboardService
	resp    *Responder
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service service.DashboardService, resp *Responder, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		resp:    resp,
		logger:  logger.With().Str("handler", "dashboard").Logger(),
	}
}

// Revenue handles GET /api/merchant/dashboard/revenue?mode=day|week|month.
func (h *DashboardHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	chart, err := h.service.Revenue(r.Context(), currentSession(r), r.URL.Query().Get("mode"))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// CategorySales handles GET /api/merchant/dashboard/category-sales?period=day|month|year.
func (h *DashboardHandler) CategorySales(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.CategorySales(r.Context(), currentSession(r), r.URL.Query().Get("period"))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Overview handles GET /api/merchant/dashboard/overview?period=&chartMode=.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	overview, err := h.service.Overview(r.Context(), currentSession(r), q.Get("period"), q.Get("chartMode"))
	if err != nil {
		h.resp.Fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
