// AngelaMos | 2026
// handler.go

package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/middleware"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	scope func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator, scope)

		r.With(middleware.RequirePermission(role.ViewOwnerDashboard)).
			Get("/dashboard-owner", h.Owner)
		r.With(middleware.RequirePermission(role.ViewSalesDashboard)).
			Get("/dashboard-salesman", h.Sales)
	})
}

func (h *Handler) Owner(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Owner(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		core.Fail(w, err, "dashboard")
		return
	}
	core.OK(w, stats)
}

func (h *Handler) Sales(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Sales(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		core.Fail(w, err, "dashboard")
		return
	}
	core.OK(w, stats)
}
