// AngelaMos | 2026
// handler.go

package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

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
		r.With(middleware.RequirePermission(role.ExportBusiness)).
			Get("/export/business", h.Business)
	})
}

func (h *Handler) Business(w http.ResponseWriter, r *http.Request) {
	file, err := h.service.Business(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		core.Fail(w, err, "export")
		return
	}

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", file.Name),
	)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(file.Content); err != nil {
		slog.Warn("export write failed", "error", err)
	}
}
