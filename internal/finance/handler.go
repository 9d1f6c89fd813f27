// AngelaMos | 2026
// handler.go

package finance

import (
	"encoding/json"
	"errors"
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
	r.Route("/finance", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/currencies", h.Currencies)

		r.Route("/settings/{businessID}", func(r chi.Router) {
			r.Use(scope)

			r.With(middleware.RequirePermission(role.ViewFinance)).Get("/", h.Get)
			r.With(middleware.RequirePermission(role.EditFinance)).Put("/", h.Update)
			r.With(middleware.RequirePermission(role.EditFinance)).Post("/reset", h.Reset)
		})
	})
}

func (h *Handler) Currencies(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, Currencies())
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "businessID"),
	)
	if err != nil {
		core.Fail(w, err, "finance settings")
		return
	}

	core.OK(w, s)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	s, err := h.service.Update(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "businessID"),
		in,
	)
	if err != nil {
		var fe FieldErrors
		if errors.As(err, &fe) {
			core.JSON(w, http.StatusBadRequest, core.Envelope{
				Success: false,
				Error: &core.ErrorBody{
					Code:    "VALIDATION_ERROR",
					Message: fe.Error(),
				},
				Data: fe,
			})
			return
		}
		core.Fail(w, err, "finance settings")
		return
	}

	core.OK(w, s)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Reset(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "businessID"),
	)
	if err != nil {
		core.Fail(w, err, "finance settings")
		return
	}

	core.OK(w, s)
}
