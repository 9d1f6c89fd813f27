// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/middleware"
)

// BusinessLookup resolves the business summary embedded in /me.
type BusinessLookup interface {
	Summary(ctx context.Context, businessID string) (*BusinessSummary, error)
}

type Handler struct {
	service    *Service
	businesses BusinessLookup
	validator  *validator.Validate
}

func NewHandler(service *Service, businesses BusinessLookup) *Handler {
	return &Handler{
		service:    service,
		businesses: businesses,
		validator:  core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.service.GetMe(r.Context(), userID)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.OK(w, h.respond(r.Context(), user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateMe(r.Context(), userID, req)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.OK(w, h.respond(r.Context(), user))
}

// respond builds the public user shape with its business embedded.
func (h *Handler) respond(ctx context.Context, u *User) UserResponse {
	resp := ToUserResponse(u)
	if !u.HasBusiness() || h.businesses == nil {
		return resp
	}

	summary, err := h.businesses.Summary(ctx, *u.BusinessID)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			core.SetSpanError(ctx, err)
		}
		return resp
	}
	resp.Business = summary
	return resp
}
