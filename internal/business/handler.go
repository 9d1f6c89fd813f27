// AngelaMos | 2026
// handler.go

package business

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/middleware"
	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/businesses", h.List)
		r.Get("/business/my", h.GetMine)
		r.With(middleware.RequirePermission(role.EditBusiness)).
			Post("/business/my", h.SaveMine)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListOwned(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.Fail(w, err, "business")
		return
	}

	core.OK(w, ToBusinessResponseList(list))
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Mine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.Fail(w, err, "business")
		return
	}

	core.OK(w, ToBusinessResponse(b))
}

func (h *Handler) SaveMine(w http.ResponseWriter, r *http.Request) {
	var req SaveBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	b, owner, created, err := h.service.SaveMine(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		core.Fail(w, err, "business")
		return
	}

	userResp := user.ToUserResponse(owner)
	userResp.Business = &user.BusinessSummary{ID: b.ID, Name: b.Name}

	resp := SaveBusinessResponse{
		Business: ToBusinessResponse(b),
		User:     userResp,
		Created:  created,
	}

	if created {
		core.Created(w, resp)
		return
	}
	core.OK(w, resp)
}
