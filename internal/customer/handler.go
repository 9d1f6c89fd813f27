// AngelaMos | 2026
// handler.go

package customer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/middleware"
	"github.com/carterperez-dev/debt-manager/internal/role"
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
	scope func(http.Handler) http.Handler,
) {
	r.Route("/customers", func(r chi.Router) {
		r.Use(authenticator, scope)

		r.With(middleware.RequirePermission(role.ViewCustomers)).Get("/", h.List)
		r.With(middleware.RequirePermission(role.CreateCustomer)).Post("/", h.Create)
		r.With(middleware.RequirePermission(role.ViewCustomers)).Get("/{id}", h.Get)
		r.With(middleware.RequirePermission(role.EditCustomer)).Put("/{id}", h.Update)
		r.With(middleware.RequirePermission(role.DeleteCustomer)).Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.List(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		core.Fail(w, err, "customer")
		return
	}

	out := make([]CustomerResponse, 0, len(listings))
	for i := range listings {
		out = append(out, ToCustomerResponse(&listings[i].Customer, listings[i].Summary))
	}
	core.OK(w, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.GetListing(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		core.Fail(w, err, "customer")
		return
	}

	core.OK(w, ToCustomerResponse(&l.Customer, l.Summary))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		core.Fail(w, err, "customer phone")
		return
	}

	core.Created(w, ToCustomerResponse(c, Summary{CustomerID: c.ID}))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	c, err := h.service.Update(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "id"),
		req,
	)
	if err != nil {
		core.Fail(w, err, "customer")
		return
	}

	core.OK(w, ToCustomerResponse(c, Summary{CustomerID: c.ID}))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		core.Fail(w, err, "customer")
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(
	w http.ResponseWriter,
	r *http.Request,
) (SaveCustomerRequest, bool) {
	var req SaveCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}

	return req, true
}
