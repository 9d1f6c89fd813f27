// AngelaMos | 2026
// handler.go

package debt

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
	view := middleware.RequirePermission(role.ViewDebts)

	r.Route("/debts", func(r chi.Router) {
		r.Use(authenticator, scope)

		r.With(view).Get("/", h.List)
		r.With(middleware.RequirePermission(role.CreateDebt)).Post("/", h.Create)
		r.With(view).Get("/{id}", h.Get)
		r.With(view).Get("/{id}/payments", h.ListPayments)
		r.With(middleware.RequirePermission(role.RecordPayment)).
			Post("/{id}/payments", h.RecordPayment)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	list, err := h.service.List(r.Context(), middleware.GetActor(r.Context()), Filter{
		CustomerID: q.Get("customer_id"),
		Status:     Status(q.Get("status")),
	})
	if err != nil {
		core.Fail(w, err, "debt")
		return
	}

	core.OK(w, ToDebtResponseList(list, h.service.Now()))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		core.Fail(w, err, "debt")
		return
	}

	core.OK(w, ToDebtResponse(d, h.service.Now()))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	d, err := h.service.Create(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		core.Fail(w, err, "customer")
		return
	}

	core.Created(w, ToDebtResponse(d, h.service.Now()))
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	d, p, err := h.service.RecordPayment(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "id"),
		req,
	)
	if err != nil {
		core.Fail(w, err, "debt")
		return
	}

	core.Created(w, PaymentResult{
		Debt:    ToDebtResponse(d, h.service.Now()),
		Payment: ToPaymentResponse(p),
	})
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPayments(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		core.Fail(w, err, "debt")
		return
	}

	core.OK(w, ToPaymentResponseList(list))
}
