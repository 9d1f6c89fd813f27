// AngelaMos | 2026
// handler.go

package team

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

// RegisterRoutes mounts /owner. sendLimiter throttles the endpoints that
// send invitation mail.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	scope func(http.Handler) http.Handler,
	sendLimiter func(http.Handler) http.Handler,
) {
	manage := middleware.RequirePermission(role.ManageInvitations)

	r.Route("/owner", func(r chi.Router) {
		r.Use(authenticator, scope)

		r.With(middleware.RequirePermission(role.ViewTeam)).Get("/team", h.ListMembers)
		r.With(middleware.RequirePermission(role.ChangeMemberRole)).Post("/team", h.ChangeRole)
		r.With(middleware.RequirePermission(role.RemoveMember)).Delete("/team/{id}", h.RemoveMember)

		r.With(manage).Get("/invitations", h.ListInvitations)
		r.With(manage, sendLimiter).Post("/invitations", h.Invite)
		r.With(manage, sendLimiter).Post("/invitations/{id}/resend", h.Resend)
		r.With(manage).Delete("/invitations/{id}", h.Cancel)
	})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.Members(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		core.Fail(w, err, "team")
		return
	}

	core.OK(w, user.ToMemberResponseList(members))
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeRoleRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, err := h.service.ChangeRole(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		core.Fail(w, err, "team member")
		return
	}

	core.OK(w, user.ToMemberResponseList([]user.User{*u})[0])
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveMember(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		core.Fail(w, err, "team member")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Invitations(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		core.Fail(w, err, "invitation")
		return
	}

	core.OK(w, ToInvitationResponseList(list, h.service.Now()))
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if !h.decode(w, r, &req) {
		return
	}

	inv, err := h.service.Invite(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		core.Fail(w, err, "invitation")
		return
	}

	core.Created(w, ToInvitationResponse(inv, h.service.Now()))
}

func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Resend(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		core.Fail(w, err, "invitation")
		return
	}

	core.OK(w, ToInvitationResponse(inv, h.service.Now()))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	err := h.service.Cancel(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		core.Fail(w, err, "invitation")
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}
