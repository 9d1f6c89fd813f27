// AngelaMos | 2026
// service.go

package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/debt-manager/internal/auth"
	"github.com/carterperez-dev/debt-manager/internal/config"
	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

type Members interface {
	ListMembers(ctx context.Context, businessID string) ([]user.User, error)
	ChangeRole(
		ctx context.Context,
		actorID, targetID, businessID string,
		newRole role.Role,
	) (*user.User, error)
	RemoveMember(ctx context.Context, actorID, targetID, businessID string) error
	EmailExists(ctx context.Context, email string) (bool, error)
}

type ChangeNotifier interface {
	BusinessChanged(ctx context.Context, businessID string)
}

type Service struct {
	repo     Repository
	members  Members
	mailer   core.Mailer
	notifier ChangeNotifier
	cfg      config.InvitationConfig
	now      func() time.Time
}

func NewService(
	repo Repository,
	members Members,
	mailer core.Mailer,
	notifier ChangeNotifier,
	cfg config.InvitationConfig,
) *Service {
	return &Service{
		repo:     repo,
		members:  members,
		mailer:   mailer,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) Members(ctx context.Context, actor role.Actor) ([]user.User, error) {
	return s.members.ListMembers(ctx, actor.BusinessID)
}

func (s *Service) ChangeRole(
	ctx context.Context,
	actor role.Actor,
	req ChangeRoleRequest,
) (*user.User, error) {
	u, err := s.members.ChangeRole(ctx, actor.UserID, req.UserID, actor.BusinessID, req.Role)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "member role changed",
		"business_id", actor.BusinessID,
		"user_id", u.ID,
		"role", u.Role,
		"by", actor.UserID,
	)
	s.changed(ctx, actor.BusinessID)
	return u, nil
}

func (s *Service) RemoveMember(ctx context.Context, actor role.Actor, userID string) error {
	if err := s.members.RemoveMember(ctx, actor.UserID, userID, actor.BusinessID); err != nil {
		return err
	}
	s.changed(ctx, actor.BusinessID)
	return nil
}

func (s *Service) Invitations(ctx context.Context, actor role.Actor) ([]Invitation, error) {
	return s.repo.ListByBusiness(ctx, actor.BusinessID)
}

func (s *Service) Invite(
	ctx context.Context,
	actor role.Actor,
	req InviteRequest,
) (*Invitation, error) {
	if !role.CanAssign(actor.Role, req.Role) {
		return nil, core.NewDomainError(
			core.ErrForbidden,
			"you cannot invite a %s",
			req.Role,
		)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.members.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.NewDomainError(
			core.ErrConflict,
			"%s already has an account",
			email,
		)
	}

	pending, err := s.repo.GetPendingByEmail(ctx, actor.BusinessID, email)
	switch {
	case err == nil && pending.EffectiveStatus(s.now()) == StatusExpired:
		if err := s.repo.Transition(ctx, pending.ID, StatusPending, StatusCancelled); err != nil &&
			!errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
	case err == nil:
		return nil, core.NewDomainError(
			core.ErrConflict,
			"%s already has a pending invitation",
			email,
		)
	case !errors.Is(err, core.ErrNotFound):
		return nil, err
	}

	secret, err := core.NewLinkToken()
	if err != nil {
		return nil, fmt.Errorf("invite: %w", err)
	}

	inv := &Invitation{
		ID:         uuid.New().String(),
		BusinessID: actor.BusinessID,
		Name:       strings.TrimSpace(req.Name),
		Email:      email,
		Role:       req.Role,
		TokenHash:  secret.Hash,
		Status:     StatusPending,
		InvitedBy:  actor.UserID,
		ExpiresAt:  s.now().Add(s.cfg.TTL),
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.NewDomainError(
				core.ErrConflict,
				"%s already has a pending invitation",
				email,
			)
		}
		return nil, err
	}

	s.send(ctx, inv, secret.Value)
	return inv, nil
}

// Resend issues a fresh token and expiry. The previous link stops working.
func (s *Service) Resend(
	ctx context.Context,
	actor role.Actor,
	id string,
) (*Invitation, error) {
	inv, err := s.repo.GetByID(ctx, actor.BusinessID, id)
	if err != nil {
		return nil, err
	}

	if inv.Status != StatusPending {
		return nil, core.NewDomainError(
			core.ErrConflict,
			"invitation is already %s",
			inv.Status,
		)
	}

	secret, err := core.NewLinkToken()
	if err != nil {
		return nil, fmt.Errorf("resend invitation: %w", err)
	}

	expiresAt := s.now().Add(s.cfg.TTL)
	if err := s.repo.Reissue(ctx, inv.ID, secret.Hash, expiresAt); err != nil {
		return nil, err
	}
	inv.TokenHash = secret.Hash
	inv.ExpiresAt = expiresAt

	s.send(ctx, inv, secret.Value)
	return inv, nil
}

func (s *Service) Cancel(ctx context.Context, actor role.Actor, id string) error {
	inv, err := s.repo.GetByID(ctx, actor.BusinessID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Transition(ctx, inv.ID, StatusPending, StatusCancelled); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NewDomainError(
				core.ErrConflict,
				"invitation is already %s",
				inv.Status,
			)
		}
		return err
	}
	return nil
}

// Redeemable implements auth.InvitationRedeemer.
func (s *Service) Redeemable(ctx context.Context, token string) (*auth.Invitation, error) {
	inv, err := s.repo.GetByTokenHash(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NewDomainError(core.ErrNotFound, "invitation not found")
		}
		return nil, err
	}

	switch inv.EffectiveStatus(s.now()) {
	case StatusAccepted:
		return nil, core.NewDomainError(core.ErrGone, "invitation has already been used")
	case StatusCancelled:
		return nil, core.NewDomainError(core.ErrGone, "invitation was cancelled")
	case StatusExpired:
		return nil, core.NewDomainError(core.ErrGone, "invitation has expired")
	}

	return &auth.Invitation{
		ID:         inv.ID,
		BusinessID: inv.BusinessID,
		Email:      inv.Email,
		Role:       inv.Role,
	}, nil
}

// MarkAccepted closes the invitation once its user exists. The new member
// changes team size, so cached dashboards are dropped.
func (s *Service) MarkAccepted(ctx context.Context, inv *auth.Invitation) error {
	if err := s.repo.Transition(ctx, inv.ID, StatusPending, StatusAccepted); err != nil {
		return err
	}
	s.changed(ctx, inv.BusinessID)
	return nil
}

func (s *Service) send(ctx context.Context, inv *Invitation, token string) {
	err := s.mailer.Send(ctx, core.Message{
		To:      inv.Email,
		Subject: "You have been invited to join a team",
		Body:    "Hi " + inv.Name + ", you have been invited as " + inv.Role.String() + ".",
		Link:    core.LinkWithToken(s.cfg.AcceptURL, token),
	})
	if err != nil {
		slog.WarnContext(ctx, "invitation mail not sent",
			"invitation_id", inv.ID,
			"error", err,
		)
	}
}

func (s *Service) changed(ctx context.Context, businessID string) {
	if s.notifier != nil {
		s.notifier.BusinessChanged(ctx, businessID)
	}
}

var _ auth.InvitationRedeemer = (*Service)(nil)
