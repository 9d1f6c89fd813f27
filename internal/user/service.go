// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/debt-manager/internal/auth"
	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/middleware"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	params auth.NewUser,
) (*auth.UserInfo, error) {
	if !params.Role.Valid() {
		return nil, fmt.Errorf(
			"create user: invalid role %q: %w",
			params.Role,
			core.ErrInvalidInput,
		)
	}

	user := &User{
		ID:            uuid.New().String(),
		Email:         normalizeEmail(params.Email),
		PasswordHash:  params.PasswordHash,
		Name:          strings.TrimSpace(params.Name),
		Role:          params.Role,
		EmailVerified: params.EmailVerified,
	}
	if params.BusinessID != "" {
		businessID := params.BusinessID
		user.BusinessID = &businessID
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) MarkEmailVerified(ctx context.Context, userID string) error {
	return s.repo.MarkEmailVerified(ctx, userID)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	if req.Name == nil {
		return s.repo.GetByID(ctx, userID)
	}

	return s.repo.UpdateName(ctx, userID, strings.TrimSpace(*req.Name))
}

// BusinessIDForUser implements middleware.BusinessResolver.
func (s *Service) BusinessIDForUser(
	ctx context.Context,
	userID string,
) (string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	if !user.HasBusiness() {
		return "", fmt.Errorf("resolve business: %w", core.ErrNotFound)
	}

	return *user.BusinessID, nil
}

// AttachBusiness links an owner to the business they just created and
// returns the refreshed record.
func (s *Service) AttachBusiness(
	ctx context.Context,
	userID, businessID string,
) (*User, error) {
	if err := s.repo.SetBusiness(ctx, userID, businessID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, normalizeEmail(email))
}

func (s *Service) ListMembers(
	ctx context.Context,
	businessID string,
) ([]User, error) {
	return s.repo.ListByBusiness(ctx, businessID)
}

// ChangeRole lets actor move target to newRole inside businessID.
func (s *Service) ChangeRole(
	ctx context.Context,
	actorID, targetID, businessID string,
	newRole role.Role,
) (*User, error) {
	actor, target, err := s.loadPair(ctx, actorID, targetID, businessID)
	if err != nil {
		return nil, err
	}

	if !role.CanAssign(actor.Role, newRole) || !role.CanAssign(actor.Role, target.Role) {
		return nil, fmt.Errorf("change role: %w", core.ErrForbidden)
	}

	if err := s.repo.UpdateRole(ctx, target.ID, newRole); err != nil {
		return nil, err
	}

	target.Role = newRole
	return target, nil
}

func (s *Service) RemoveMember(
	ctx context.Context,
	actorID, targetID, businessID string,
) error {
	actor, target, err := s.loadPair(ctx, actorID, targetID, businessID)
	if err != nil {
		return err
	}

	if !role.CanAssign(actor.Role, target.Role) {
		return fmt.Errorf("remove member: %w", core.ErrForbidden)
	}

	return s.repo.SoftDelete(ctx, target.ID)
}

func (s *Service) loadPair(
	ctx context.Context,
	actorID, targetID, businessID string,
) (*User, *User, error) {
	if actorID == targetID {
		return nil, nil, core.NewDomainError(
			core.ErrInvalidInput,
			"you cannot change your own membership",
		)
	}

	actor, err := s.repo.GetByID(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}

	if target.BusinessIDOrEmpty() != businessID {
		return nil, nil, fmt.Errorf("team member: %w", core.ErrNotFound)
	}

	if target.IsOwner() {
		return nil, nil, fmt.Errorf("owner membership is fixed: %w", core.ErrForbidden)
	}

	return actor, target, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		PasswordHash:  u.PasswordHash,
		Role:          u.Role,
		BusinessID:    u.BusinessIDOrEmpty(),
		EmailVerified: u.EmailVerified,
		TokenVersion:  u.TokenVersion,
	}
}

var (
	_ auth.UserProvider           = (*Service)(nil)
	_ middleware.BusinessResolver = (*Service)(nil)
)
