// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
	ErrResendTooSoon      = errors.New("verification resent too recently")
)

type UserInfo struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  string
	Role          role.Role
	BusinessID    string
	EmailVerified bool
	TokenVersion  int
}

type NewUser struct {
	Email         string
	PasswordHash  string
	Name          string
	Role          role.Role
	BusinessID    string
	EmailVerified bool
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, params NewUser) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, userID string) error
}

// Invitation is the part of a pending invitation needed to create the
// invitee's account.
type Invitation struct {
	ID         string
	BusinessID string
	Email      string
	Role       role.Role
}

type InvitationRedeemer interface {
	// Redeemable returns the pending invitation for token, or an error
	// wrapping core.ErrNotFound or core.ErrGone.
	Redeemable(ctx context.Context, token string) (*Invitation, error)
	MarkAccepted(ctx context.Context, inv *Invitation) error
}

type Options struct {
	VerificationTTL time.Duration
	ResendCooldown  time.Duration
	VerifyURL       string
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
	kv           core.KV
	mailer       core.Mailer
	invites      InvitationRedeemer
	opts         Options
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	userProvider UserProvider,
	kv core.KV,
	mailer core.Mailer,
	invites InvitationRedeemer,
	opts Options,
) *Service {
	if opts.VerificationTTL <= 0 {
		opts.VerificationTTL = 24 * time.Hour
	}
	return &Service{
		repo:         repo,
		jwt:          jwt,
		userProvider: userProvider,
		kv:           kv,
		mailer:       mailer,
		invites:      invites,
		opts:         opts,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // equalizes timing with a wrong password
			_, _, _ = core.CheckPassword(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.CheckPassword(req.Password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.userProvider.UpdatePassword(ctx, user.ID, newHash)
	}

	return s.createAuthResponse(ctx, user, userAgent, ipAddress, "", nil)
}

// Register creates a business owner. The owner has no business until the
// onboarding step creates one.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, NewUser{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         role.Owner,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.sendVerification(ctx, user); err != nil {
		slog.WarnContext(ctx, "verification mail not sent",
			"user_id", user.ID,
			"error", err,
		)
	}

	return s.createAuthResponse(ctx, user, userAgent, ipAddress, "", nil)
}

// AcceptInvite creates the invitee's account inside the inviting business.
func (s *Service) AcceptInvite(
	ctx context.Context,
	req AcceptInviteRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	inv, err := s.invites.Redeemable(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, NewUser{
		Email:         inv.Email,
		PasswordHash:  passwordHash,
		Name:          req.Name,
		Role:          inv.Role,
		BusinessID:    inv.BusinessID,
		EmailVerified: true,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create invited user: %w", err)
	}

	if err := s.invites.MarkAccepted(ctx, inv); err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}

	return s.createAuthResponse(ctx, user, userAgent, ipAddress, "", nil)
}

func verifyKey(tokenHash string) string {
	return "verify:" + tokenHash
}

func (s *Service) sendVerification(ctx context.Context, user *UserInfo) error {
	secret, err := core.NewLinkToken()
	if err != nil {
		return err
	}

	if err := s.kv.Set(ctx, verifyKey(secret.Hash), user.ID, s.opts.VerificationTTL); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	return s.mailer.Send(ctx, core.Message{
		To:      user.Email,
		Subject: "Verify your email address",
		Body:    "Hi " + user.Name + ", confirm your email to finish setting up your account.",
		Link:    core.LinkWithToken(s.opts.VerifyURL, secret.Value),
	})
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	key := verifyKey(core.HashToken(token))

	userID, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, core.ErrCacheMiss) {
			return fmt.Errorf("verify email: %w", core.ErrTokenInvalid)
		}
		return fmt.Errorf("verify email: %w", err)
	}

	if err := s.userProvider.MarkEmailVerified(ctx, userID); err != nil {
		return fmt.Errorf("verify email: %w", err)
	}

	//nolint:errcheck // token expires on its own
	_ = s.kv.Del(ctx, key)
	return nil
}

// ResendVerification is silent for unknown or already verified addresses so
// the endpoint cannot be used to enumerate accounts.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	if s.opts.ResendCooldown > 0 {
		first, err := s.kv.SetNX(
			ctx,
			"verify-cooldown:"+email,
			"1",
			s.opts.ResendCooldown,
		)
		if err != nil {
			return fmt.Errorf("resend verification: %w", err)
		}
		if !first {
			return ErrResendTooSoon
		}
	}

	user, err := s.userProvider.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("resend verification: %w", err)
	}

	if user.EmailVerified {
		return nil
	}

	return s.sendVerification(ctx, user)
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*AuthResponse, error) {
	tokenHash := core.HashToken(refreshToken)

	storedToken, err := s.repo.FindByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if storedToken.IsUsed {
		//nolint:errcheck // security revocation continues regardless
		_ = s.repo.RevokeByFamilyID(ctx, storedToken.FamilyID)
		return nil, ErrTokenReuse
	}

	if !storedToken.IsValid() {
		if storedToken.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.userProvider.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.createAuthResponse(
		ctx,
		user,
		userAgent,
		ipAddress,
		storedToken.FamilyID,
		&storedToken.ID,
	)
}

// Logout revokes the refresh token and blacklists the presented access
// token until it would have expired anyway.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken, userID, accessJTI string,
) error {
	if accessJTI != "" {
		if err := s.RevokeAccessToken(
			ctx,
			accessJTI,
			time.Now().Add(s.jwt.AccessTokenTTL()),
		); err != nil {
			return err
		}
	}

	if refreshToken == "" {
		return nil
	}

	storedToken, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find token: %w", err)
	}

	if storedToken.UserID != userID {
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if err := s.repo.RevokeByID(ctx, storedToken.ID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.userProvider.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := s.kv.Set(ctx, blacklistKey(jti), "1", ttl); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	user *UserInfo,
	userAgent, ipAddress, familyID string,
	oldTokenID *string,
) (*AuthResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Role:         user.Role,
		BusinessID:   user.BusinessID,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	grant, err := s.jwt.IssueRefreshToken(familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newTokenID := uuid.New().String()

	refreshTokenEntity := &RefreshToken{
		ID:        newTokenID,
		UserID:    user.ID,
		TokenHash: grant.Secret.Hash,
		FamilyID:  grant.FamilyID,
		ExpiresAt: grant.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.repo.Create(ctx, refreshTokenEntity); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if oldTokenID != nil {
		//nolint:errcheck // best-effort token chain tracking
		_ = s.repo.MarkAsUsed(ctx, *oldTokenID, newTokenID)
	}

	ttl := s.jwt.AccessTokenTTL()

	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: grant.Secret.Value,
			TokenType:    "Bearer",
			ExpiresIn:    int(ttl / time.Second),
			ExpiresAt:    time.Now().Add(ttl),
		},
	}, nil
}
