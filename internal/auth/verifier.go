// AngelaMos | 2026
// verifier.go

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/middleware"
)

// Verifier checks signature and expiry through the JWT manager, then
// rejects blacklisted tokens, tokens minted before the user's last role
// change or logout-all, and tokens naming a business the user has left.
// The returned claims carry the user's current business.
type Verifier struct {
	jwt   *JWTManager
	users UserProvider
	kv    core.KV
}

func NewVerifier(jwt *JWTManager, users UserProvider, kv core.KV) *Verifier {
	return &Verifier{jwt: jwt, users: users, kv: kv}
}

func (v *Verifier) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := v.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if claims.JTI != "" {
		_, err := v.kv.Get(ctx, blacklistKey(claims.JTI))
		switch {
		case err == nil:
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		case !errors.Is(err, core.ErrCacheMiss):
			return nil, fmt.Errorf("check blacklist: %w", err)
		}
	}

	user, err := v.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}
	if claims.BusinessID != "" && claims.BusinessID != user.BusinessID {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}
	claims.BusinessID = user.BusinessID

	return claims, nil
}

var _ middleware.TokenVerifier = (*Verifier)(nil)
