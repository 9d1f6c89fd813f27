// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

const (
	UserIDKey     contextKey = "user_id"
	UserRoleKey   contextKey = "user_role"
	ClaimsKey     contextKey = "jwt_claims"
	BusinessIDKey contextKey = "business_id"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// AccessTokenClaims is the verified caller. BusinessID is empty until the
// caller's owner has created a business.
type AccessTokenClaims struct {
	UserID       string
	Role         role.Role
	BusinessID   string
	TokenVersion int
	JTI          string
}

func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores the verified identity on ctx.
func WithClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
	return context.WithValue(ctx, ClaimsKey, claims)
}

// RequirePermission rejects callers whose role lacks every listed action.
func RequirePermission(actions ...role.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r.Context())

			if userRole == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			for _, a := range actions {
				if role.Can(userRole, a) {
					next.ServeHTTP(w, r)
					return
				}
			}

			core.JSONError(w, core.ForbiddenError("insufficient permissions"))
		})
	}
}

// RequireRole admits only the listed roles.
func RequireRole(roles ...role.Role) func(http.Handler) http.Handler {
	roleSet := make(map[role.Role]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r.Context())

			if userRole == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if _, ok := roleSet[userRole]; !ok {
				core.JSONError(
					w,
					core.ForbiddenError("insufficient permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BusinessResolver looks up the business a user currently belongs to. It
// backs BusinessScope when the verified claims carry no business.
type BusinessResolver interface {
	BusinessIDForUser(ctx context.Context, userID string) (string, error)
}

func BusinessScope(resolver BusinessResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == "" {
				core.JSONError(w, core.UnauthorizedError(""))
				return
			}

			businessID, err := scopeFor(r.Context(), resolver, userID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					core.JSONError(w, core.NewAppError(
						core.ErrConflict,
						"create a business first",
						http.StatusConflict,
						"BUSINESS_REQUIRED",
					))
					return
				}
				core.InternalServerError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), BusinessIDKey, businessID)
			core.AnnotateActor(ctx, GetActor(ctx))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func scopeFor(
	ctx context.Context,
	resolver BusinessResolver,
	userID string,
) (string, error) {
	if claims := GetClaims(ctx); claims != nil && claims.BusinessID != "" {
		return claims.BusinessID, nil
	}
	return resolver.BusinessIDForUser(ctx, userID)
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	default:
		core.JSONError(w, core.TokenInvalidError())
	}
}

func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func GetUserRole(ctx context.Context) role.Role {
	if r, ok := ctx.Value(UserRoleKey).(role.Role); ok {
		return r
	}
	return ""
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(ClaimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}

func GetBusinessID(ctx context.Context) string {
	if id, ok := ctx.Value(BusinessIDKey).(string); ok {
		return id
	}
	return ""
}

// WithBusinessID is used by tests and internal callers that already resolved
// the tenant.
func WithBusinessID(ctx context.Context, businessID string) context.Context {
	return context.WithValue(ctx, BusinessIDKey, businessID)
}

// GetActor collects the identity and tenant stored by Authenticator and
// BusinessScope.
func GetActor(ctx context.Context) role.Actor {
	return role.Actor{
		UserID:     GetUserID(ctx),
		BusinessID: GetBusinessID(ctx),
		Role:       GetUserRole(ctx),
	}
}
