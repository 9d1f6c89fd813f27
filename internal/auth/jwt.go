// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/debt-manager/internal/config"
	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/middleware"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

// Private claims carried by access tokens.
const (
	claimRole     = "role"
	claimBusiness = "business_id"
	claimVersion  = "token_version"
	claimUse      = "token_use"

	useAccess = "access"
)

// JWTManager signs ES256 access tokens and issues refresh tokens. The key
// id is the key's thumbprint, so it stays the same across restarts.
type JWTManager struct {
	signing jwk.Key
	verify  jwk.Key
	jwks    jwk.Set
	kid     string
	cfg     config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	raw, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	signing, err := jwk.ParseKey(raw, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	kid, err := thumbprintID(signing)
	if err != nil {
		return nil, err
	}
	if err := stamp(signing, kid); err != nil {
		return nil, err
	}

	verify, err := signing.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	if err := verify.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("set key usage: %w", err)
	}

	jwks := jwk.NewSet()
	if err := jwks.AddKey(verify); err != nil {
		return nil, fmt.Errorf("build jwks: %w", err)
	}

	return &JWTManager{
		signing: signing,
		verify:  verify,
		jwks:    jwks,
		kid:     kid,
		cfg:     cfg,
	}, nil
}

func thumbprintID(key jwk.Key) (string, error) {
	sum, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("key thumbprint: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sum)[:16], nil
}

func stamp(key jwk.Key, kid string) error {
	if err := key.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return fmt.Errorf("set algorithm: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, kid); err != nil {
		return fmt.Errorf("set key id: %w", err)
	}
	return nil
}

// GenerateKeyPair writes a fresh P-256 key pair as PEM files.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	private, err := jwk.Import(ecKey)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}
	public, err := private.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	if err := writePEM(privateKeyPath, private, 0o600); err != nil {
		return err
	}
	//nolint:gosec // G306: the public half is meant to be readable
	return writePEM(publicKeyPath, public, 0o644)
}

func writePEM(path string, key jwk.Key, mode os.FileMode) error {
	encoded, err := jwk.Pem(key)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, encoded, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// AccessTokenClaims describe the member an access token speaks for.
// BusinessID is empty for owners who have not created their business yet.
type AccessTokenClaims struct {
	UserID       string
	Role         role.Role
	BusinessID   string
	TokenVersion int
}

func (m *JWTManager) CreateAccessToken(claims AccessTokenClaims) (string, error) {
	now := time.Now()

	b := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.cfg.Issuer).
		Audience([]string{m.cfg.Audience}).
		Subject(claims.UserID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(m.cfg.AccessTokenExpire)).
		Claim(claimUse, useAccess).
		Claim(claimRole, string(claims.Role)).
		Claim(claimVersion, claims.TokenVersion)
	if claims.BusinessID != "" {
		b = b.Claim(claimBusiness, claims.BusinessID)
	}

	token, err := b.Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.signing))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return string(signed), nil
}

func invalidToken(reason string) error {
	return fmt.Errorf("verify token: %s: %w", reason, core.ErrTokenInvalid)
}

// VerifyAccessToken checks signature, issuer, audience and lifetime, then
// decodes the member claims. It does not consult any store.
func (m *JWTManager) VerifyAccessToken(
	_ context.Context,
	raw string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.ES256(), m.verify),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithAudience(m.cfg.Audience),
	)
	if err != nil {
		if expired(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var use string
	if token.Get(claimUse, &use) != nil || use != useAccess {
		return nil, invalidToken("not an access token")
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, invalidToken("no subject")
	}

	var rawRole string
	if token.Get(claimRole, &rawRole) != nil {
		return nil, invalidToken("no role")
	}
	memberRole, err := role.Parse(rawRole)
	if err != nil {
		return nil, invalidToken(err.Error())
	}

	// JSON numbers decode as float64.
	var version float64
	if token.Get(claimVersion, &version) != nil {
		return nil, invalidToken("no token version")
	}

	claims := &middleware.AccessTokenClaims{
		UserID:       subject,
		Role:         memberRole,
		TokenVersion: int(version),
	}
	_ = token.Get(claimBusiness, &claims.BusinessID)
	claims.JTI, _ = token.JwtID()
	return claims, nil
}

// expired matches jwx's "exp" validation failure.
func expired(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, `"exp"`) && strings.Contains(msg, "not satisfied")
}

// JWKSHandler publishes the verification key for other services.
func (m *JWTManager) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body, err := json.Marshal(m.jwks)
		if err != nil {
			core.InternalServerError(w, fmt.Errorf("encode jwks: %w", err))
			return
		}
		w.Header().Set("Content-Type", "application/jwk-set+json")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(body)
	}
}

func (m *JWTManager) AccessTokenTTL() time.Duration {
	return m.cfg.AccessTokenExpire
}

func (m *JWTManager) KeyID() string {
	return m.kid
}

// RefreshGrant is one link in a refresh token family. Rotation keeps the
// family so reuse of an old link can revoke the whole chain.
type RefreshGrant struct {
	Secret    core.SecretToken
	FamilyID  string
	ExpiresAt time.Time
}

// IssueRefreshToken starts a new family when familyID is empty.
func (m *JWTManager) IssueRefreshToken(familyID string) (*RefreshGrant, error) {
	secret, err := core.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if familyID == "" {
		familyID = uuid.New().String()
	}
	return &RefreshGrant{
		Secret:    secret,
		FamilyID:  familyID,
		ExpiresAt: time.Now().Add(m.cfg.RefreshTokenExpire),
	}, nil
}
