package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/heatloop/go-authstate"
)

// sessionClaims is what the service signs into a session token.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role  string `json:"role,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// TokenService mints and validates the signed tokens that back sessions.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     authstate.Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, ttl time.Duration, issuer string, audience []string, logger authstate.Logger) *TokenService {
	if logger == nil {
		logger = authstate.DefaultLogger()
	}
	return &TokenService{
		signingKey: signingKey,
		ttl:        ttl,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
	}
}

// Issue mints a session for the given profile.
func (ts *TokenService) Issue(p *Profile) (*authstate.Session, error) {
	now := time.Now()
	expires := now.Add(ts.ttl)

	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   p.ID.String(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        newTokenID(),
		},
		Role:  p.Role,
		Name:  p.Name,
		Email: p.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	return sessionFromClaims(signed, claims), nil
}

// Parse validates a raw token and rebuilds the session it represents.
func (ts *TokenService) Parse(raw string) (*authstate.Session, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token parse encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, authstate.ErrSessionExpired
		}
		return nil, errors.Wrap(err, errors.CategoryAuth, "malformed session token").
			WithTextCode("TOKEN_MALFORMED")
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token parse could not decode claims")
		return nil, errors.New("unable to decode session claims", errors.CategoryAuth).
			WithTextCode("TOKEN_MALFORMED")
	}

	return sessionFromClaims(raw, claims), nil
}

func newTokenID() string {
	return uuid.NewString()
}

func sessionFromClaims(raw string, claims *sessionClaims) *authstate.Session {
	session := &authstate.Session{
		Token:   raw,
		Subject: claims.RegisteredClaims.Subject,
		Data: map[string]any{
			"role":  claims.Role,
			"name":  claims.Name,
			"email": claims.Email,
		},
	}

	if claims.RegisteredClaims.IssuedAt != nil {
		issuedAt := claims.RegisteredClaims.IssuedAt.Time
		session.IssuedAt = &issuedAt
	}
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt := claims.RegisteredClaims.ExpiresAt.Time
		session.ExpiresAt = &expiresAt
	}

	return session
}
