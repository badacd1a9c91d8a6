package identity

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

const (
	defaultAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	defaultIssuer  = "https://accounts.google.com"
)

// GoogleConfig holds Google OAuth configuration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	AuthURL string
	JWKSURL string
	Issuer  string
}

// DefaultScopes returns the default Google scopes.
func DefaultScopes() []string {
	return []string{"openid", "email", "profile"}
}

// FederatedIdentity is what a verified provider ID token asserts about the
// subject.
type FederatedIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleProvider builds authorization URLs and verifies Google ID tokens
// against the provider's published JWK set.
type GoogleProvider struct {
	config GoogleConfig

	jwksOnce sync.Once
	jwks     *keyfunc.JWKS
	jwksErr  error
}

// NewGoogleProvider creates a new Google provider.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = defaultJWKSURL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}

	return &GoogleProvider{config: cfg}
}

// Name identifies the provider in SignInWithOAuth calls.
func (p *GoogleProvider) Name() string {
	return "google"
}

// AuthCodeURL builds the URL the user agent is redirected to.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.CallbackURL},
		"response_type": {"code"},
		"scope":         {strings.Join(p.config.Scopes, " ")},
		"state":         {state},
		"access_type":   {"offline"},
	}

	return p.config.AuthURL + "?" + params.Encode()
}

// VerifyIDToken validates a raw ID token signature, audience, and issuer,
// returning the asserted identity.
func (p *GoogleProvider) VerifyIDToken(ctx context.Context, raw string) (*FederatedIdentity, error) {
	p.jwksOnce.Do(func() {
		p.jwks, p.jwksErr = keyfunc.Get(p.config.JWKSURL, keyfunc.Options{
			Ctx: context.Background(),
		})
	})
	if p.jwksErr != nil {
		return nil, errors.Wrap(p.jwksErr, errors.CategoryInternal, "failed to fetch provider JWK set")
	}

	token, err := jwt.ParseWithClaims(raw, &idTokenClaims{}, p.jwks.Keyfunc,
		jwt.WithAudience(p.config.ClientID),
		jwt.WithIssuer(p.config.Issuer),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryAuth, "invalid provider ID token").
			WithTextCode("FEDERATED_TOKEN_INVALID")
	}

	claims, ok := token.Claims.(*idTokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("unable to decode provider ID token claims", errors.CategoryAuth).
			WithTextCode("FEDERATED_TOKEN_INVALID")
	}

	if claims.Email == "" {
		return nil, errors.New("provider ID token is missing an email claim", errors.CategoryAuth).
			WithTextCode("FEDERATED_TOKEN_INVALID")
	}

	return &FederatedIdentity{
		Subject:       claims.RegisteredClaims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

func oauthCallbackError(provider string, err error) error {
	return errors.Wrap(err, errors.CategoryAuth, fmt.Sprintf("%s login could not be completed", provider)).
		WithTextCode("FEDERATED_LOGIN_FAILED")
}
