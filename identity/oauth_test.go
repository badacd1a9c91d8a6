package identity_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatloop/go-authstate/identity"
)

func TestGoogleProviderDefaults(t *testing.T) {
	p := identity.NewGoogleProvider(identity.GoogleConfig{
		ClientID:    "client-123",
		CallbackURL: "https://app.example.com/callback",
	})

	assert.Equal(t, "google", p.Name())

	parsed, err := url.Parse(p.AuthCodeURL("state-abc"))
	require.NoError(t, err)

	assert.Equal(t, "https", parsed.Scheme)
	assert.Equal(t, "accounts.google.com", parsed.Host)
	assert.Equal(t, "/o/oauth2/v2/auth", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-abc", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
}

func TestGoogleProviderCustomScopes(t *testing.T) {
	p := identity.NewGoogleProvider(identity.GoogleConfig{
		ClientID:    "client-123",
		CallbackURL: "https://app.example.com/callback",
		Scopes:      []string{"openid", "email"},
	})

	parsed, err := url.Parse(p.AuthCodeURL("s"))
	require.NoError(t, err)
	assert.Equal(t, "openid email", parsed.Query().Get("scope"))
}
