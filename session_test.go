package authstate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heatloop/go-authstate"
)

func TestSessionExpired(t *testing.T) {
	now := time.Now()

	var nilSession *authstate.Session
	assert.False(t, nilSession.Expired(now))

	noExpiry := &authstate.Session{Token: "tok", Subject: "u1"}
	assert.False(t, noExpiry.Expired(now))

	past := now.Add(-time.Minute)
	expired := &authstate.Session{Token: "tok", Subject: "u1", ExpiresAt: &past}
	assert.True(t, expired.Expired(now))

	future := now.Add(time.Minute)
	live := &authstate.Session{Token: "tok", Subject: "u1", ExpiresAt: &future}
	assert.False(t, live.Expired(now))
}

func TestSessionString(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := authstate.Session{Subject: "u1", IssuedAt: &issued}

	out := s.String()
	assert.Contains(t, out, "subject=u1")
	assert.NotContains(t, out, "token", "the credential itself is never printed")
}
