package authstate

import (
	"fmt"
	"time"
)

// Session is the opaque credential bundle issued by the identity service. It
// is the authority for "is anyone logged in": the orchestrator owns it,
// replaces it wholesale on every identity-service event, and clears it on
// logout.
type Session struct {
	Token     string         `json:"token,omitempty"`
	Subject   string         `json:"subject,omitempty"`
	IssuedAt  *time.Time     `json:"issued_at,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Expired reports whether the session's expiry has passed. Sessions without
// expiry metadata never expire locally.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return false
	}
	return now.After(*s.ExpiresAt)
}

func (s Session) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf(
		"subject=%s iat=%s data=%v",
		s.Subject,
		issuedAt,
		s.Data,
	)
}

// sameSession reports whether two sessions represent the same credential.
// Used to detect duplicate event deliveries.
func sameSession(a, b *Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Token == b.Token && a.Subject == b.Subject
}
