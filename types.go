package authstate

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the package depends on. Callers can
// plug in any structured logger that satisfies it.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// EventKind identifies why the identity service emitted a session event.
type EventKind string

const (
	// EventInitial is the kind used for the cold-start session query result.
	EventInitial EventKind = "initial"
	// EventSignedIn is emitted after a successful password or federated login.
	EventSignedIn EventKind = "signed_in"
	// EventSignedOut is emitted when the remote session is invalidated.
	EventSignedOut EventKind = "signed_out"
	// EventTokenRefreshed is emitted when the session credential is rotated.
	EventTokenRefreshed EventKind = "token_refreshed"
)

// SessionEvent is a single notification from the identity service's
// session-change stream. A nil Session means "no session".
type SessionEvent struct {
	Kind    EventKind
	Session *Session
}

// SignUpMetadata carries profile attributes submitted at registration time.
// Name is mandatory application metadata; Phone is optional.
type SignUpMetadata struct {
	Name  string
	Phone string
}

// IdentityService is the remote identity provider contract consumed by the
// Orchestrator: session issuance, credential verification, and the profile
// and subscription record lookups. Implementations live elsewhere (see the
// identity package for the reference one); the orchestrator treats every call
// as a non-blocking remote request that may fail.
type IdentityService interface {
	// SubscribeToSessionChanges registers a callback invoked on every login,
	// logout, or token-refresh event. The returned function releases the
	// subscription.
	SubscribeToSessionChanges(fn func(SessionEvent)) (func(), error)

	// GetCurrentSession returns the session currently held by the service, or
	// nil when nobody is logged in.
	GetCurrentSession(ctx context.Context) (*Session, error)

	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, meta SignUpMetadata) error

	// SignInWithOAuth begins a redirect-based federated login and returns the
	// URL the user agent must navigate to. Control resumes through the
	// session-change stream after the redirect back.
	SignInWithOAuth(ctx context.Context, provider, redirectTarget string) (string, error)

	SignOut(ctx context.Context) error

	GetProfileRecord(ctx context.Context, subject string) (*ProfileRecord, error)
	GetSubscriptionRecord(ctx context.Context, subject string) (*Subscription, error)
}

// DefaultLogger returns the package's printf-backed fallback logger.
func DefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHSTATE "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHSTATE "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHSTATE "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHSTATE "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
