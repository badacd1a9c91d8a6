package authstate

import (
	"github.com/goliatone/go-errors"
)

// ErrCredentialsRejected is returned when the remote service refuses a
// login's credentials.
var ErrCredentialsRejected = errors.New("credentials rejected", errors.CategoryAuth).
	WithTextCode("CREDENTIALS_REJECTED").
	WithCode(errors.CodeUnauthorized)

// ErrRegistrationRejected is returned when the remote service refuses a
// new-account request.
var ErrRegistrationRejected = errors.New("registration rejected", errors.CategoryConflict).
	WithTextCode("REGISTRATION_REJECTED").
	WithCode(errors.CodeConflict)

// ErrProfileNotFound is returned when no profile record exists for a subject.
// A valid session with a missing profile is treated as unauthenticated.
var ErrProfileNotFound = errors.New("profile record not found", errors.CategoryNotFound).
	WithTextCode("PROFILE_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrSubscriptionNotFound is returned when no subscription record exists for
// a subject. Callers substitute trial/free defaults instead of failing.
var ErrSubscriptionNotFound = errors.New("subscription record not found", errors.CategoryNotFound).
	WithTextCode("SUBSCRIPTION_NOT_FOUND").
	WithCode(errors.CodeNotFound)

// ErrSessionExpired is returned when a session credential is past its expiry.
var ErrSessionExpired = errors.New("session expired", errors.CategoryAuth).
	WithTextCode("SESSION_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrNoSession is returned by operations that need an active session when
// nobody is logged in.
var ErrNoSession = errors.New("no active session", errors.CategoryAuth).
	WithTextCode("NO_SESSION").
	WithCode(errors.CodeUnauthorized)

// ErrProviderNotConfigured is returned when a federated login is requested
// for a provider the service was not configured with.
var ErrProviderNotConfigured = errors.New("oauth provider not configured", errors.CategoryOperation).
	WithTextCode("PROVIDER_NOT_CONFIGURED").
	WithCode(errors.CodeBadRequest)
