package identity

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/heatloop/go-authstate"
)

// Config carries the knobs the service needs to mint sessions.
type Config struct {
	SigningKey []byte
	TokenTTL   time.Duration
	Issuer     string
	Audience   []string
}

// DefaultTokenTTL is used when Config.TokenTTL is zero.
const DefaultTokenTTL = time.Hour * 24

// stateTTL bounds how long a pending federated login handshake stays valid.
const stateTTL = time.Minute * 10

type pendingState struct {
	redirectTarget string
	expires        time.Time
}

// Service is the reference authstate.IdentityService backed by bun
// repositories and signed session tokens. One instance models one device:
// it holds at most one current session and broadcasts changes to it.
type Service struct {
	repo   RepositoryManager
	tokens *TokenService
	hub    *hub
	logger authstate.Logger
	google *GoogleProvider

	mu      sync.Mutex
	current *authstate.Session
	states  map[string]pendingState
}

// Option configures the service.
type Option func(*Service)

// WithLogger sets the logger used by the service.
func WithLogger(logger authstate.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGoogle enables Google federated login.
func WithGoogle(cfg GoogleConfig) Option {
	return func(s *Service) {
		s.google = NewGoogleProvider(cfg)
	}
}

// New creates a Service on top of the given repository manager.
func New(repo RepositoryManager, cfg Config, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("identity service requires a repository manager", errors.CategoryBadInput)
	}

	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("identity service requires a signing key", errors.CategoryBadInput).
			WithTextCode("MISSING_SIGNING_KEY")
	}

	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}

	svc := &Service{
		repo:   repo,
		hub:    newHub(),
		logger: authstate.DefaultLogger(),
		states: map[string]pendingState{},
	}

	for _, opt := range opts {
		opt(svc)
	}

	svc.tokens = NewTokenService(cfg.SigningKey, cfg.TokenTTL, cfg.Issuer, cfg.Audience, svc.logger)

	return svc, nil
}

// SubscribeToSessionChanges registers a session-change callback.
func (s *Service) SubscribeToSessionChanges(fn func(authstate.SessionEvent)) (func(), error) {
	if fn == nil {
		return nil, errors.New("session change callback is required", errors.CategoryBadInput)
	}
	return s.hub.subscribe(fn), nil
}

// GetCurrentSession returns the session this instance holds. Expired sessions
// are dropped rather than returned.
func (s *Service) GetCurrentSession(ctx context.Context) (*authstate.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, nil
	}

	if s.current.Expired(time.Now()) {
		s.logger.Debug("current session for %s expired, clearing", s.current.Subject)
		s.current = nil
		return nil, nil
	}

	return s.current, nil
}

// SignInWithPassword verifies credentials and establishes the session.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*authstate.Session, error) {
	profile, err := s.repo.Profiles().GetByIdentifier(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, authstate.ErrCredentialsRejected
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "profile lookup failed")
	}

	if err := ComparePasswordAndHash(password, profile.PasswordHash); err != nil {
		return nil, err
	}

	session, err := s.tokens.Issue(profile)
	if err != nil {
		return nil, err
	}

	s.setCurrent(session, authstate.EventSignedIn)

	return session, nil
}

// SignUp registers a new account. It does not establish a session; the caller
// signs in afterwards.
func (s *Service) SignUp(ctx context.Context, email, password string, meta authstate.SignUpMetadata) error {
	return s.register(ctx, SignUpPayload{
		Name:     meta.Name,
		Email:    email,
		Password: password,
		Phone:    meta.Phone,
	})
}

// SignInWithOAuth starts a federated login and returns the provider URL the
// user agent must be sent to. The handshake resumes in CompleteOAuth.
func (s *Service) SignInWithOAuth(ctx context.Context, provider, redirectTarget string) (string, error) {
	if s.google == nil || provider != s.google.Name() {
		return "", authstate.ErrProviderNotConfigured.WithMetadata(map[string]any{
			"provider": provider,
		})
	}

	state := uuid.NewString()

	s.mu.Lock()
	s.pruneStatesLocked(time.Now())
	s.states[state] = pendingState{
		redirectTarget: redirectTarget,
		expires:        time.Now().Add(stateTTL),
	}
	s.mu.Unlock()

	return s.google.AuthCodeURL(state), nil
}

// CompleteOAuth finishes a federated login: it checks the state returned by
// the provider, verifies the ID token, creates the profile on first login,
// and establishes the session. It returns the redirect target captured when
// the handshake began.
func (s *Service) CompleteOAuth(ctx context.Context, state, rawIDToken string) (string, error) {
	if s.google == nil {
		return "", authstate.ErrProviderNotConfigured
	}

	s.mu.Lock()
	pending, ok := s.states[state]
	delete(s.states, state)
	s.mu.Unlock()

	if !ok || time.Now().After(pending.expires) {
		return "", errors.New("unknown or expired login state", errors.CategoryAuth).
			WithTextCode("FEDERATED_STATE_INVALID")
	}

	ident, err := s.google.VerifyIDToken(ctx, rawIDToken)
	if err != nil {
		return "", oauthCallbackError(s.google.Name(), err)
	}

	if !ident.EmailVerified {
		return "", errors.New("provider account email is not verified", errors.CategoryAuth).
			WithTextCode("FEDERATED_EMAIL_UNVERIFIED")
	}

	profile, err := s.findOrCreateFederated(ctx, ident)
	if err != nil {
		return "", oauthCallbackError(s.google.Name(), err)
	}

	session, err := s.tokens.Issue(profile)
	if err != nil {
		return "", err
	}

	s.setCurrent(session, authstate.EventSignedIn)

	return pending.redirectTarget, nil
}

// SignOut invalidates the current session.
func (s *Service) SignOut(ctx context.Context) error {
	s.setCurrent(nil, authstate.EventSignedOut)
	return nil
}

// Refresh re-issues the current session token, keeping the subject signed in
// past the original expiry.
func (s *Service) Refresh(ctx context.Context) (*authstate.Session, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		return nil, authstate.ErrNoSession
	}

	profile, err := s.lookupProfile(ctx, current.Subject)
	if err != nil {
		return nil, err
	}

	session, err := s.tokens.Issue(profile)
	if err != nil {
		return nil, err
	}

	s.setCurrent(session, authstate.EventTokenRefreshed)

	return session, nil
}

// GetProfileRecord returns the profile row for the given subject.
func (s *Service) GetProfileRecord(ctx context.Context, subject string) (*authstate.ProfileRecord, error) {
	profile, err := s.lookupProfile(ctx, subject)
	if err != nil {
		return nil, err
	}
	return profile.Record(), nil
}

// GetSubscriptionRecord returns the subscription row for the given subject.
func (s *Service) GetSubscriptionRecord(ctx context.Context, subject string) (*authstate.Subscription, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "subject is not a valid identifier")
	}

	sub, err := s.repo.Subscriptions().GetByProfile(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, authstate.ErrSubscriptionNotFound.WithMetadata(map[string]any{
				"subject": subject,
			})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "subscription lookup failed")
	}

	return sub.Record(), nil
}

func (s *Service) lookupProfile(ctx context.Context, subject string) (*Profile, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "subject is not a valid identifier")
	}

	profile, err := s.repo.Profiles().GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, authstate.ErrProfileNotFound.WithMetadata(map[string]any{
				"subject": subject,
			})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "profile lookup failed")
	}

	return profile, nil
}

// findOrCreateFederated resolves the local profile for a verified federated
// identity, provisioning one with a trial subscription on first login.
func (s *Service) findOrCreateFederated(ctx context.Context, ident *FederatedIdentity) (*Profile, error) {
	profile, err := s.repo.Profiles().GetByIdentifier(ctx, ident.Email)
	if err == nil {
		return profile, nil
	}
	if !repository.IsRecordNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "profile lookup failed")
	}

	name := ident.Name
	if name == "" {
		name = ident.Email
	}

	created := &Profile{
		Name:         name,
		Email:        ident.Email,
		Avatar:       ident.Picture,
		Role:         string(authstate.RoleUser),
		PasswordHash: RandomPasswordHash(),
		Provider:     ProviderGoogle,
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if created, err = s.repo.Profiles().CreateTx(ctx, tx, created); err != nil {
			return errors.Wrap(err, errors.CategoryConflict, "could not create federated profile")
		}

		sub := NewTrialSubscription(created.ID, time.Now())
		if _, err = s.repo.Subscriptions().CreateTx(ctx, tx, sub); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "could not create trial subscription")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Service) setCurrent(session *authstate.Session, kind authstate.EventKind) {
	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.hub.emit(authstate.SessionEvent{Kind: kind, Session: session})
}

func (s *Service) pruneStatesLocked(now time.Time) {
	for state, pending := range s.states {
		if now.After(pending.expires) {
			delete(s.states, state)
		}
	}
}
