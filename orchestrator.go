package authstate

import (
	"context"
	"sync"

	"github.com/goliatone/go-errors"
)

// Orchestrator bridges the identity service's event-driven session
// notifications to the Store and exposes the imperative auth operations.
//
// Session resolution is event driven: every session event, from the
// subscription or from the cold-start query, is funneled through one inbound
// channel consumed by a single goroutine. For each session the full profile
// is resolved (profile record mandatory, subscription best effort) before the
// result is applied to the store, so Loading only clears after a complete
// resolution attempt. In-flight resolutions are discarded once the
// orchestrator is stopped.
type Orchestrator struct {
	svc      IdentityService
	store    *Store
	logger   Logger
	notifier Notifier

	oauthRedirect string

	mu          sync.Mutex
	cancel      context.CancelFunc
	unsubscribe func()
	done        chan struct{}
}

// NewOrchestrator returns an Orchestrator owning a fresh Store.
func NewOrchestrator(svc IdentityService) *Orchestrator {
	return &Orchestrator{
		svc:           svc,
		store:         NewStore(),
		logger:        defLogger{},
		notifier:      noopNotifier{},
		oauthRedirect: "/dashboard",
	}
}

func (o *Orchestrator) WithLogger(logger Logger) *Orchestrator {
	if logger != nil {
		o.logger = logger
	}
	return o
}

// WithNotifier configures where user-visible failure/success notices go.
func (o *Orchestrator) WithNotifier(n Notifier) *Orchestrator {
	o.notifier = normalizeNotifier(n)
	return o
}

// WithOAuthRedirect overrides the post-login target for federated logins.
func (o *Orchestrator) WithOAuthRedirect(target string) *Orchestrator {
	if target != "" {
		o.oauthRedirect = target
	}
	return o
}

// Store exposes the session store for readers (guard, presentation layer).
func (o *Orchestrator) Store() *Store {
	return o.store
}

// Start subscribes to the session-change stream and, in parallel, performs
// one explicit current-session query to cover the case where the stream's
// first notification is delayed or missed. It returns once the subscription
// is established; resolution happens asynchronously.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		return errors.New("orchestrator already started", errors.CategoryOperation).
			WithTextCode("ALREADY_STARTED")
	}

	runCtx, cancel := context.WithCancel(ctx)
	events := make(chan SessionEvent, 8)

	unsubscribe, err := o.svc.SubscribeToSessionChanges(func(ev SessionEvent) {
		select {
		case events <- ev:
		case <-runCtx.Done():
		}
	})
	if err != nil {
		cancel()
		return errors.Wrap(err, errors.CategoryInternal, "failed to subscribe to session changes")
	}

	o.cancel = cancel
	o.unsubscribe = unsubscribe
	o.done = make(chan struct{})

	go o.run(runCtx, events, o.done)

	go func() {
		session, err := o.svc.GetCurrentSession(runCtx)
		if err != nil {
			o.logger.Warn("initial session query failed: %v", err)
			session = nil
		}
		select {
		case events <- SessionEvent{Kind: EventInitial, Session: session}:
		case <-runCtx.Done():
		}
	}()

	return nil
}

// Stop tears the orchestrator down: the event subscription is released and
// any still-pending resolution is suppressed from mutating the store.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	cancel := o.cancel
	unsubscribe := o.unsubscribe
	done := o.done
	o.cancel = nil
	o.unsubscribe = nil
	o.done = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	if done != nil {
		<-done
	}
}

func (o *Orchestrator) run(ctx context.Context, events <-chan SessionEvent, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			o.resolve(ctx, ev)
		}
	}
}

// resolve turns a session event into a complete store state. Profile data is
// mandatory: a session whose profile record is missing or erroring leaves the
// user unauthenticated. Subscription data is best effort and falls back to
// trial/free defaults.
func (o *Orchestrator) resolve(ctx context.Context, ev SessionEvent) {
	if ev.Session == nil {
		o.logger.Debug("session event %s: no session", ev.Kind)
		o.applyGuarded(ctx, nil, nil)
		return
	}

	rec, err := o.svc.GetProfileRecord(ctx, ev.Session.Subject)
	if err != nil || rec == nil {
		if ctx.Err() != nil {
			return
		}
		o.logger.Error("profile resolution failed for subject %s: %v", ev.Session.Subject, err)
		o.notifier.Notify(ctx, Notification{
			Level:   NoticeError,
			Title:   "Profile unavailable",
			Message: "We could not load your profile. Please sign in again.",
		})
		o.applyGuarded(ctx, nil, nil)
		return
	}

	subscription := DefaultSubscription()
	sub, err := o.svc.GetSubscriptionRecord(ctx, ev.Session.Subject)
	if err != nil || sub == nil {
		// Non-fatal: logged, never surfaced to the user.
		o.logger.Warn("subscription lookup failed for subject %s, using trial defaults: %v", ev.Session.Subject, err)
	} else {
		subscription = *sub
	}

	o.applyGuarded(ctx, ev.Session, composeProfile(rec, subscription))
}

// applyGuarded writes to the store unless the orchestrator has been torn
// down, in which case the resolution result is silently discarded.
func (o *Orchestrator) applyGuarded(ctx context.Context, session *Session, profile *UserProfile) {
	if ctx.Err() != nil {
		return
	}
	o.store.apply(session, profile)
}

// Login submits credentials to the identity service. On acceptance the store
// update arrives asynchronously through the event subscription, never
// synchronously here. On rejection a user-visible notice is raised and the
// store is left unauthenticated.
func (o *Orchestrator) Login(ctx context.Context, email, password string) bool {
	if email == "" || password == "" {
		o.notifier.Notify(ctx, Notification{
			Level:   NoticeError,
			Title:   "Login failed",
			Message: "Email and password are required",
		})
		return false
	}

	if _, err := o.svc.SignInWithPassword(ctx, email, password); err != nil {
		o.logger.Error("login rejected for %s: %v", email, err)
		o.notifier.Notify(ctx, Notification{
			Level:   NoticeError,
			Title:   "Login failed",
			Message: failureMessage(err, "Email or password incorrect"),
		})
		return false
	}

	o.notifier.Notify(ctx, Notification{
		Level:   NoticeInfo,
		Title:   "Login successful",
		Message: "Welcome back!",
	})
	return true
}

// Register submits a new-account request carrying name as profile metadata.
// It does not log the user in; whether registration auto-authenticates is
// remote service policy, observed through the event stream.
func (o *Orchestrator) Register(ctx context.Context, name, email, password string) bool {
	if name == "" || email == "" || password == "" {
		o.notifier.Notify(ctx, Notification{
			Level:   NoticeError,
			Title:   "Registration failed",
			Message: "Name, email and password are required",
		})
		return false
	}

	if err := o.svc.SignUp(ctx, email, password, SignUpMetadata{Name: name}); err != nil {
		o.logger.Error("registration rejected for %s: %v", email, err)
		o.notifier.Notify(ctx, Notification{
			Level:   NoticeError,
			Title:   "Registration failed",
			Message: failureMessage(err, "We could not create your account"),
		})
		return false
	}

	o.notifier.Notify(ctx, Notification{
		Level:   NoticeInfo,
		Title:   "Registration complete",
		Message: "Your account has been created",
	})
	return true
}

// LoginWithGoogle initiates a redirect-based federated login and returns the
// URL the user agent must navigate to, or "" when the flow could not begin
// (a notice is raised). Control resumes via the session-change subscription
// after the redirect back.
func (o *Orchestrator) LoginWithGoogle(ctx context.Context) string {
	redirect, err := o.svc.SignInWithOAuth(ctx, "google", o.oauthRedirect)
	if err != nil {
		o.logger.Error("google login failed to start: %v", err)
		o.notifier.Notify(ctx, Notification{
			Level:   NoticeError,
			Title:   "Google login failed",
			Message: failureMessage(err, "We could not start the Google login"),
		})
		return ""
	}
	return redirect
}

// Logout requests remote session invalidation and then unconditionally
// clears the store, so the UI never remains in an authenticated-looking state
// after a user-initiated logout, even when the remote call failed.
func (o *Orchestrator) Logout(ctx context.Context) {
	if err := o.svc.SignOut(ctx); err != nil {
		o.logger.Warn("remote sign-out failed, clearing local state anyway: %v", err)
	}
	o.store.apply(nil, nil)
}

// failureMessage prefers the message of a categorized error and falls back to
// the given generic text.
func failureMessage(err error, fallback string) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return fallback
}
