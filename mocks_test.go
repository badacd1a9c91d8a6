package authstate_test

import (
	"context"
	"sync"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/mock"

	"github.com/heatloop/go-authstate"
)

// fakeIdentity is a scripted authstate.IdentityService. Behavior is driven by
// the function fields; unset fields answer "nobody is logged in".
type fakeIdentity struct {
	mu         sync.Mutex
	subscriber func(authstate.SessionEvent)

	unsubscribed bool

	getCurrentSession func(ctx context.Context) (*authstate.Session, error)
	signIn            func(ctx context.Context, email, password string) (*authstate.Session, error)
	signUp            func(ctx context.Context, email, password string, meta authstate.SignUpMetadata) error
	signInOAuth       func(ctx context.Context, provider, redirectTarget string) (string, error)
	signOut           func(ctx context.Context) error
	getProfile        func(ctx context.Context, subject string) (*authstate.ProfileRecord, error)
	getSubscription   func(ctx context.Context, subject string) (*authstate.Subscription, error)
}

func (f *fakeIdentity) SubscribeToSessionChanges(fn func(authstate.SessionEvent)) (func(), error) {
	f.mu.Lock()
	f.subscriber = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.unsubscribed = true
		f.subscriber = nil
		f.mu.Unlock()
	}, nil
}

// emit delivers a session event to the registered subscriber, mimicking the
// remote service's change stream.
func (f *fakeIdentity) emit(ev authstate.SessionEvent) {
	f.mu.Lock()
	fn := f.subscriber
	f.mu.Unlock()

	if fn != nil {
		fn(ev)
	}
}

func (f *fakeIdentity) isUnsubscribed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed
}

func (f *fakeIdentity) GetCurrentSession(ctx context.Context) (*authstate.Session, error) {
	if f.getCurrentSession == nil {
		return nil, nil
	}
	return f.getCurrentSession(ctx)
}

func (f *fakeIdentity) SignInWithPassword(ctx context.Context, email, password string) (*authstate.Session, error) {
	if f.signIn == nil {
		return nil, authstate.ErrCredentialsRejected
	}
	return f.signIn(ctx, email, password)
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string, meta authstate.SignUpMetadata) error {
	if f.signUp == nil {
		return nil
	}
	return f.signUp(ctx, email, password, meta)
}

func (f *fakeIdentity) SignInWithOAuth(ctx context.Context, provider, redirectTarget string) (string, error) {
	if f.signInOAuth == nil {
		return "", authstate.ErrProviderNotConfigured
	}
	return f.signInOAuth(ctx, provider, redirectTarget)
}

func (f *fakeIdentity) SignOut(ctx context.Context) error {
	if f.signOut == nil {
		return nil
	}
	return f.signOut(ctx)
}

func (f *fakeIdentity) GetProfileRecord(ctx context.Context, subject string) (*authstate.ProfileRecord, error) {
	if f.getProfile == nil {
		return nil, authstate.ErrProfileNotFound
	}
	return f.getProfile(ctx, subject)
}

func (f *fakeIdentity) GetSubscriptionRecord(ctx context.Context, subject string) (*authstate.Subscription, error) {
	if f.getSubscription == nil {
		return nil, authstate.ErrSubscriptionNotFound
	}
	return f.getSubscription(ctx, subject)
}

// recordingNotifier captures every notification raised during a test.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []authstate.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notice authstate.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) all() []authstate.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]authstate.Notification, len(n.notices))
	copy(out, n.notices)
	return out
}

func (n *recordingNotifier) last() (authstate.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return authstate.Notification{}, false
	}
	return n.notices[len(n.notices)-1], true
}

// MockContext mocks router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}
