package authstate

import (
	"net/http"
	"time"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// Decision is the outcome of a single route-guard evaluation.
type Decision int

const (
	// DecisionLoading means the initial session resolution is still pending;
	// no navigation decision is made.
	DecisionLoading Decision = iota
	// DecisionUnauthenticated means nobody is logged in; navigate to login.
	DecisionUnauthenticated
	// DecisionDenied means the profile's tier is below the required one;
	// soft-deny back to the authenticated landing location.
	DecisionDenied
	// DecisionAuthorized means the protected content may render.
	DecisionAuthorized
)

// Evaluate is the guard's pure decision function. It is a per-navigation
// evaluation, not a persistent machine: callers re-run it on every relevant
// render. An empty required role only checks authentication.
func Evaluate(snap Snapshot, required Role) Decision {
	if snap.Loading {
		return DecisionLoading
	}
	if snap.Profile == nil {
		return DecisionUnauthenticated
	}
	if required != "" && !snap.Profile.Role.IsAtLeast(required) {
		return DecisionDenied
	}
	return DecisionAuthorized
}

// GuardConfig holds the guard's routes and cookie settings.
type GuardConfig struct {
	// LoginRoute is where unauthenticated navigations are sent. Default /login.
	LoginRoute string
	// LandingRoute is the soft-deny target for insufficient tiers. Default /dashboard.
	LandingRoute string
	// RejectedRouteKey names the cookie remembering the originally requested
	// location for post-login return. Default rejected_route.
	RejectedRouteKey string
	// LoadingView, when set, is rendered while the store is loading;
	// otherwise a plain placeholder response is sent.
	LoadingView string
}

func (c GuardConfig) withDefaults() GuardConfig {
	if c.LoginRoute == "" {
		c.LoginRoute = "/login"
	}
	if c.LandingRoute == "" {
		c.LandingRoute = "/dashboard"
	}
	if c.RejectedRouteKey == "" {
		c.RejectedRouteKey = "rejected_route"
	}
	return c
}

// Guard gates navigation on the session store's state. It renders a loading
// placeholder while the initial resolution is pending, redirects
// unauthenticated requests to the login entry point (remembering the
// originally requested location), and soft-denies insufficient tiers by
// redirecting to the authenticated landing route instead of an error page.
type Guard struct {
	store  *Store
	cfg    GuardConfig
	Logger Logger
}

// NewGuard returns a Guard reading from the given store.
func NewGuard(store *Store, cfg GuardConfig) *Guard {
	return &Guard{
		store:  store,
		cfg:    cfg.withDefaults(),
		Logger: defLogger{},
	}
}

func (g *Guard) WithLogger(logger Logger) *Guard {
	if logger != nil {
		g.Logger = logger
	}
	return g
}

// Protected wraps a route so it only renders for an authenticated profile at
// or above the required tier. Pass an empty role to require authentication
// only.
func (g *Guard) Protected(required Role) router.MiddlewareFunc {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			snap := g.store.Current()

			switch Evaluate(snap, required) {
			case DecisionLoading:
				if g.cfg.LoadingView != "" {
					return c.Render(g.cfg.LoadingView, router.ViewContext{})
				}
				return c.Status(http.StatusServiceUnavailable).SendString("Loading...")

			case DecisionUnauthenticated:
				g.SetRedirect(c)
				statusCode := http.StatusSeeOther
				if c.Method() == string(router.GET) {
					statusCode = http.StatusFound
				}
				return c.Redirect(g.cfg.LoginRoute, statusCode)

			case DecisionDenied:
				g.Logger.Info(
					"tier %s below required %s, soft deny: %s",
					snap.Profile.Role,
					required,
					print.MaybePrettyJSON(snap.Profile),
				)
				return c.Redirect(g.cfg.LandingRoute, http.StatusSeeOther)

			default:
				return next(c)
			}
		}
	}
}

// SetRedirect remembers the originally requested location so the login flow
// can return to it.
func (g *Guard) SetRedirect(c router.Context) {
	c.Cookie(&router.Cookie{
		Name:     g.cfg.RejectedRouteKey,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(time.Minute * 5),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

// GetRedirect pops the remembered location, falling back to def. Post-login
// return is best effort; a missing cookie just yields the fallback.
func (g *Guard) GetRedirect(c router.Context, def string) string {
	r := c.Cookies(g.cfg.RejectedRouteKey)
	if r == "" {
		return def
	}
	g.cookieDel(c, g.cfg.RejectedRouteKey)
	return r
}

func (g *Guard) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
