// Package authstate implements the client-side session state machine for the
// heatloop dashboard: how authentication state is acquired from a remote
// identity service, cached in a single session store, and used to gate
// navigation.
//
// The three pieces mirror the runtime flow:
//
//   - Store holds the one (Session, UserProfile, Loading) tuple and fans
//     state changes out to subscribers.
//   - Orchestrator subscribes to the identity service's session-change
//     stream, resolves the full user profile for every session, and exposes
//     the imperative operations (Login, Register, LoginWithGoogle, Logout).
//   - Guard evaluates store snapshots per navigation and decides between
//     rendering, redirecting to login, or soft-denying to the landing page.
//
// Profile resolution fails closed: a session whose profile record cannot be
// fetched leaves the user unauthenticated. Subscription data is best effort
// and falls back to a trial/free default.
package authstate
