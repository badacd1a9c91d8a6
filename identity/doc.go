// Package identity is the reference implementation of the remote identity
// service consumed by authstate: session issuance backed by signed tokens,
// credential verification over a bun-managed profile store, subscription
// records, Google federated login, and a session-change event hub.
//
// One Service instance models one device: it holds at most one current
// session and broadcasts every sign-in, sign-out, and refresh to its
// subscribers. Production deployments talk to a hosted provider instead; this
// package exists so the state machine has a complete, testable backend.
package identity
