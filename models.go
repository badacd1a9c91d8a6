package authstate

import "time"

// SubscriptionStatus is the billing state of an account
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
	SubscriptionTrial    SubscriptionStatus = "trial"
)

// SubscriptionPlan is the purchased plan tier
type SubscriptionPlan string

const (
	PlanFree     SubscriptionPlan = "free"
	PlanMonthly  SubscriptionPlan = "monthly"
	PlanYearly   SubscriptionPlan = "yearly"
	PlanLifetime SubscriptionPlan = "lifetime"
)

// Subscription is the billing/plan record attached to a subject
type Subscription struct {
	Status    SubscriptionStatus `json:"status"`
	Plan      SubscriptionPlan   `json:"plan"`
	ExpiresAt *time.Time         `json:"expires_at"`
}

// DefaultSubscription is the best-effort fallback applied when the
// subscription record is missing or the lookup fails. Subscription data is
// never allowed to fail a profile resolution.
func DefaultSubscription() Subscription {
	return Subscription{
		Status:    SubscriptionTrial,
		Plan:      PlanFree,
		ExpiresAt: nil,
	}
}

// ProfileRecord is the remote-stored application metadata for a subject, as
// returned by the identity service. It has no subscription attached.
type ProfileRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// UserProfile is the application-level view of the authenticated subject:
// the profile record composed with its subscription. It exists if and only if
// a valid session exists and the profile lookup succeeded.
type UserProfile struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Role         Role         `json:"role"`
	Subscription Subscription `json:"subscription"`
	Avatar       string       `json:"avatar,omitempty"`
}

// composeProfile builds the application-level profile from its remote parts.
func composeProfile(rec *ProfileRecord, sub Subscription) *UserProfile {
	return &UserProfile{
		ID:           rec.ID,
		Name:         rec.Name,
		Email:        rec.Email,
		Role:         rec.Role,
		Subscription: sub,
		Avatar:       rec.Avatar,
	}
}
