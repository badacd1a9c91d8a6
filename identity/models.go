package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/heatloop/go-authstate"
)

// AuthProvider records how an account authenticates.
type AuthProvider = string

const (
	ProviderPassword AuthProvider = "password"
	ProviderGoogle   AuthProvider = "google"
)

// Profile is the stored application metadata for a subject, credential
// included.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Role          string     `bun:"role,notnull" json:"role,omitempty"`
	Avatar        string     `bun:"avatar" json:"avatar,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"password_hash,omitempty"`
	Provider      string     `bun:"provider,notnull" json:"provider,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Record converts the row into the wire-level profile record.
func (p *Profile) Record() *authstate.ProfileRecord {
	return &authstate.ProfileRecord{
		ID:     p.ID.String(),
		Name:   p.Name,
		Email:  p.Email,
		Role:   authstate.Role(p.Role),
		Avatar: p.Avatar,
	}
}

// Subscription is the stored billing/plan record for a subject.
type Subscription struct {
	bun.BaseModel `bun:"table:subscriptions,alias:sub"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ProfileID     uuid.UUID  `bun:"profile_id,notnull,type:uuid" json:"profile_id,omitempty"`
	Profile       *Profile   `bun:"rel:belongs-to,join:profile_id=id" json:"profile,omitempty"`
	Status        string     `bun:"status,notnull" json:"status,omitempty"`
	Plan          string     `bun:"plan,notnull" json:"plan,omitempty"`
	ExpiresAt     *time.Time `bun:"expires_at,nullzero" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Record converts the row into the wire-level subscription record.
func (s *Subscription) Record() *authstate.Subscription {
	return &authstate.Subscription{
		Status:    authstate.SubscriptionStatus(s.Status),
		Plan:      authstate.SubscriptionPlan(s.Plan),
		ExpiresAt: s.ExpiresAt,
	}
}

// TrialPeriod is how long a fresh registration's trial subscription lasts.
var TrialPeriod = 14 * 24 * time.Hour

// NewTrialSubscription builds the subscription attached to every new profile.
func NewTrialSubscription(profileID uuid.UUID, now time.Time) *Subscription {
	expires := now.Add(TrialPeriod)
	return &Subscription{
		ProfileID: profileID,
		Status:    string(authstate.SubscriptionTrial),
		Plan:      string(authstate.PlanFree),
		ExpiresAt: &expires,
	}
}
