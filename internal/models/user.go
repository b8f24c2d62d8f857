package models

import "time"

// UserAccount is a registered extension user with a metered trial quota.
// Quota decrements must go through UserStore.DecrementTrial so two concurrent
// requests cannot both consume the last trial unit.
type UserAccount struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"index"`
	APIKey         string    `json:"api_key,omitempty" gorm:"uniqueIndex;not null"`
	IsPaid         bool      `json:"is_paid"`
	TrialRemaining int       `json:"trial_remaining"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CallerKind discriminates the CallerIdentity variant.
type CallerKind string

const (
	CallerAnonymous  CallerKind = "anonymous"
	CallerRegistered CallerKind = "registered"
)

// CallerIdentity is the resolved identity of an inbound request: either a
// registered account (credential headers present) or an anonymous caller
// identified by origin address.
type CallerIdentity struct {
	Kind    CallerKind
	Address string       // set for anonymous callers
	UserID  string       // set for registered callers
	APIKey  string       // set for registered callers
	Account *UserAccount // populated by the quota gate after lookup
}
