// Package model defines domain entities for the application.
package model

import "time"

// SubscriptionTier is the user's plan level.
type SubscriptionTier string

// Supported subscription tiers.
const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
	TierPro     SubscriptionTier = "pro"
)

// ValidSubscriptionTier reports whether t is a known tier.
func ValidSubscriptionTier(t SubscriptionTier) bool {
	switch t {
	case TierFree, TierPremium, TierPro:
		return true
	}
	return false
}

// User represents an account holder with monthly usage counters.
// PasswordHash is excluded from JSON so it can never leak through a response.
type User struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	PasswordHash     string           `json:"-"`
	IsVerified       bool             `json:"isVerified"`
	SubscriptionTier SubscriptionTier `json:"subscriptionType"`
	PuzzlesGenerated int              `json:"puzzlesGenerated"`
	BooksCreated     int              `json:"booksCreated"`
	UsageLastReset   time.Time        `json:"usageLastReset"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// ResetMonthlyUsage zeroes the usage counters when the calendar month has
// rolled over since UsageLastReset. Returns true if the user was mutated and
// needs to be persisted. Evaluated lazily at login; nothing else calls it.
func (u *User) ResetMonthlyUsage(now time.Time) bool {
	if now.Month() == u.UsageLastReset.Month() && now.Year() == u.UsageLastReset.Year() {
		return false
	}

	u.PuzzlesGenerated = 0
	u.BooksCreated = 0
	u.UsageLastReset = now
	return true
}
