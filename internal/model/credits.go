package model

import "time"

// FreeCredits is the allowance granted to every new user on their first
// generation request.
const FreeCredits = 5

// Credits is the per-user generation allowance ledger. FreeCredits counts
// down towards zero (never below — the decrement is a conditional UPDATE in
// the repository); IsSubscribed short-circuits the counter entirely.
type Credits struct {
	UserID          string     `json:"userId"          db:"user_id"`
	FreeCredits     int        `json:"freeCredits"     db:"free_credits"`
	IsSubscribed    bool       `json:"isSubscribed"    db:"is_subscribed"`
	SubscriptionEnd *time.Time `json:"subscriptionEnd" db:"subscription_end"`
	CreatedAt       time.Time  `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt"       db:"updated_at"`
}
