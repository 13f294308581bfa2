// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain values with struct tags
// that tell encoding/json how to serialize them.
package model

import "time"

// User represents a registered account.
//
// Identity lives at an external provider, so the primary external identifier
// is the provider's subject id (IdentityID). We still generate our own internal
// string ID (xid) so our primary keys aren't tied to a third party's numbering
// scheme. The UNIQUE constraint on identity_id in the DB ensures one external
// identity maps to exactly one account.
//
// A row is created either by the provider's user.created webhook, or lazily on
// the first authenticated write if the webhook hasn't arrived yet.
type User struct {
	ID         string    `json:"id"         db:"id"`
	IdentityID string    `json:"identityId" db:"identity_id"` // external provider subject id
	Email      string    `json:"email"      db:"email"`
	FirstName  string    `json:"firstName"  db:"first_name"` // may be empty
	LastName   string    `json:"lastName"   db:"last_name"`  // may be empty
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt"  db:"updated_at"`
}
