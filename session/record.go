package session

import (
	"time"

	"github.com/zllovesuki/unaique/customer"
)

// StorageKey is the key the dashboard keeps the customer under
const StorageKey = "unaique_customer"

// TTL is how long a stored record is trusted without asking the server again
const TTL = 24 * time.Hour

// UnknownClerkID is stored when the caller's Clerk id is not known
const UnknownClerkID = "unknown"

// Record is the customer as materialized into a browser or CLI session
type Record struct {
	RecordID         string    `json:"recordId"`
	BusinessID       string    `json:"businessId,omitempty"`
	ClerkID          string    `json:"clerkId"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Tier             string    `json:"tier"`
	FavoriteCategory string    `json:"favoriteCategory"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// FromCustomer shapes c into a Record stamped with now
func FromCustomer(c *customer.Customer, clerkID string, now time.Time) Record {
	if clerkID == "" {
		clerkID = UnknownClerkID
	}
	name := c.Name
	if name == "" {
		name = customer.UnknownName
	}
	return Record{
		RecordID:         c.RecordID,
		BusinessID:       c.BusinessID,
		ClerkID:          clerkID,
		Name:             name,
		Phone:            c.Phone,
		Email:            c.Email,
		Tier:             c.Tier,
		FavoriteCategory: c.FavoriteCategory,
		LastUpdated:      now.UTC(),
	}
}

// Valid reports whether r is younger than TTL at now
func (r Record) Valid(now time.Time) bool {
	return now.Sub(r.LastUpdated) < TTL
}
