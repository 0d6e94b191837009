package webhook

import (
	"encoding/json"
	"errors"
	"strings"
)

// define event types
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

var (
	// ErrNoEmail means the user has no email address at all
	ErrNoEmail = errors.New("user has no email address")
	// ErrPrimaryEmailNotFound means no non-empty address matches primary_email_address_id
	ErrPrimaryEmailNotFound = errors.New("primary email not found")
)

// Event is a Clerk webhook delivery
type Event struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

// User is the data of user.created and user.updated
type User struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PhoneNumbers          []PhoneNumber  `json:"phone_numbers"`
}

// EmailAddress is one of a user's addresses
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// PhoneNumber is one of a user's phone numbers
type PhoneNumber struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
}

// DeletedUser is the data of user.deleted
type DeletedUser struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// PrimaryEmail returns the address whose id is the primary one
func (u User) PrimaryEmail() (string, error) {
	if len(u.EmailAddresses) == 0 {
		return "", ErrNoEmail
	}
	for _, e := range u.EmailAddresses {
		if e.ID != u.PrimaryEmailAddressID {
			continue
		}
		if strings.TrimSpace(e.EmailAddress) == "" {
			return "", ErrPrimaryEmailNotFound
		}
		return e.EmailAddress, nil
	}
	return "", ErrPrimaryEmailNotFound
}

// FirstPhone returns the first listed phone number, or ""
func (u User) FirstPhone() string {
	if len(u.PhoneNumbers) == 0 {
		return ""
	}
	return u.PhoneNumbers[0].PhoneNumber
}

// EncodeUserEvent renders u as a Clerk delivery of eventType
func EncodeUserEvent(eventType string, u User) ([]byte, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{
		Type:   eventType,
		Object: "event",
		Data:   data,
	})
}
