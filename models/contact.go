// Package models defines the domain types shared across the sync pipeline.
package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Contact is the local CRM record. ExternalID, when set, is the correlation
// key linking this record to its remote profile: a non-negative integer
// encoded as a string.
type Contact struct {
	ID                uuid.UUID  `json:"id"`
	ExternalID        *string    `json:"external_id,omitempty"`
	FirstName         string     `json:"first_name,omitempty"`
	LastName          string     `json:"last_name,omitempty"`
	Email             string     `json:"email,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Birthdate         *time.Time `json:"birthdate,omitempty"`
	MailingStreet     string     `json:"mailing_street,omitempty"`
	MailingCity       string     `json:"mailing_city,omitempty"`
	MailingState      string     `json:"mailing_state,omitempty"`
	MailingCountry    string     `json:"mailing_country,omitempty"`
	MailingPostalCode string     `json:"mailing_postal_code,omitempty"`
	LastSyncedAt      *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ExternalIDValue parses the correlation key as an integer. Returns
// (0, false) when the key is unset or does not satisfy the key invariant.
func (c *Contact) ExternalIDValue() (int, bool) {
	if c.ExternalID == nil {
		return 0, false
	}
	n, err := strconv.Atoi(*c.ExternalID)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// SetExternalID assigns the correlation key, validating the key invariant.
func (c *Contact) SetExternalID(key string) error {
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid external id %q: must be a non-negative integer string", key)
	}
	c.ExternalID = &key
	return nil
}

// RemoteUser is the wire representation of a profile in the remote system.
// It exists only for the duration of a single callout.
type RemoteUser struct {
	ID        int            `json:"id"`
	FirstName string         `json:"firstName,omitempty"`
	LastName  string         `json:"lastName,omitempty"`
	Email     string         `json:"email,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	BirthDate string         `json:"birthDate,omitempty"`
	Address   *RemoteAddress `json:"address,omitempty"`
}

// RemoteAddress is the nested address object of a RemoteUser. The remote
// system names the street line "address".
type RemoteAddress struct {
	Street     string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}
