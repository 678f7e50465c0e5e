// Package mapper converts between the local contact representation and the
// remote user-profile JSON representation, in both directions.
package mapper

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkellner/contactsync/errors"
	"github.com/mkellner/contactsync/models"
)

// birthDateLayout is the calendar date format the remote system emits.
const birthDateLayout = "2006-01-02"

// unknownValue substitutes for blank fields in the normalized payload.
const unknownValue = "Unknown"

// FromRemoteJSON parses a loosely-typed JSON document into a Contact.
//
// A missing or null birthDate leaves the field unset. The address sub-object
// is optional; when absent all address fields stay unset. Returns a
// MALFORMED_DOCUMENT error if doc is not a key/value mapping or birthDate is
// present but not a parseable date.
func FromRemoteJSON(doc interface{}) (*models.Contact, error) {
	fields, ok := doc.(map[string]interface{})
	if !ok {
		return nil, errors.NewMalformedError(errors.OpMap,
			fmt.Errorf("expected a JSON object, got %T", doc))
	}

	contact := &models.Contact{
		FirstName: stringField(fields, "firstName"),
		LastName:  stringField(fields, "lastName"),
		Email:     stringField(fields, "email"),
		Phone:     stringField(fields, "phone"),
	}

	if raw, present := fields["birthDate"]; present && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.NewMalformedError(errors.OpMap,
				fmt.Errorf("birthDate is not a string: %T", raw))
		}
		parsed, err := time.Parse(birthDateLayout, s)
		if err != nil {
			return nil, errors.NewMalformedError(errors.OpMap,
				fmt.Errorf("unparseable birthDate %q: %w", s, err))
		}
		contact.Birthdate = &parsed
	}

	if raw, present := fields["address"]; present {
		address, ok := raw.(map[string]interface{})
		if ok {
			// The remote system names the street line "address".
			contact.MailingStreet = stringField(address, "address")
			contact.MailingCity = stringField(address, "city")
			contact.MailingState = stringField(address, "state")
			contact.MailingCountry = stringField(address, "country")
			contact.MailingPostalCode = stringField(address, "postalCode")
		}
	}

	return contact, nil
}

// ToPayload builds the flat push payload from a contact. No defaulting is
// applied; blank fields pass through as-is.
func ToPayload(c *models.Contact) map[string]interface{} {
	return map[string]interface{}{
		"id":        c.ID.String(),
		"firstName": c.FirstName,
		"lastName":  c.LastName,
		"email":     c.Email,
		"phone":     c.Phone,
	}
}

// ToNormalizedPayload builds the defaulting payload variant: any of the four
// name/contact fields that is empty or whitespace-only is replaced with
// "Unknown". This is the variant used by standalone payload generation and is
// deliberately distinct from ToPayload.
func ToNormalizedPayload(c *models.Contact) map[string]interface{} {
	return map[string]interface{}{
		"salesforceId": c.ID.String(),
		"firstName":    orUnknown(c.FirstName),
		"lastName":     orUnknown(c.LastName),
		"email":        orUnknown(c.Email),
		"phone":        orUnknown(c.Phone),
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}
	return s
}

func stringField(fields map[string]interface{}, key string) string {
	if raw, present := fields[key]; present {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}
