// Package dispatch classifies record mutations into callout intents, batches
// them, and hands the batches to a deferred job runner. The classification
// step runs synchronously inside the mutation path and performs no network
// I/O; all callouts happen later on the runner's worker goroutine.
package dispatch

import (
	"github.com/google/uuid"

	"github.com/mkellner/contactsync/models"
)

// Intent tags the callout a changed record needs, if any.
type Intent string

const (
	IntentNone  Intent = "none"
	IntentFetch Intent = "fetch"
	IntentPush  Intent = "push"
)

// Record is an immutable reference to one contact in a batch. It carries
// everything the callout client needs so no shared state crosses the
// dispatcher/runner boundary.
type Record struct {
	ContactID  uuid.UUID
	ExternalID string
}

// Batch is an ordered group of records sharing one intent, submitted as a
// single deferred job and consumed once by the runner.
type Batch struct {
	Intent  Intent
	Records []Record
}

// recordRef builds a Record from a contact's current field values.
func recordRef(c *models.Contact) Record {
	r := Record{ContactID: c.ID}
	if c.ExternalID != nil {
		r.ExternalID = *c.ExternalID
	}
	return r
}
