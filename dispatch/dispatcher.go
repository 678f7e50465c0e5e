package dispatch

import (
	"log/slog"

	"github.com/mkellner/contactsync/logging"
	"github.com/mkellner/contactsync/models"
)

// fetchThreshold splits the correlation key space: keys <= fetchThreshold
// are fetch-eligible on insert, keys > fetchThreshold are push-eligible on
// update. The asymmetry between the two paths is intentional: a freshly
// generated key never exceeds the threshold, so inserts never classify as
// push.
const fetchThreshold = 100

// ChangeKind distinguishes the two mutation paths the dispatcher intercepts.
type ChangeKind int

const (
	ChangeInsert ChangeKind = iota
	ChangeUpdate
)

// JobQueue accepts batches for deferred execution. Submit must not block;
// the dispatcher runs inside the mutation path.
type JobQueue interface {
	Submit(batch Batch) error
}

// Dispatcher classifies changed records and submits intent batches. It holds
// no network dependency.
type Dispatcher struct {
	idgen  IDGenerator
	jobs   JobQueue
	logger *slog.Logger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithIDGenerator overrides the external-key generator used on insert
func WithIDGenerator(gen IDGenerator) DispatcherOption {
	return func(d *Dispatcher) {
		d.idgen = gen
	}
}

// WithDispatcherLogger sets a custom logger
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher submitting to the given job queue.
func NewDispatcher(jobs JobQueue, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		idgen:  RandomIDGenerator,
		jobs:   jobs,
		logger: logging.Default().Logger,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Classify computes the intent for a single record on the given change path.
// On insert, a record without a correlation key is assigned a fresh one
// before classification.
func (d *Dispatcher) Classify(change ChangeKind, contact *models.Contact) Intent {
	if change == ChangeInsert && contact.ExternalID == nil {
		key := d.idgen()
		if err := contact.SetExternalID(key); err != nil {
			d.logger.Warn("Generated external key rejected",
				slog.String("key", key),
				slog.String("error", err.Error()))
			return IntentNone
		}
		d.logger.Debug("Assigned external key on insert",
			slog.String("contact_id", contact.ID.String()),
			slog.String("key", key))
	}

	value, ok := contact.ExternalIDValue()
	if !ok {
		return IntentNone
	}

	switch change {
	case ChangeInsert:
		if value <= fetchThreshold {
			return IntentFetch
		}
	case ChangeUpdate:
		if value > fetchThreshold {
			return IntentPush
		}
	}

	return IntentNone
}

// Dispatch processes a full change set: classifies every record, accumulates
// same-intent records in encounter order, and submits one deferred job per
// non-empty batch. It never blocks and never performs network I/O.
func (d *Dispatcher) Dispatch(change ChangeKind, contacts []*models.Contact) error {
	var fetch, push []Record

	for _, contact := range contacts {
		switch d.Classify(change, contact) {
		case IntentFetch:
			fetch = append(fetch, recordRef(contact))
		case IntentPush:
			push = append(push, recordRef(contact))
		}
	}

	d.logger.Debug("Change set classified",
		slog.Int("total", len(contacts)),
		slog.Int("fetch", len(fetch)),
		slog.Int("push", len(push)))

	if len(fetch) > 0 {
		if err := d.jobs.Submit(Batch{Intent: IntentFetch, Records: fetch}); err != nil {
			return err
		}
	}
	if len(push) > 0 {
		if err := d.jobs.Submit(Batch{Intent: IntentPush, Records: push}); err != nil {
			return err
		}
	}

	return nil
}
