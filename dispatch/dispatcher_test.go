package dispatch

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellner/contactsync/models"
)

// captureQueue records submitted batches without running them
type captureQueue struct {
	batches []Batch
}

func (q *captureQueue) Submit(batch Batch) error {
	q.batches = append(q.batches, batch)
	return nil
}

func strPtr(s string) *string { return &s }

func TestClassifyInsertAssignsKeyAndFetches(t *testing.T) {
	queue := &captureQueue{}
	dispatcher := NewDispatcher(queue, WithIDGenerator(func() string { return "42" }))

	contact := &models.Contact{ID: uuid.New()}
	intent := dispatcher.Classify(ChangeInsert, contact)

	assert.Equal(t, IntentFetch, intent)
	require.NotNil(t, contact.ExternalID)
	assert.Equal(t, "42", *contact.ExternalID)
}

func TestClassifyUpdateHighKeyPushes(t *testing.T) {
	dispatcher := NewDispatcher(&captureQueue{})

	contact := &models.Contact{ID: uuid.New(), ExternalID: strPtr("150")}
	assert.Equal(t, IntentPush, dispatcher.Classify(ChangeUpdate, contact))
}

func TestClassifyUpdateLowKeyIsNone(t *testing.T) {
	dispatcher := NewDispatcher(&captureQueue{})

	// Key 80 is fetch-eligible only on insert; on update it classifies as none
	contact := &models.Contact{ID: uuid.New(), ExternalID: strPtr("80")}
	assert.Equal(t, IntentNone, dispatcher.Classify(ChangeUpdate, contact))
}

func TestClassifyInsertHighKeyIsNone(t *testing.T) {
	dispatcher := NewDispatcher(&captureQueue{})

	// Push applies only on the update path
	contact := &models.Contact{ID: uuid.New(), ExternalID: strPtr("150")}
	assert.Equal(t, IntentNone, dispatcher.Classify(ChangeInsert, contact))
}

func TestClassifyBoundaryKey(t *testing.T) {
	dispatcher := NewDispatcher(&captureQueue{})

	boundary := &models.Contact{ID: uuid.New(), ExternalID: strPtr("100")}
	assert.Equal(t, IntentFetch, dispatcher.Classify(ChangeInsert, boundary))
	assert.Equal(t, IntentNone, dispatcher.Classify(ChangeUpdate, boundary))

	above := &models.Contact{ID: uuid.New(), ExternalID: strPtr("101")}
	assert.Equal(t, IntentNone, dispatcher.Classify(ChangeInsert, above))
	assert.Equal(t, IntentPush, dispatcher.Classify(ChangeUpdate, above))
}

func TestClassifyInvalidKeyIsNone(t *testing.T) {
	dispatcher := NewDispatcher(&captureQueue{})

	for _, key := range []string{"abc", "-5", ""} {
		contact := &models.Contact{ID: uuid.New(), ExternalID: strPtr(key)}
		assert.Equal(t, IntentNone, dispatcher.Classify(ChangeUpdate, contact), "key %q", key)
	}
}

func TestDispatchBatchesPreserveEncounterOrder(t *testing.T) {
	queue := &captureQueue{}
	dispatcher := NewDispatcher(queue)

	a := &models.Contact{ID: uuid.New(), ExternalID: strPtr("150")}
	b := &models.Contact{ID: uuid.New(), ExternalID: strPtr("80")}
	c := &models.Contact{ID: uuid.New(), ExternalID: strPtr("200")}
	d := &models.Contact{ID: uuid.New(), ExternalID: strPtr("175")}

	require.NoError(t, dispatcher.Dispatch(ChangeUpdate, []*models.Contact{a, b, c, d}))

	require.Len(t, queue.batches, 1)
	batch := queue.batches[0]
	assert.Equal(t, IntentPush, batch.Intent)
	require.Len(t, batch.Records, 3)
	assert.Equal(t, a.ID, batch.Records[0].ContactID)
	assert.Equal(t, c.ID, batch.Records[1].ContactID)
	assert.Equal(t, d.ID, batch.Records[2].ContactID)
}

func TestDispatchSubmitsOneJobPerNonEmptyBatch(t *testing.T) {
	queue := &captureQueue{}
	keys := []string{"10", "20"}
	i := 0
	dispatcher := NewDispatcher(queue, WithIDGenerator(func() string {
		key := keys[i%len(keys)]
		i++
		return key
	}))

	contacts := []*models.Contact{
		{ID: uuid.New()},
		{ID: uuid.New()},
	}

	require.NoError(t, dispatcher.Dispatch(ChangeInsert, contacts))

	require.Len(t, queue.batches, 1)
	assert.Equal(t, IntentFetch, queue.batches[0].Intent)
	assert.Len(t, queue.batches[0].Records, 2)
}

func TestDispatchEmptyChangeSetSubmitsNothing(t *testing.T) {
	queue := &captureQueue{}
	dispatcher := NewDispatcher(queue)

	require.NoError(t, dispatcher.Dispatch(ChangeUpdate, nil))
	assert.Empty(t, queue.batches)
}

func TestRandomIDGeneratorRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		key := RandomIDGenerator()
		contact := &models.Contact{ID: uuid.New()}
		require.NoError(t, contact.SetExternalID(key))
		value, ok := contact.ExternalIDValue()
		require.True(t, ok)
		assert.GreaterOrEqual(t, value, 0)
		assert.LessOrEqual(t, value, 100)
	}
}
