package dispatch_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkellner/contactsync/callout"
	"github.com/mkellner/contactsync/dispatch"
	"github.com/mkellner/contactsync/models"
	"github.com/mkellner/contactsync/storage/sqlite"
)

// Exercises the whole pipeline: a synthetic insert change set flows through
// classification, the deferred runner, the callout client, and lands in the
// sqlite store.
func TestInsertChangeSetEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		externalID := strings.TrimPrefix(r.URL.Path, "/")
		fmt.Fprintf(w, `{"firstName":"User","lastName":"Num%s","email":"u%s@x.com"}`,
			externalID, externalID)
	}))
	defer server.Close()

	store, err := sqlite.NewWithDataSource(":memory:")
	require.NoError(t, err)
	defer store.Close()

	client := callout.NewClient(server.URL, store)
	runner := dispatch.NewRunner(client)
	keys := []string{"7", "23", "99"}
	i := 0
	dispatcher := dispatch.NewDispatcher(runner, dispatch.WithIDGenerator(func() string {
		key := keys[i]
		i++
		return key
	}))

	contacts := []*models.Contact{
		{ID: uuid.New()},
		{ID: uuid.New()},
		{ID: uuid.New()},
	}
	require.NoError(t, dispatcher.Dispatch(dispatch.ChangeInsert, contacts))
	require.NoError(t, runner.Close())

	for _, key := range keys {
		stored, err := store.GetByExternalID(context.Background(), key)
		require.NoError(t, err)
		require.NotNil(t, stored, "contact for key %s should be stored", key)
		assert.Equal(t, "User", stored.FirstName)
		assert.Equal(t, "u"+key+"@x.com", stored.Email)
	}
}

// A push change set updates last-synced timestamps through the same pipeline.
func TestUpdateChangeSetEndToEnd(t *testing.T) {
	var pushes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/add" {
			pushes.Add(1)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	store, err := sqlite.NewWithDataSource(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	contact, err := store.Upsert(ctx, &models.Contact{FirstName: "Ann"}, "150")
	require.NoError(t, err)

	client := callout.NewClient(server.URL, store)
	runner := dispatch.NewRunner(client)
	dispatcher := dispatch.NewDispatcher(runner)

	require.NoError(t, dispatcher.Dispatch(dispatch.ChangeUpdate, []*models.Contact{contact}))
	require.NoError(t, runner.Close())

	assert.Equal(t, int32(1), pushes.Load())
	stored, err := store.GetByID(ctx, contact.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotNil(t, stored.LastSyncedAt)
}
