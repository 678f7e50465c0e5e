package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mkellner/contactsync/callout"
	"github.com/mkellner/contactsync/dispatch"
	"github.com/mkellner/contactsync/models"
	"github.com/mkellner/contactsync/storage/sqlite"
)

var demoCount int

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Drive the dispatcher over a synthetic insert change set",
	Long: "Simulates a record-change trigger: inserts contacts without correlation\n" +
		"keys, lets the dispatcher assign keys and classify, and waits for the\n" +
		"deferred fetch batch to complete against the remote API.",
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().IntVar(&demoCount, "count", 3, "number of synthetic contacts to insert")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := configFromEnv()
	if err != nil {
		return err
	}

	store, err := sqlite.NewWithDataSource(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	client := callout.NewClient(cfg.BaseURL, store)
	runner := dispatch.NewRunner(client, dispatch.WithQueueDepth(cfg.QueueDepth))
	dispatcher := dispatch.NewDispatcher(runner)

	contacts := make([]*models.Contact, 0, demoCount)
	for i := 0; i < demoCount; i++ {
		contacts = append(contacts, &models.Contact{ID: uuid.New()})
	}

	if err := dispatcher.Dispatch(dispatch.ChangeInsert, contacts); err != nil {
		return err
	}

	// Close drains the queue and waits for the worker
	if err := runner.Close(); err != nil {
		return err
	}

	for _, contact := range contacts {
		key := "(none)"
		if contact.ExternalID != nil {
			key = *contact.ExternalID
		}
		fmt.Printf("contact %s key=%s\n", contact.ID, key)
	}
	return nil
}
