package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkellner/contactsync/callout"
	"github.com/mkellner/contactsync/storage/sqlite"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <externalID>",
	Short: "Fetch one remote profile and upsert it into the local store",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
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
	if err := client.Fetch(cmd.Context(), args[0]); err != nil {
		return err
	}

	contact, err := store.GetByExternalID(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Fetched profile %s -> contact %s\n", args[0], contact.ID)
	return nil
}
