package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mkellner/contactsync/callout"
	"github.com/mkellner/contactsync/storage/sqlite"
)

var pushCmd = &cobra.Command{
	Use:   "push <contactID>",
	Short: "Push one local contact's profile to the remote system",
	Args:  cobra.ExactArgs(1),
	RunE:  runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	contactID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid contact id %q: %w", args[0], err)
	}

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
	if err := client.Push(cmd.Context(), contactID); err != nil {
		return err
	}

	fmt.Printf("Pushed contact %s\n", contactID)
	return nil
}
