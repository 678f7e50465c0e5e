package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mkellner/contactsync/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "contactsync",
	Short: "Synchronize CRM contacts with the remote user-profile API",
	Long: "contactsync fetches remote user profiles into local contacts and pushes\n" +
		"local contact changes back, driving all callouts through a deferred job runner.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; environment variables win
		_ = godotenv.Load()
		logging.Init(logging.GetConfigFromEnv())
	},
}

// config holds the runtime settings read from the environment
type config struct {
	BaseURL    string
	DBPath     string
	QueueDepth int
}

func configFromEnv() (*config, error) {
	c := &config{
		BaseURL:    os.Getenv("SYNC_BASE_URL"),
		DBPath:     "contacts.db",
		QueueDepth: 64,
	}

	if c.BaseURL == "" {
		return nil, fmt.Errorf("SYNC_BASE_URL is required")
	}
	if path := os.Getenv("SYNC_DB_PATH"); path != "" {
		c.DBPath = path
	}
	if depth := os.Getenv("SYNC_QUEUE_DEPTH"); depth != "" {
		n, err := strconv.Atoi(depth)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SYNC_QUEUE_DEPTH %q", depth)
		}
		c.QueueDepth = n
	}

	return c, nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(demoCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
