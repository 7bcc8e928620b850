package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ticket-desk",
		Short: "Support ticket classification service",
		Long:  `ticket-desk serves the ticket API and manages its database schema.`,
		// Running the binary without a subcommand starts the server.
		RunE: runServe,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
