package cmd

import (
	"fmt"
	"os"

	"example.com/tickettracker/config"
	"example.com/tickettracker/internal/collector"
	"example.com/tickettracker/internal/database"
	"example.com/tickettracker/internal/models"
	"example.com/tickettracker/internal/ticketmaster"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "tickettracker",
	Short:         "Collect and track ticket prices from the Ticketmaster API",
	Long:          `A CLI for collecting event and price data from the Ticketmaster Discovery API and tracking events for price monitoring`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// setup loads and validates configuration, opens the database, and ensures
// the schema exists. Every subcommand starts here; a missing API key makes
// all of them fail before any work begins.
func setup() (config.Config, *database.Database, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return config.Config{}, nil, err
	}

	if err := cfg.Validate(); err != nil {
		fmt.Println("Configuration error: make sure TRACKER_TICKETMASTER_API_KEY is set")
		return config.Config{}, nil, err
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return config.Config{}, nil, err
	}

	if err := models.SetupModels(db.DB()); err != nil {
		return config.Config{}, nil, err
	}

	return cfg, db, nil
}

func newCollector(cfg config.Config, db *database.Database) (*ticketmaster.Client, *collector.Collector) {
	client := ticketmaster.NewClient(cfg.Ticketmaster)
	return client, collector.New(client, db)
}
