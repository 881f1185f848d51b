package cmd

import (
	"fmt"

	"example.com/tickettracker/internal/tracker"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	trackEventID     string
	trackEmail       string
	trackTargetPrice float64
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track an event for price monitoring",
	Long:  `Subscribe an email address to price tracking for one event, fetching the event from the API if it is not stored yet`,
	RunE:  runTrack,
}

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.Flags().StringVar(&trackEventID, "event-id", "", "Ticketmaster event ID to track")
	trackCmd.Flags().StringVar(&trackEmail, "email", "", "user email for tracking notifications")
	trackCmd.Flags().Float64Var(&trackTargetPrice, "target-price", 0, "target price for notifications (optional)")
	trackCmd.MarkFlagRequired("event-id")
	trackCmd.MarkFlagRequired("email")
}

func runTrack(cmd *cobra.Command, args []string) error {
	if err := validator.New().Var(trackEmail, "required,email"); err != nil {
		return errors.Errorf("invalid email address: %s", trackEmail)
	}

	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	client, c := newCollector(cfg, db)
	t := tracker.New(client, db, c)

	var targetPrice *float64
	if cmd.Flags().Changed("target-price") {
		targetPrice = &trackTargetPrice
	}

	result, err := t.Track(cmd.Context(), trackEventID, trackEmail, targetPrice)
	if err != nil {
		return err
	}

	if !result.Tracked {
		return errors.Errorf("event ID %s not found in Ticketmaster API", trackEventID)
	}

	event := result.Event
	fmt.Printf("\nEvent: %s\n", event.Name)
	fmt.Printf("  Date: %s\n", formatTime(event.StartDate))
	fmt.Printf("  Venue: %s, %s, %s\n\n", strOrDash(event.VenueName), strOrDash(event.City), strOrDash(event.State))

	if result.Reactivated {
		fmt.Println("Reactivated tracking for this event")
		fmt.Printf("Updated tracking for %s\n", event.Name)
	} else {
		fmt.Printf("Now tracking %s\n", event.Name)
	}

	if targetPrice != nil {
		fmt.Printf("  Target price: $%.2f\n", *targetPrice)
	} else {
		fmt.Println("  No target price set (tracking only)")
	}

	return nil
}
