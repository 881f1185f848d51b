package cmd

import (
	"fmt"
	"strings"
	"time"

	"example.com/tickettracker/internal/models"
	"example.com/tickettracker/internal/repositories"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump database contents",
	Long:  `Print table counts, stored events, tracked events, and per-event price history`,
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	session := db.DB().WithContext(cmd.Context())
	eventRepo := repositories.NewEventRepository()
	snapshotRepo := repositories.NewPriceSnapshotRepository()
	interestRepo := repositories.NewUserInterestRepository()

	eventCount, err := eventRepo.Count(session)
	if err != nil {
		return err
	}
	snapshotCount, err := snapshotRepo.Count(session)
	if err != nil {
		return err
	}
	interestCount, err := interestRepo.Count(session)
	if err != nil {
		return err
	}

	fmt.Println("Database Contents:")
	fmt.Printf("  Events: %d\n", eventCount)
	fmt.Printf("  Price Snapshots: %d\n", snapshotCount)
	fmt.Printf("  User Interests: %d\n\n", interestCount)

	printRule()
	fmt.Println("EVENTS:")
	printRule()

	events, err := eventRepo.All(session)
	if err != nil {
		return err
	}
	for _, event := range events {
		snapshots, err := snapshotRepo.ListByEvent(session, event.ID)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n", event.ID)
		fmt.Printf("  Name: %s\n", event.Name)
		fmt.Printf("  Date: %s\n", formatTime(event.StartDate))
		fmt.Printf("  Venue: %s, %s, %s\n", strOrDash(event.VenueName), strOrDash(event.City), strOrDash(event.State))
		fmt.Printf("  Price Snapshots: %d\n", len(snapshots))
	}

	fmt.Println()
	printRule()
	fmt.Println("TRACKED EVENTS:")
	printRule()

	interests, err := interestRepo.All(session)
	if err != nil {
		return err
	}
	for _, interest := range interests {
		event, err := eventRepo.FindByID(session, interest.EventID)
		if err != nil {
			return err
		}

		status := "Inactive"
		if interest.IsActive {
			status = "Active"
		}
		fmt.Printf("\n%s - %s\n", status, interestEventName(event, interest))
		fmt.Printf("  User: %s\n", interest.UserEmail)
		if interest.TargetPrice != nil {
			fmt.Printf("  Target Price: $%.2f\n", *interest.TargetPrice)
		} else {
			fmt.Println("  No target price")
		}
		fmt.Printf("  Tracking since: %s\n", interest.CreatedAt.Format(time.RFC3339))
	}

	fmt.Println()
	printRule()
	fmt.Println("PRICE HISTORY (Tracked Events):")
	printRule()

	for _, interest := range interests {
		if !interest.IsActive {
			continue
		}

		event, err := eventRepo.FindByID(session, interest.EventID)
		if err != nil {
			return err
		}
		snapshots, err := snapshotRepo.ListByEvent(session, interest.EventID)
		if err != nil {
			return err
		}

		fmt.Printf("\n%s\n", interestEventName(event, interest))
		fmt.Printf("  Price History (%d snapshots):\n", len(snapshots))
		for _, snap := range snapshots {
			fmt.Printf("    %s: %s\n", snap.SnapshotTime.Format(time.RFC3339), formatPriceRange(snap))
		}
	}

	return nil
}

func interestEventName(event *models.Event, interest models.UserInterest) string {
	if event != nil {
		return event.Name
	}
	return interest.EventID
}

func formatPriceRange(snap models.PriceSnapshot) string {
	if snap.MinPrice == nil {
		return "No price"
	}
	if snap.MaxPrice == nil {
		return fmt.Sprintf("$%.2f", *snap.MinPrice)
	}
	return fmt.Sprintf("$%.2f-$%.2f", *snap.MinPrice, *snap.MaxPrice)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func strOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func printRule() {
	fmt.Println(strings.Repeat("=", 80))
}
