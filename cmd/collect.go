package cmd

import (
	"fmt"
	"strings"

	"example.com/tickettracker/internal/collector"
	"example.com/tickettracker/internal/ticketmaster"

	"github.com/spf13/cobra"
)

var (
	collectKeyword     string
	collectCity        string
	collectState       string
	collectType        string
	collectStartDate   string
	collectSize        int
	collectTrackedOnly bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect event data from the Ticketmaster API",
	Long:  `Search the Ticketmaster API for events and store them with a fresh price snapshot`,
	RunE:  runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectKeyword, "keyword", "", "search keyword (artist, team, venue)")
	collectCmd.Flags().StringVar(&collectCity, "city", "", "city name")
	collectCmd.Flags().StringVar(&collectState, "state", "", "state code (e.g. CA)")
	collectCmd.Flags().StringVar(&collectType, "type", "", "event classification (e.g. Music)")
	collectCmd.Flags().StringVar(&collectStartDate, "start-date", "", "earliest event start time (YYYY-MM-DDTHH:mm:ssZ)")
	collectCmd.Flags().IntVar(&collectSize, "size", ticketmaster.DefaultSearchSize, "number of events to fetch")
	collectCmd.Flags().BoolVar(&collectTrackedOnly, "tracked-only", false, "only collect data for tracked events (ignores other search flags)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	_, c := newCollector(cfg, db)
	ctx := cmd.Context()

	if collectTrackedOnly {
		fmt.Println("Collecting data for tracked events only...")

		result, err := c.CollectTracked(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("\nProcessed %d tracked events\n", result.Fetched)
		fmt.Printf("  Updated: %d events\n", result.Updated)
		fmt.Printf("  Skipped: %d past events\n", result.Skipped)
		fmt.Printf("  Errors: %d\n", len(result.Errors))

		if len(result.Errors) > 0 {
			fmt.Println("\nErrors:")
			for _, e := range result.Errors {
				fmt.Printf("  - %s: %s\n", e.EventID, e.Message)
			}
		}

		fmt.Println("\nDone!")
		return nil
	}

	printSearchParams()

	fmt.Println("Collecting events...")
	result, err := c.CollectEvents(ctx, ticketmaster.SearchFilters{
		Keyword:            collectKeyword,
		City:               collectCity,
		StateCode:          collectState,
		ClassificationName: collectType,
		StartDateTime:      collectStartDate,
		Size:               collectSize,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nFound %d events from API\n\n", result.Fetched)
	fmt.Println("Storing in database...")
	fmt.Printf("  Created: %d new events\n", result.Created)
	fmt.Printf("  Updated: %d existing events\n", result.Updated)
	fmt.Printf("  Errors: %d\n", len(result.Errors))

	printCollectErrors(result.Errors)

	fmt.Println("\nDone!")
	return nil
}

func printSearchParams() {
	var params []string
	for _, p := range []struct{ name, value string }{
		{"city", collectCity},
		{"state", collectState},
		{"type", collectType},
		{"keyword", collectKeyword},
	} {
		if p.value != "" {
			params = append(params, fmt.Sprintf("%s=%s", p.name, p.value))
		}
	}
	fmt.Printf("  Parameters: %s\n\n", strings.Join(params, ", "))
}

func printCollectErrors(errs []collector.CollectError) {
	if len(errs) == 0 {
		return
	}
	fmt.Println("\nErrors encountered:")
	for _, e := range errs {
		fmt.Printf("  - %s (%s): %s\n", e.EventName, e.EventID, e.Message)
	}
}
