package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kalambet/shopwatch/internal/search"
	"github.com/kalambet/shopwatch/internal/storage"
)

var trackersCmd = &cobra.Command{
	Use:   "trackers",
	Short: "Inspect and manage price trackers",
}

var trackersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active price trackers",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")

		client, err := loadAPIClient()
		if err != nil {
			return err
		}

		trackers, err := client.listTrackers(cmd.Context(), userID)
		if err != nil {
			return err
		}

		if len(trackers) == 0 {
			fmt.Println("No active trackers.")
			return nil
		}

		for _, t := range trackers {
			printTracker(t)
		}
		return nil
	},
}

func printTracker(t storage.Tracker) {
	fmt.Printf("%s  %s  target %s",
		colorize(colorCyan, t.ID[:8]),
		colorize(colorBold, t.ProductName),
		search.FormatNTD(t.TargetPrice),
	)
	if t.LastPrice != nil {
		fmt.Printf("  last %s", search.FormatNTD(*t.LastPrice))
	}
	if t.LastChecked != nil {
		fmt.Printf("  checked %s", humanize.Time(*t.LastChecked))
	}
	fmt.Printf("  user %s\n", t.UserID)
}

var trackersHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show price history for a tracker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := loadAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/trackers/%s/history?limit=%d", args[0], limit))
		if err != nil {
			return err
		}

		var records []storage.PriceRecord
		if err := decodeJSON(resp, &records); err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No price history recorded.")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s  %s  %s  %s\n",
				r.ObservedAt.Format("2006-01-02 15:04"),
				colorize(colorBold, search.FormatNTD(r.Price)),
				r.Platform,
				r.ItemName,
			)
		}
		return nil
	},
}

var trackersRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Deactivate a tracker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := loadAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/trackers/"+args[0])
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Tracker %s deactivated", args[0])
		return nil
	},
}

func init() {
	trackersListCmd.Flags().String("user", "", "only show trackers for this LINE user ID")
	trackersHistoryCmd.Flags().Int("limit", 20, "maximum number of price records")
	trackersCmd.AddCommand(trackersListCmd)
	trackersCmd.AddCommand(trackersHistoryCmd)
	trackersCmd.AddCommand(trackersRemoveCmd)
}
