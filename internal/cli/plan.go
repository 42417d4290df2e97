package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/medstock/internal/planner"
	"github.com/rcliao/medstock/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what to buy before a date",
		Long: "List the medicines that run out by the target date plus the days to maintain, " +
			"with the packs to buy for each.",
		Run: runPlan,
	}

	cmd.Flags().StringP("target", "t", "", "Next purchase date (RFC3339 or YYYY-MM-DD, default: now)")
	cmd.Flags().IntP("offset", "o", 7, "Days of supply to keep after the target date")
	cmd.Flags().StringP("name", "n", "", "Filter by name (case-insensitive substring)")

	RootCmd.AddCommand(cmd)
}

func runPlan(cmd *cobra.Command, args []string) {
	targetStr, _ := cmd.Flags().GetString("target")
	offset, _ := cmd.Flags().GetInt("offset")
	name, _ := cmd.Flags().GetString("name")

	at := mustNow()
	target := at
	if targetStr != "" {
		t, err := parseInstant(targetStr)
		if err != nil {
			exitErr("plan", err)
		}
		target = t
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	meds, err := s.List(cmd.Context(), store.ListParams{Name: name})
	if err != nil {
		exitErr("plan", err)
	}

	res, _, err := planner.Plan(meds, target, offset, at)
	if err != nil {
		exitErr("plan", err)
	}

	if textOutput() {
		fmt.Printf("target %s, keeping %d days (through %s)\n\n",
			formatDate(res.Target), res.OffsetDays, formatDate(res.Window))
		defer reportSkipped(res.Errors)
		if len(res.Entries) == 0 {
			fmt.Println("nothing to buy")
			return
		}
		fmt.Printf("%-20s %-12s %-10s %-10s %-6s %-12s\n", "NAME", "LEFT@TARGET", "NEEDED", "AFTER", "PACKS", "NEW EXPIRY")
		fmt.Printf("%-20s %-12s %-10s %-10s %-6s %-12s\n", "----", "-----------", "------", "-----", "-----", "----------")
		for _, e := range res.Entries {
			fmt.Printf("%-20s %-12s %-10s %-10s %-6d %-12s\n",
				e.Medicine.Name, e.Suggestion.RemainingAtTarget, e.Suggestion.RequiredQuantity,
				e.Suggestion.TotalQuantity, e.Suggestion.Packs, formatDate(e.Suggestion.NewExpiryDate))
		}
		return
	}
	printJSON(res)
}
