package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/medstock/internal/planner"
	"github.com/rcliao/medstock/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List medicines with remaining supply",
		Long:  "List medicines ordered by days of supply left or by the date they run out.",
		Run:   runList,
	}

	cmd.Flags().StringP("name", "n", "", "Filter by name (case-insensitive substring)")
	cmd.Flags().StringP("sort", "s", "remaining-days", "Sort by: remaining-days, replenish-date")
	cmd.Flags().Bool("desc", false, "Sort descending")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	sortStr, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")

	field, err := planner.ParseSortField(sortStr)
	if err != nil {
		exitErr("list", err)
	}
	dir := planner.Ascending
	if desc {
		dir = dir.Toggle()
	}
	at := mustNow()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	meds, err := s.List(cmd.Context(), store.ListParams{Name: name})
	if err != nil {
		exitErr("list", err)
	}

	rows, errs := planner.Sort(meds, field, dir, at)

	if textOutput() {
		fmt.Printf("%-15s %-20s %-12s %-10s %-10s %-12s\n", "ID", "NAME", "ROUTE", "UNITS", "DAYS", "RUNS OUT")
		fmt.Printf("%-15s %-20s %-12s %-10s %-10s %-12s\n", "--", "----", "-----", "-----", "----", "--------")
		for _, r := range rows {
			fmt.Printf("%-15d %-20s %-12s %-10s %-10s %-12s\n",
				r.Medicine.ID, r.Medicine.Name, r.Medicine.Route,
				r.Projection.RemainingQuantity, r.Projection.RemainingDays,
				formatDate(r.Projection.ExpiryDate))
		}
		reportSkipped(errs)
		return
	}
	printJSON(listResult{Medicines: rows, Errors: errs})
}

// listResult is the JSON shape of list.
type listResult struct {
	Medicines []planner.Row         `json:"medicines"`
	Errors    []planner.RecordError `json:"errors,omitempty"`
}
