package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/medstock/internal/planner"
	"github.com/rcliao/medstock/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show the daily schedule",
		Long:  "Show what is taken at each time of day and the daily total in dosage units.",
		Run:   runUsage,
	}

	RootCmd.AddCommand(cmd)
}

func runUsage(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	meds, err := s.List(cmd.Context(), store.ListParams{})
	if err != nil {
		exitErr("usage", err)
	}

	sum, _ := planner.Usage(meds)

	if textOutput() {
		for _, su := range sum.Slots {
			fmt.Printf("%s (%s units)\n", su.Slot, su.Total)
			for _, d := range su.Doses {
				fmt.Printf("  %-20s %s\n", d.Name, d.Dose)
			}
		}
		fmt.Printf("daily total: %s units\n", sum.DailyTotal)
		reportSkipped(sum.Errors)
		return
	}
	printJSON(sum)
}
