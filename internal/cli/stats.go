package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if textOutput() {
		fmt.Printf("db:          %s (%d bytes)\n", stats.DBPath, stats.DBSizeBytes)
		fmt.Printf("medicines:   %d\n", stats.Medicines)
		fmt.Printf("restocks:    %d\n", stats.Restocks)
		fmt.Printf("daily usage: %s units\n", stats.DailyUsage)
		for _, r := range stats.ByRoute {
			fmt.Printf("  %-12s %d\n", r.Route, r.Count)
		}
		return
	}
	printJSON(stats)
}
