package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/medstock/internal/planner"
	"github.com/rcliao/medstock/internal/projection"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a medicine and its projected supply",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	id := parseID(args[0])
	at := mustNow()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, err := s.Get(cmd.Context(), id)
	if err != nil {
		exitErr("get", err)
	}
	p, err := projection.Expiry(*m, at)
	if err != nil {
		exitErr("get", err)
	}
	row := planner.Row{Medicine: *m, Projection: p}

	if textOutput() {
		fmt.Printf("%s (id %d, %s)\n", m.Name, m.ID, m.Route)
		fmt.Printf("  pack size:  %s units\n", m.PackSize)
		fmt.Printf("  stock:      %s packs since %s\n", m.Stock, formatDate(m.Baseline()))
		fmt.Printf("  doses:      %s / %s / %s (daily %s)\n",
			m.Doses.Morning, m.Doses.Noon, m.Doses.Night, m.DailyUsage())
		fmt.Printf("  remaining:  %s units, %s days\n", p.RemainingQuantity, p.RemainingDays)
		fmt.Printf("  runs out:   %s\n", formatDate(p.ExpiryDate))
		return
	}
	printJSON(row)
}
