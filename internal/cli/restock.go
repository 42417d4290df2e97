package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/medstock/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "restock <id>",
		Short: "Record a purchase",
		Long: "Add packs to a medicine. The units left now are converted back to packs and " +
			"the purchase is added on top; consumption restarts from now.",
		Args: cobra.ExactArgs(1),
		Run:  runRestock,
	}

	cmd.Flags().StringP("packs", "p", "", "Packs bought (required)")
	cmd.Flags().String("note", "", "Free-form note, e.g. where it was bought")

	cmd.MarkFlagRequired("packs")

	RootCmd.AddCommand(cmd)
}

func runRestock(cmd *cobra.Command, args []string) {
	id := parseID(args[0])
	packs, _ := cmd.Flags().GetString("packs")
	note, _ := cmd.Flags().GetString("note")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, r, err := s.Restock(cmd.Context(), store.RestockParams{
		ID:    id,
		Packs: parseDecimal("packs", packs),
		Note:  note,
		Now:   mustNow(),
	})
	if err != nil {
		exitErr("restock", err)
	}

	if textOutput() {
		fmt.Printf("restocked %s: %s -> %s packs\n", m.Name, r.StockBefore, r.StockAfter)
		return
	}
	printJSON(map[string]any{
		"medicine": m,
		"restock":  r,
	})
}
