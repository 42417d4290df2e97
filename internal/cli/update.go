package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rcliao/medstock/internal/model"
	"github.com/rcliao/medstock/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a medicine",
		Long: "Edit a medicine. Only the flags given are changed. Any edit restarts consumption " +
			"from now, so --stock should be the packs actually on hand.",
		Args: cobra.ExactArgs(1),
		Run:  runUpdate,
	}

	cmd.Flags().StringP("name", "n", "", "New name")
	cmd.Flags().StringP("pack-size", "s", "", "Dosage units per pack")
	cmd.Flags().String("stock", "", "Packs on hand")
	cmd.Flags().String("morning", "", "Units taken in the morning")
	cmd.Flags().String("noon", "", "Units taken at noon")
	cmd.Flags().String("night", "", "Units taken at night")
	cmd.Flags().StringP("route", "r", "", "Administration route: oral, injectable, suppository")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	p := store.UpdateParams{ID: parseID(args[0]), Now: mustNow()}

	changed := false
	if cmd.Flags().Changed("name") {
		v, _ := cmd.Flags().GetString("name")
		p.Name = &v
		changed = true
	}
	decimalFlag := func(name string) *decimal.Decimal {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		changed = true
		v, _ := cmd.Flags().GetString(name)
		d := parseDecimal(name, v)
		return &d
	}
	p.PackSize = decimalFlag("pack-size")
	p.Stock = decimalFlag("stock")
	p.Morning = decimalFlag("morning")
	p.Noon = decimalFlag("noon")
	p.Night = decimalFlag("night")
	if cmd.Flags().Changed("route") {
		v, _ := cmd.Flags().GetString("route")
		r, err := model.ParseRoute(v)
		if err != nil {
			exitErr("update", err)
		}
		p.Route = &r
		changed = true
	}
	if !changed {
		exitErr("update", fmt.Errorf("nothing to change"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, err := s.Update(cmd.Context(), p)
	if err != nil {
		exitErr("update", err)
	}

	if textOutput() {
		fmt.Printf("updated %s (id %d)\n", m.Name, m.ID)
		return
	}
	printJSON(m)
}
