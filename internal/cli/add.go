package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/medstock/internal/model"
	"github.com/rcliao/medstock/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Start tracking a medicine",
		Long:  "Add a medicine. Stock is counted in packs; doses are dosage units taken at each time of day.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runAdd,
	}

	cmd.Flags().StringP("name", "n", "", "Medicine name (or positional arg)")
	cmd.Flags().StringP("pack-size", "s", "", "Dosage units per pack (required)")
	cmd.Flags().String("stock", "0", "Packs on hand")
	cmd.Flags().String("morning", "0", "Units taken in the morning")
	cmd.Flags().String("noon", "0", "Units taken at noon")
	cmd.Flags().String("night", "0", "Units taken at night")
	cmd.Flags().StringP("route", "r", "oral", "Administration route: oral, injectable, suppository")

	cmd.MarkFlagRequired("pack-size")

	RootCmd.AddCommand(cmd)
}

func runAdd(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	if len(args) > 0 {
		name = args[0]
	}
	if strings.TrimSpace(name) == "" {
		exitErr("add", fmt.Errorf("name is required (positional arg or --name)"))
	}

	packSize, _ := cmd.Flags().GetString("pack-size")
	stock, _ := cmd.Flags().GetString("stock")
	morning, _ := cmd.Flags().GetString("morning")
	noon, _ := cmd.Flags().GetString("noon")
	night, _ := cmd.Flags().GetString("night")
	routeStr, _ := cmd.Flags().GetString("route")

	route, err := model.ParseRoute(routeStr)
	if err != nil {
		exitErr("add", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	m, err := s.Add(cmd.Context(), store.AddParams{
		Name:     strings.TrimSpace(name),
		PackSize: parseDecimal("pack-size", packSize),
		Stock:    parseDecimal("stock", stock),
		Doses: model.Doses{
			Morning: parseDecimal("morning", morning),
			Noon:    parseDecimal("noon", noon),
			Night:   parseDecimal("night", night),
		},
		Route: route,
		Now:   mustNow(),
	})
	if err != nil {
		exitErr("add", err)
	}

	if textOutput() {
		fmt.Printf("added %s (id %d)\n", m.Name, m.ID)
		return
	}
	printJSON(m)
}
