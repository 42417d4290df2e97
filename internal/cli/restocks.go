package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/medstock/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "restocks <id>",
		Short: "Show the purchase history of a medicine",
		Args:  cobra.ExactArgs(1),
		Run:   runRestocks,
	}

	RootCmd.AddCommand(cmd)
}

func runRestocks(cmd *cobra.Command, args []string) {
	id := parseID(args[0])

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	list, err := s.Restocks(cmd.Context(), id)
	if err != nil {
		exitErr("restocks", err)
	}
	if list == nil {
		list = []store.Restock{}
	}

	if textOutput() {
		for _, r := range list {
			fmt.Printf("%s  +%s packs  %s -> %s  %s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Packs, r.StockBefore, r.StockAfter, r.Note)
		}
		return
	}
	printJSON(list)
}
