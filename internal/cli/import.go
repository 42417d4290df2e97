package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/medstock/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import medicines from JSON",
		Long: "Import medicines from JSON (file or stdin). Accepts the output of export or the " +
			"storage dump of the browser tracker. Existing ids are skipped.",
		Args: cobra.MaximumNArgs(1),
		Run:  runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var (
		data []byte
		err  error
	)
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read input", err)
	}

	meds, err := store.DecodeMedicines(data)
	if err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := s.Import(cmd.Context(), meds)
	if err != nil {
		exitErr("import", err)
	}

	if textOutput() {
		fmt.Printf("imported %d, skipped %d\n", res.Imported, len(res.Skipped))
		return
	}
	b, _ := json.Marshal(map[string]any{"ok": true, "imported": res.Imported, "skipped": res.Skipped})
	fmt.Println(string(b))
}
