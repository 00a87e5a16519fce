package commands

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/studylink/cnxgest/internal/cnxml"
	"github.com/studylink/cnxgest/internal/library"
)

var flagCompact bool

var dumpCmd = &cobra.Command{
	Use:   "dump <bundle-path> <module-id>",
	Short: "Parse one module and print it as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().BoolVar(&flagCompact, "compact", false, "Emit compact JSON instead of indented")
}

func runDump(cmd *cobra.Command, args []string) error {
	lib := library.New(args[0])
	doc, err := lib.Load(args[1])
	if err != nil {
		return err
	}

	m, err := cnxml.ParseModule(doc, args[1])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	if !flagCompact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(m)
}
