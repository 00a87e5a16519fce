package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/studylink/cnxgest/internal/xmltree"
)

var flagTop int

var analyzeCmd = &cobra.Command{
	Use:   "analyze <bundle-path>",
	Short: "Survey element and attribute usage across a bundle's modules",
	Long: `Analyze parses every module document in the bundle and reports how
often each element and attribute occurs. Useful for checking what markup
a new book actually uses before relying on the extractor's coverage.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntVar(&flagTop, "top", 25, "Number of entries to show per table")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	bundlePath := args[0]
	matches, err := filepath.Glob(filepath.Join(bundlePath, "modules", "*", "index.cnxml"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no module documents under %s", bundlePath)
	}
	sort.Strings(matches)

	elements := map[string]int{}
	attributes := map[string]int{}
	parsed, failed := 0, 0

	for _, path := range matches {
		doc, err := parseFile(path)
		if err != nil {
			failed++
			continue
		}
		parsed++
		for id := xmltree.NodeID(0); int(id) < doc.Len(); id++ {
			elements[doc.Tag(id).Local]++
			for _, name := range doc.AttrNames(id) {
				attributes[doc.Tag(id).Local+"/@"+name]++
			}
		}
	}

	bold := color.New(color.Bold)
	bold.Printf("Analyzed %d modules (%d unparseable)\n\n", parsed, failed)

	bold.Println("Elements:")
	printCounts(elements, flagTop)
	fmt.Println()
	bold.Println("Attributes:")
	printCounts(attributes, flagTop)
	return nil
}

func parseFile(path string) (*xmltree.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return xmltree.Parse(f)
}

func printCounts(counts map[string]int, top int) {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	for _, e := range entries {
		fmt.Printf("  %-40s %d\n", e.name, e.count)
	}
}
