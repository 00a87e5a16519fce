package commands

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/studylink/cnxgest/internal/cnxml"
	"github.com/studylink/cnxgest/internal/library"
	"github.com/studylink/cnxgest/internal/textbook"
)

var flagQuiet bool

var validateCmd = &cobra.Command{
	Use:   "validate <bundle-path>",
	Short: "Parse every module in the bundle and report failures and totals",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only print failures and the summary")
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.DiscardHandler)
	svc := textbook.NewService(library.New(args[0]), nil, log)

	ids, err := svc.ModuleIDs()
	if err != nil {
		return fmt.Errorf("read table of contents: %w", err)
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	bold := color.New(color.Bold)

	var totals struct {
		parsed, failed int
		sections       int
		figures        int
		tables         int
		lists          int
		notes          int
		exercises      int
		definitions    int
		glossary       int
	}

	for _, id := range ids {
		m, err := svc.GetModule(id)
		if err != nil {
			totals.failed++
			red.Printf("FAIL %s: %v\n", id, err)
			continue
		}
		totals.parsed++
		if !flagQuiet {
			green.Printf("ok   %s  %s\n", id, m.Title)
		}

		totals.sections += countSections(m.Sections)
		totals.figures += len(m.AllFigures)
		totals.exercises += len(m.AllExercises)
		totals.definitions += len(m.Definitions)
		totals.glossary += len(m.GlossaryTerms)
		walkSections(m.Sections, func(sec *cnxml.Section) {
			totals.tables += len(sec.Tables)
			totals.lists += len(sec.Lists)
			totals.notes += len(sec.Notes)
		})
	}

	bold.Printf("\n%d modules parsed, %d failed\n", totals.parsed, totals.failed)
	fmt.Printf("sections: %d  figures: %d  tables: %d  lists: %d  notes: %d\n",
		totals.sections, totals.figures, totals.tables, totals.lists, totals.notes)
	fmt.Printf("exercises: %d  definitions: %d  glossary terms: %d\n",
		totals.exercises, totals.definitions, totals.glossary)

	if totals.failed > 0 {
		return fmt.Errorf("%d modules failed validation", totals.failed)
	}
	return nil
}

func countSections(sections []*cnxml.Section) int {
	n := len(sections)
	for _, sec := range sections {
		n += countSections(sec.Subsections)
	}
	return n
}

func walkSections(sections []*cnxml.Section, fn func(*cnxml.Section)) {
	for _, sec := range sections {
		fn(sec)
		walkSections(sec.Subsections, fn)
	}
}
