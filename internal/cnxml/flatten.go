package cnxml

import (
	"fmt"
	"strings"
)

// Aggregates is the flattened projection of a Module: one text blob for
// retrieval plus de-duplicated document-order lists per content kind.
// The lists reference the same records as the section tree.
type Aggregates struct {
	AllText     string
	Figures     []*Figure
	Exercises   []*Exercise
	Definitions []*Definition
}

// Flatten walks the finished Module tree once, pre-order, and returns a
// freshly built Aggregates. It never mutates the Module, so flattening
// the same tree twice produces byte-identical output.
func Flatten(m *Module) Aggregates {
	var agg Aggregates
	var parts []string

	parts = append(parts, "Title: "+m.Title)
	if len(m.LearningObjectives) > 0 {
		parts = append(parts, "Learning Objectives:")
		for _, obj := range m.LearningObjectives {
			parts = append(parts, "- "+obj)
		}
	}

	for _, sec := range m.Sections {
		flattenSection(sec, &parts, &agg)
	}

	for _, def := range m.Definitions {
		parts = append(parts, fmt.Sprintf("Definition - %s: %s", def.Term, def.Meaning))
		agg.Definitions = append(agg.Definitions, def)
	}
	for _, def := range m.GlossaryTerms {
		parts = append(parts, fmt.Sprintf("Definition - %s: %s", def.Term, def.Meaning))
		agg.Definitions = append(agg.Definitions, def)
	}

	agg.AllText = strings.Join(parts, "\n\n")
	return agg
}

func flattenSection(sec *Section, parts *[]string, agg *Aggregates) {
	*parts = append(*parts, "Section: "+sec.Title)

	for _, para := range sec.Content {
		*parts = append(*parts, para.Text)
	}

	for _, fig := range sec.Figures {
		agg.Figures = append(agg.Figures, fig)
		*parts = append(*parts, fmt.Sprintf("Figure %s: %s", fig.ID, fig.Caption))
	}

	for _, tbl := range sec.Tables {
		*parts = append(*parts, fmt.Sprintf("Table %s: %s", tbl.ID, tbl.Title))
		if tbl.Summary != "" {
			*parts = append(*parts, "Summary: "+tbl.Summary)
		}
	}

	for _, lst := range sec.Lists {
		*parts = append(*parts, fmt.Sprintf("List (%s):", lst.ListType))
		for _, item := range lst.Items {
			*parts = append(*parts, "- "+item.Text)
		}
	}

	for _, note := range sec.Notes {
		*parts = append(*parts, fmt.Sprintf("Note (%s): %s", note.NoteType, note.Content.Text))
	}

	for _, ex := range sec.Exercises {
		agg.Exercises = append(agg.Exercises, ex)
		*parts = append(*parts, fmt.Sprintf("Exercise %s: %s", ex.ID, ex.Problem.Text))
		if ex.Solution != nil {
			*parts = append(*parts, "Solution: "+ex.Solution.Text)
		}
	}

	for _, sub := range sec.Subsections {
		flattenSection(sub, parts, agg)
	}
}
