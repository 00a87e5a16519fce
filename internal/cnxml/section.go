package cnxml

import (
	"strings"

	"github.com/studylink/cnxgest/internal/xmltree"
)

// maxSectionDepth bounds recursion defensively. Real textbook modules
// nest three or four levels; anything near this limit is malformed.
const maxSectionDepth = 100

// directContent is the leaf content a container owns directly, i.e. not
// through one of its immediate child sections.
type directContent struct {
	paragraphs []TextContent
	figures    []*Figure
	tables     []*Table
	lists      []*List
	notes      []*Note
	exercises  []*Exercise
}

func (c directContent) empty() bool {
	return len(c.paragraphs) == 0 && len(c.figures) == 0 && len(c.tables) == 0 &&
		len(c.lists) == 0 && len(c.notes) == 0 && len(c.exercises) == 0
}

// collectDirect gathers the leaf structures owned directly by container.
// For each kind, ownership is the deep node set under the container
// minus the deep node sets under its immediate child sections, in
// document order. Content nested in a note or exercise that sits
// directly under the container stays owned; only descent through a
// section boundary removes ownership. Node identity is the arena index,
// so two structurally identical figures are still distinct.
func collectDirect(doc *xmltree.Document, container xmltree.NodeID) directContent {
	var out directContent

	// Paragraph ownership is always immediate; paragraphs are not
	// indirection points.
	for _, para := range doc.ChildrenMatching(container, cnx("para")) {
		tc := extractInline(doc, para)
		if strings.TrimSpace(tc.Text) != "" {
			out.paragraphs = append(out.paragraphs, tc)
		}
	}

	childSections := doc.ChildrenMatching(container, cnx("section"))

	for _, id := range ownedNodes(doc, container, childSections, cnx("figure")) {
		if fig := extractFigure(doc, id); fig != nil {
			out.figures = append(out.figures, fig)
		}
	}
	for _, id := range ownedNodes(doc, container, childSections, cnx("table")) {
		if tbl := extractTable(doc, id); tbl != nil {
			out.tables = append(out.tables, tbl)
		}
	}
	for _, id := range ownedNodes(doc, container, childSections, cnx("list")) {
		if lst := extractList(doc, id); lst != nil {
			out.lists = append(out.lists, lst)
		}
	}
	for _, id := range ownedNodes(doc, container, childSections, cnx("note")) {
		if note := extractNote(doc, id); note != nil {
			out.notes = append(out.notes, note)
		}
	}
	for _, id := range ownedNodes(doc, container, childSections, cnx("exercise")) {
		if ex := extractExercise(doc, id); ex != nil {
			out.exercises = append(out.exercises, ex)
		}
	}

	return out
}

// ownedNodes returns the tag-matching descendants of container that are
// not also descendants of any of the given child sections.
func ownedNodes(doc *xmltree.Document, container xmltree.NodeID, childSections []xmltree.NodeID, tag xmltree.Tag) []xmltree.NodeID {
	var excluded map[xmltree.NodeID]struct{}
	for _, sec := range childSections {
		for _, id := range doc.FindAll(sec, tag) {
			if excluded == nil {
				excluded = make(map[xmltree.NodeID]struct{})
			}
			excluded[id] = struct{}{}
		}
	}

	var owned []xmltree.NodeID
	for _, id := range doc.FindAll(container, tag) {
		if _, skip := excluded[id]; skip {
			continue
		}
		owned = append(owned, id)
	}
	return owned
}

// parseSection builds one Section from a section node, recursing
// depth-first into immediate child sections.
func parseSection(doc *xmltree.Document, id xmltree.NodeID, depth int) (*Section, error) {
	if depth > maxSectionDepth {
		return nil, &StructuralError{Reason: "section nesting exceeds depth limit"}
	}

	sec := &Section{
		ID:          doc.Attr(id, "id", ""),
		Title:       "Untitled Section",
		SectionType: doc.Attr(id, "class", "regular"),
	}
	if title, ok := doc.FirstChild(id, cnx("title")); ok {
		if t := normalizeText(doc, title); t != "" {
			sec.Title = t
		}
	}

	content := collectDirect(doc, id)
	sec.Content = content.paragraphs
	sec.Figures = content.figures
	sec.Tables = content.tables
	sec.Lists = content.lists
	sec.Notes = content.notes
	sec.Exercises = content.exercises

	for _, child := range doc.ChildrenMatching(id, cnx("section")) {
		sub, err := parseSection(doc, child, depth+1)
		if err != nil {
			return nil, err
		}
		sec.Subsections = append(sec.Subsections, sub)
	}

	return sec, nil
}

// parseSections builds the top-level section list from the module's
// content node. Content appearing before any named section is kept in a
// synthetic leading "Main Content" section so it is never lost.
func parseSections(doc *xmltree.Document, content xmltree.NodeID) ([]*Section, error) {
	var sections []*Section

	direct := collectDirect(doc, content)
	if !direct.empty() {
		sections = append(sections, &Section{
			ID:          "main",
			Title:       "Main Content",
			Content:     direct.paragraphs,
			Figures:     direct.figures,
			Tables:      direct.tables,
			Lists:       direct.lists,
			Notes:       direct.notes,
			Exercises:   direct.exercises,
			SectionType: "regular",
		})
	}

	for _, child := range doc.ChildrenMatching(content, cnx("section")) {
		sec, err := parseSection(doc, child, 1)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}

	return sections, nil
}
