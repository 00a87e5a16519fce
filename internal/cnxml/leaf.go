package cnxml

import (
	"strings"

	"github.com/studylink/cnxgest/internal/xmltree"
)

// Leaf extractors turn one node into one typed record. A nil result
// means "not extractable" and is silently skipped by callers, so one
// malformed structure never aborts the rest of the document.

func extractFigure(doc *xmltree.Document, id xmltree.NodeID) *Figure {
	fig := &Figure{
		ID:        doc.Attr(id, "id", ""),
		ClassType: doc.Attr(id, "class", ""),
	}

	if cap, ok := doc.FindFirst(id, cnx("caption")); ok {
		fig.Caption = normalizeText(doc, cap)
	}

	for _, media := range doc.FindAll(id, cnx("media")) {
		alt := doc.Attr(media, "alt", "")
		for _, img := range doc.FindAll(media, cnx("image")) {
			src := doc.Attr(img, "src", "")
			if src == "" {
				continue
			}
			fig.MediaFiles = append(fig.MediaFiles, MediaFile{
				Kind:     "image",
				Src:      src,
				MimeType: doc.Attr(img, "mime-type", ""),
				Alt:      alt,
				Width:    doc.Attr(img, "width", ""),
			})
		}
	}

	if len(fig.MediaFiles) == 0 {
		return nil
	}
	return fig
}

func extractTable(doc *xmltree.Document, id xmltree.NodeID) *Table {
	tbl := &Table{
		ID:        doc.Attr(id, "id", ""),
		Summary:   doc.Attr(id, "summary", ""),
		ClassType: doc.Attr(id, "class", ""),
	}

	if title, ok := doc.FindFirst(id, cnx("title")); ok {
		tbl.Title = normalizeText(doc, title)
	}

	tgroup, ok := doc.FindFirst(id, cnx("tgroup"))
	if !ok {
		return tbl
	}

	if thead, ok := doc.FindFirst(tgroup, cnx("thead")); ok {
		for _, row := range doc.FindAll(thead, cnx("row")) {
			header := rowCells(doc, row)
			if len(header) > 0 {
				tbl.Headers = header
				break
			}
		}
	}

	if tbody, ok := doc.FindFirst(tgroup, cnx("tbody")); ok {
		for _, row := range doc.FindAll(tbody, cnx("row")) {
			cells := rowCells(doc, row)
			if len(cells) > 0 {
				tbl.Rows = append(tbl.Rows, cells)
			}
		}
	}

	return tbl
}

func rowCells(doc *xmltree.Document, row xmltree.NodeID) []string {
	var cells []string
	for _, entry := range doc.FindAll(row, cnx("entry")) {
		cells = append(cells, normalizeText(doc, entry))
	}
	return cells
}

func extractList(doc *xmltree.Document, id xmltree.NodeID) *List {
	lst := &List{
		ID:          doc.Attr(id, "id", ""),
		ListType:    doc.Attr(id, "list-type", "bulleted"),
		NumberStyle: doc.Attr(id, "number-style", "decimal"),
	}

	// Deep search is fine here: list items carry no ownership
	// ambiguity, unlike section-nested structures.
	for _, item := range doc.FindAll(id, cnx("item")) {
		tc := extractInline(doc, item)
		if strings.TrimSpace(tc.Text) != "" {
			lst.Items = append(lst.Items, tc)
		}
	}

	if len(lst.Items) == 0 {
		return nil
	}
	return lst
}

func extractNote(doc *xmltree.Document, id xmltree.NodeID) *Note {
	return &Note{
		ID:       doc.Attr(id, "id", ""),
		Content:  extractInline(doc, id),
		NoteType: doc.Attr(id, "class", "general"),
	}
}

func extractExercise(doc *xmltree.Document, id xmltree.NodeID) *Exercise {
	problem, ok := doc.FindFirst(id, cnx("problem"))
	if !ok {
		return nil
	}

	ex := &Exercise{
		ID:      doc.Attr(id, "id", ""),
		Problem: extractInline(doc, problem),
	}

	if sol, ok := doc.FindFirst(id, cnx("solution")); ok {
		tc := extractInline(doc, sol)
		ex.Solution = &tc
	}
	if com, ok := doc.FindFirst(id, cnx("commentary")); ok {
		tc := extractInline(doc, com)
		ex.Commentary = &tc
	}

	return ex
}

// extractDefinition handles both inline definitions and glossary
// entries; the two differ only in the context tag. Definitions carry no
// nested emphasis or links, so both fields are plain-normalized.
func extractDefinition(doc *xmltree.Document, id xmltree.NodeID, context string) *Definition {
	var term, meaning string
	if t, ok := doc.FindFirst(id, cnx("term")); ok {
		term = normalizeText(doc, t)
	}
	if m, ok := doc.FindFirst(id, cnx("meaning")); ok {
		meaning = normalizeText(doc, m)
	}
	if term == "" || meaning == "" {
		return nil
	}
	return &Definition{
		ID:      doc.Attr(id, "id", ""),
		Term:    term,
		Meaning: meaning,
		Context: context,
	}
}
