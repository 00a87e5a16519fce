package cnxml

import (
	"strings"

	"github.com/studylink/cnxgest/internal/xmltree"
)

// normalizeText flattens a mixed-content subtree into a single plain
// string: trimmed text fragments in document order, joined by single
// spaces. A node with no text and no children yields "".
func normalizeText(doc *xmltree.Document, id xmltree.NodeID) string {
	var parts []string
	collectText(doc, id, &parts)
	return strings.Join(parts, " ")
}

func collectText(doc *xmltree.Document, id xmltree.NodeID, parts *[]string) {
	if t := strings.TrimSpace(doc.Text(id)); t != "" {
		*parts = append(*parts, t)
	}
	for _, c := range doc.Children(id) {
		collectText(doc, c, parts)
		if t := strings.TrimSpace(doc.Tail(c)); t != "" {
			*parts = append(*parts, t)
		}
	}
}

// extractInline parses a block-level node into a TextContent. The
// emphasis, term and link facts are gathered in the same traversal that
// builds the text, so their order always matches document order and the
// text field equals what normalizeText produces on the same node.
func extractInline(doc *xmltree.Document, id xmltree.NodeID) TextContent {
	acc := inlineAcc{}
	acc.walk(doc, id)
	return TextContent{
		Text:     strings.Join(acc.parts, " "),
		Emphasis: acc.emphasis,
		Terms:    acc.terms,
		Links:    acc.links,
	}
}

type inlineAcc struct {
	parts    []string
	emphasis []string
	terms    []string
	links    []Link
}

func (a *inlineAcc) walk(doc *xmltree.Document, id xmltree.NodeID) {
	if t := strings.TrimSpace(doc.Text(id)); t != "" {
		a.parts = append(a.parts, t)
	}
	for _, c := range doc.Children(id) {
		switch doc.Tag(c) {
		case cnx("emphasis"):
			s := normalizeText(doc, c)
			a.appendSpan(s)
			a.emphasis = append(a.emphasis, s)
		case cnx("term"):
			s := normalizeText(doc, c)
			a.appendSpan(s)
			a.terms = append(a.terms, s)
		case cnx("link"):
			s := normalizeText(doc, c)
			a.appendSpan(s)
			a.links = append(a.links, Link{
				Text:   s,
				Target: doc.Attr(c, "target-id", ""),
				URL:    doc.Attr(c, "url", ""),
			})
		default:
			a.walk(doc, c)
		}
		if t := strings.TrimSpace(doc.Tail(c)); t != "" {
			a.parts = append(a.parts, t)
		}
	}
}

func (a *inlineAcc) appendSpan(s string) {
	if s != "" {
		a.parts = append(a.parts, s)
	}
}
