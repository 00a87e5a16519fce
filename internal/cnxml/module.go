package cnxml

import (
	"strings"

	"github.com/studylink/cnxgest/internal/xmltree"
)

// StructuralError reports a document whose shape prevents extraction:
// a missing content element or pathological section nesting. It is a
// whole-document failure; no partial Module is returned alongside it.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "cnxml: " + e.Reason
}

// metadataFields are the MDML fields copied into the metadata map when
// present. Absent fields are omitted, never errors.
var metadataFields = []string{"title", "content-id", "uuid"}

// ParseModule extracts a complete Module from a parsed CNXML document.
// Leaf-level problems (medialess figures, empty definitions, problem-
// less exercises) drop the individual record; only a missing content
// element fails the whole module.
func ParseModule(doc *xmltree.Document, moduleID string) (*Module, error) {
	root := doc.Root()

	m := &Module{
		ID:       moduleID,
		Metadata: extractMetadata(doc, root),
	}
	m.Title = extractTitle(doc, root, m.Metadata)
	m.LearningObjectives = extractLearningObjectives(doc, root)

	content, ok := doc.FirstChild(root, cnx("content"))
	if !ok {
		return nil, &StructuralError{Reason: "document has no content element"}
	}

	sections, err := parseSections(doc, content)
	if err != nil {
		return nil, err
	}
	m.Sections = sections

	// Definitions and glossary terms are document-global reference
	// material: deep search over the whole document, intentionally
	// exempt from the section ownership rule.
	for _, def := range doc.FindAll(root, cnx("definition")) {
		if d := extractDefinition(doc, def, ""); d != nil {
			m.Definitions = append(m.Definitions, d)
		}
	}
	if glossary, ok := doc.FindFirst(root, cnx("glossary")); ok {
		for _, def := range doc.FindAll(glossary, cnx("definition")) {
			if d := extractDefinition(doc, def, "glossary"); d != nil {
				m.GlossaryTerms = append(m.GlossaryTerms, d)
			}
		}
	}

	agg := Flatten(m)
	m.AllText = agg.AllText
	m.AllFigures = agg.Figures
	m.AllExercises = agg.Exercises
	m.AllDefinitions = agg.Definitions

	return m, nil
}

func extractMetadata(doc *xmltree.Document, root xmltree.NodeID) map[string]string {
	meta := make(map[string]string)
	metaElem, ok := doc.FirstChild(root, cnx("metadata"))
	if !ok {
		return meta
	}
	for _, field := range metadataFields {
		if el, ok := doc.FindFirst(metaElem, md(field)); ok {
			if text := strings.TrimSpace(doc.Text(el)); text != "" {
				meta[strings.ReplaceAll(field, "-", "_")] = text
			}
		}
	}
	return meta
}

// extractTitle prefers the document's own title element, then the
// metadata title, then "Untitled".
func extractTitle(doc *xmltree.Document, root xmltree.NodeID, metadata map[string]string) string {
	if title, ok := doc.FirstChild(root, cnx("title")); ok {
		if t := normalizeText(doc, title); t != "" {
			return t
		}
	}
	if t := metadata["title"]; t != "" {
		return t
	}
	return "Untitled"
}

// extractLearningObjectives reads the item list of the metadata
// abstract, one objective per non-empty item.
func extractLearningObjectives(doc *xmltree.Document, root xmltree.NodeID) []string {
	metaElem, ok := doc.FirstChild(root, cnx("metadata"))
	if !ok {
		return nil
	}
	abstract, ok := doc.FindFirst(metaElem, md("abstract"))
	if !ok {
		return nil
	}

	var objectives []string
	for _, item := range doc.FindAll(abstract, cnx("item")) {
		if tc := extractInline(doc, item); tc.Text != "" {
			objectives = append(objectives, tc.Text)
		}
	}
	return objectives
}
