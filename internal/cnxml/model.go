// Package cnxml converts parsed CNXML textbook modules into a typed,
// query-ready document graph plus a flattened textual projection.
//
// The extractor resolves direct ownership: content nested inside a
// subsection belongs to that subsection only, never to an ancestor, so
// the aggregate views on Module are duplicate-free by construction.
package cnxml

// TextContent is one block of normalized mixed-content text together
// with the inline facts found while normalizing it.
type TextContent struct {
	Text     string   `json:"text"`
	Emphasis []string `json:"emphasis"`
	Terms    []string `json:"terms"`
	Links    []Link   `json:"links"`
}

// Link is a cross-reference found inside mixed content. Absent
// attributes are empty strings, never omitted fields.
type Link struct {
	Text   string `json:"text"`
	Target string `json:"target"`
	URL    string `json:"url"`
}

// MediaFile is one media reference inside a figure.
type MediaFile struct {
	Kind     string `json:"type"`
	Src      string `json:"src"`
	MimeType string `json:"mime_type"`
	Alt      string `json:"alt"`
	Width    string `json:"width,omitempty"`
}

// Figure is a figure with at least one media file. Captionless figures
// are valid; medialess ones are not extractable.
type Figure struct {
	ID         string      `json:"id"`
	Caption    string      `json:"caption"`
	MediaFiles []MediaFile `json:"media_files"`
	ClassType  string      `json:"class_type"`
}

// Table is a data table. Headers come from the first header row found;
// body rows preserve column order.
type Table struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	ClassType string     `json:"class_type"`
}

// List is a bulleted or enumerated list. A list with zero non-empty
// items is not extractable.
type List struct {
	ID          string        `json:"id"`
	ListType    string        `json:"list_type"`
	NumberStyle string        `json:"number_style"`
	Items       []TextContent `json:"items"`
}

// Definition is a term/meaning pair. Context records provenance:
// "glossary" for glossary entries, empty for inline definitions.
type Definition struct {
	ID      string `json:"id"`
	Term    string `json:"term"`
	Meaning string `json:"meaning"`
	Context string `json:"context"`
}

// Exercise is a problem with optional solution and commentary. An
// exercise without a problem is not extractable.
type Exercise struct {
	ID         string       `json:"id"`
	Problem    TextContent  `json:"problem"`
	Solution   *TextContent `json:"solution,omitempty"`
	Commentary *TextContent `json:"commentary,omitempty"`
}

// Note is a callout such as a career or evolution box.
type Note struct {
	ID       string      `json:"id"`
	Content  TextContent `json:"content"`
	NoteType string      `json:"note_type"`
}

// Section is a titled subtree of a module body. It owns exactly the
// content that does not sit inside one of its subsections. Sections are
// built once and never mutated afterward.
type Section struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Content     []TextContent `json:"content"`
	Figures     []*Figure     `json:"figures"`
	Tables      []*Table      `json:"tables"`
	Lists       []*List       `json:"lists"`
	Notes       []*Note       `json:"notes"`
	Exercises   []*Exercise   `json:"exercises"`
	Subsections []*Section    `json:"subsections"`
	SectionType string        `json:"section_type"`
}

// Module is one complete parsed document unit. The All* aggregates are
// derived by Flatten and reference the same records held by the section
// tree; they carry no information of their own.
type Module struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Metadata map[string]string `json:"metadata"`

	Sections []*Section `json:"sections"`

	Definitions   []*Definition `json:"definitions"`
	GlossaryTerms []*Definition `json:"glossary_terms"`

	LearningObjectives []string `json:"learning_objectives"`

	AllText        string        `json:"all_text"`
	AllFigures     []*Figure     `json:"all_figures"`
	AllExercises   []*Exercise   `json:"all_exercises"`
	AllDefinitions []*Definition `json:"all_definitions"`
}
