package cnxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectDirect_ExcludesChildSectionContent(t *testing.T) {
	doc := parseDoc(t, `<content `+nsAttrs+`>
		<para>owned paragraph</para>
		<figure id="fig-owned"><media alt=""><image src="a.png"/></media></figure>
		<section id="s1">
			<title>Child</title>
			<para>child paragraph</para>
			<figure id="fig-child"><media alt=""><image src="b.png"/></media></figure>
		</section>
	</content>`)

	direct := collectDirect(doc, doc.Root())

	require.Len(t, direct.paragraphs, 1)
	assert.Equal(t, "owned paragraph", direct.paragraphs[0].Text)
	require.Len(t, direct.figures, 1)
	assert.Equal(t, "fig-owned", direct.figures[0].ID)
}

func TestCollectDirect_NoteNestedContentStaysOwned(t *testing.T) {
	// A figure inside a note that sits directly under the container is
	// still the container's: only a section boundary removes ownership.
	doc := parseDoc(t, `<content `+nsAttrs+`>
		<note id="n1">careful <emphasis>here</emphasis></note>
		<exercise id="e1"><problem><para>Q?</para></problem>
			<solution><para>A.</para></solution>
		</exercise>
	</content>`)

	direct := collectDirect(doc, doc.Root())

	require.Len(t, direct.notes, 1)
	assert.Equal(t, "careful here", direct.notes[0].Content.Text)
	require.Len(t, direct.exercises, 1)
	assert.Equal(t, "Q?", direct.exercises[0].Problem.Text)
}

func TestParseSection_TitleAndDefaults(t *testing.T) {
	doc := parseDoc(t, `<section `+nsAttrs+` id="s1">
		<title>Cell Structure</title>
		<para>Every cell has a membrane.</para>
	</section>`)

	sec, err := parseSection(doc, doc.Root(), 1)
	require.NoError(t, err)

	assert.Equal(t, "s1", sec.ID)
	assert.Equal(t, "Cell Structure", sec.Title)
	assert.Equal(t, "regular", sec.SectionType)
	require.Len(t, sec.Content, 1)
	assert.Equal(t, "Every cell has a membrane.", sec.Content[0].Text)
}

func TestParseSection_UntitledFallback(t *testing.T) {
	doc := parseDoc(t, `<section `+nsAttrs+`><para>text</para></section>`)

	sec, err := parseSection(doc, doc.Root(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Section", sec.Title)
}

func TestParseSection_OwnershipExclusivity(t *testing.T) {
	// Every figure under the section tree must be attributed to exactly
	// one section, and the per-section sets must partition the whole.
	doc := parseDoc(t, `<section `+nsAttrs+` id="outer">
		<title>Outer</title>
		<figure id="f-outer"><media alt=""><image src="1.png"/></media></figure>
		<section id="mid">
			<title>Mid</title>
			<figure id="f-mid"><media alt=""><image src="2.png"/></media></figure>
			<section id="inner">
				<title>Inner</title>
				<figure id="f-inner"><media alt=""><image src="3.png"/></media></figure>
			</section>
		</section>
	</section>`)

	sec, err := parseSection(doc, doc.Root(), 1)
	require.NoError(t, err)

	var owned []string
	var rec func(s *Section)
	rec = func(s *Section) {
		for _, f := range s.Figures {
			owned = append(owned, f.ID)
		}
		for _, sub := range s.Subsections {
			rec(sub)
		}
	}
	rec(sec)

	assert.Equal(t, []string{"f-outer", "f-mid", "f-inner"}, owned)
	require.Len(t, sec.Figures, 1)
	assert.Equal(t, "f-outer", sec.Figures[0].ID)
	require.Len(t, sec.Subsections, 1)
	require.Len(t, sec.Subsections[0].Figures, 1)
	assert.Equal(t, "f-mid", sec.Subsections[0].Figures[0].ID)
}

func TestParseSections_SyntheticMainSection(t *testing.T) {
	doc := parseDoc(t, `<content `+nsAttrs+`>
		<para>preamble before any section</para>
		<section id="s1"><title>First</title><para>body</para></section>
	</content>`)

	sections, err := parseSections(doc, doc.Root())
	require.NoError(t, err)

	require.Len(t, sections, 2)
	assert.Equal(t, "main", sections[0].ID)
	assert.Equal(t, "Main Content", sections[0].Title)
	assert.Empty(t, sections[0].Subsections)
	require.Len(t, sections[0].Content, 1)
	assert.Equal(t, "preamble before any section", sections[0].Content[0].Text)
	assert.Equal(t, "First", sections[1].Title)
}

func TestParseSections_NoSyntheticSectionWithoutDirectContent(t *testing.T) {
	doc := parseDoc(t, `<content `+nsAttrs+`>
		<section id="s1"><title>Only</title><para>body</para></section>
	</content>`)

	sections, err := parseSections(doc, doc.Root())
	require.NoError(t, err)

	require.Len(t, sections, 1)
	assert.Equal(t, "s1", sections[0].ID)
}

func TestParseSection_DepthLimit(t *testing.T) {
	sec, err := parseSection(parseDoc(t, `<section `+nsAttrs+`/>`), 0, maxSectionDepth+1)
	assert.Nil(t, sec)

	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "depth")
}
