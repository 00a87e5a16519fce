package cnxml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleModule = `<document ` + nsAttrs + `>
	<title>Introduction to Cells</title>
	<metadata>
		<md:title>Introduction to Cells</md:title>
		<md:content-id>m00001</md:content-id>
		<md:uuid>6e5fe2e9-c8f9-4d07-b0c0-2b848ed2de95</md:uuid>
		<md:abstract>
			<list>
				<item>Describe the structure of a cell</item>
				<item>Compare prokaryotes and eukaryotes</item>
				<item>  </item>
			</list>
		</md:abstract>
	</metadata>
	<content>
		<section id="intro">
			<title>Intro</title>
			<para>Hello.</para>
			<section id="detail">
				<title>Detail</title>
				<figure id="fig-cell"><media alt="a cell"><image src="cell.png" mime-type="image/png"/></media>
					<caption>A cell.</caption>
				</figure>
			</section>
		</section>
	</content>
	<glossary>
		<definition id="def-cell">
			<term>Cell</term>
			<meaning>The basic unit of life.</meaning>
		</definition>
	</glossary>
</document>`

func TestParseModule_MetadataAndObjectives(t *testing.T) {
	doc := parseDoc(t, sampleModule)

	m, err := ParseModule(doc, "m00001")
	require.NoError(t, err)

	assert.Equal(t, "m00001", m.ID)
	assert.Equal(t, "Introduction to Cells", m.Title)
	assert.Equal(t, map[string]string{
		"title":      "Introduction to Cells",
		"content_id": "m00001",
		"uuid":       "6e5fe2e9-c8f9-4d07-b0c0-2b848ed2de95",
	}, m.Metadata)
	assert.Equal(t, []string{
		"Describe the structure of a cell",
		"Compare prokaryotes and eukaryotes",
	}, m.LearningObjectives)
}

func TestParseModule_SectionOwnershipScenario(t *testing.T) {
	doc := parseDoc(t, sampleModule)

	m, err := ParseModule(doc, "m00001")
	require.NoError(t, err)

	require.Len(t, m.Sections, 1)
	intro := m.Sections[0]
	assert.Equal(t, "Intro", intro.Title)
	require.Len(t, intro.Content, 1)
	assert.Equal(t, "Hello.", intro.Content[0].Text)
	assert.Empty(t, intro.Figures)

	require.Len(t, intro.Subsections, 1)
	detail := intro.Subsections[0]
	assert.Equal(t, "Detail", detail.Title)
	require.Len(t, detail.Figures, 1)

	require.Len(t, m.AllFigures, 1)
	assert.Same(t, detail.Figures[0], m.AllFigures[0])
}

func TestParseModule_GlossaryScenario(t *testing.T) {
	doc := parseDoc(t, sampleModule)

	m, err := ParseModule(doc, "m00001")
	require.NoError(t, err)

	require.Len(t, m.GlossaryTerms, 1)
	assert.Equal(t, "Cell", m.GlossaryTerms[0].Term)
	assert.Equal(t, "glossary", m.GlossaryTerms[0].Context)

	cell := strings.Index(m.AllText, "Cell")
	meaning := strings.Index(m.AllText, "basic unit of life")
	require.NotEqual(t, -1, cell)
	require.NotEqual(t, -1, meaning)
	assert.Less(t, cell, meaning)
}

func TestParseModule_TitleFallsBackToMetadata(t *testing.T) {
	doc := parseDoc(t, `<document `+nsAttrs+`>
		<metadata><md:title>From Metadata</md:title></metadata>
		<content><para>x</para></content>
	</document>`)

	m, err := ParseModule(doc, "m1")
	require.NoError(t, err)
	assert.Equal(t, "From Metadata", m.Title)
}

func TestParseModule_TitleFallsBackToUntitled(t *testing.T) {
	doc := parseDoc(t, `<document `+nsAttrs+`><content><para>x</para></content></document>`)

	m, err := ParseModule(doc, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", m.Title)
	assert.Empty(t, m.Metadata)
	assert.Empty(t, m.LearningObjectives)
}

func TestParseModule_MissingContentIsStructural(t *testing.T) {
	doc := parseDoc(t, `<document `+nsAttrs+`><title>No Body</title></document>`)

	m, err := ParseModule(doc, "m1")
	assert.Nil(t, m)

	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "document has no content element", serr.Reason)
}

func TestParseModule_InlineDefinitionsKeepEmptyContext(t *testing.T) {
	doc := parseDoc(t, `<document `+nsAttrs+`>
		<content>
			<section id="s1"><title>S</title>
				<definition id="d1"><term>Organelle</term><meaning>A cell part.</meaning></definition>
			</section>
		</content>
	</document>`)

	m, err := ParseModule(doc, "m1")
	require.NoError(t, err)

	require.Len(t, m.Definitions, 1)
	assert.Equal(t, "", m.Definitions[0].Context)
	assert.Empty(t, m.GlossaryTerms)
}
