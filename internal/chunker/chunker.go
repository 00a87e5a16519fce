// Package chunker splits a parsed module into sized text segments with
// section breadcrumbs, ready for embedding and retrieval indexing.
package chunker

import (
	"strings"

	"github.com/studylink/cnxgest/internal/cnxml"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

// Chunk is one sized text segment with structural context.
type Chunk struct {
	ModuleID    string   `json:"module_id"`
	ModuleTitle string   `json:"module_title"`
	Text        string   `json:"text"`
	Index       int      `json:"index"`
	Breadcrumb  []string `json:"breadcrumb"`
}

// ChunkModule walks a module's section tree and produces
// structure-aware chunks. Each section's prose (paragraphs, note
// bodies, exercise problems) is chunked under a breadcrumb of section
// titles rooted at the module title.
func ChunkModule(m *cnxml.Module, cfg Config) []Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 100
	}

	var chunks []Chunk
	index := 0
	root := []string{m.Title}
	for _, sec := range m.Sections {
		index = walkSection(m, sec, root, cfg, &chunks, index)
	}
	return chunks
}

func walkSection(m *cnxml.Module, sec *cnxml.Section, breadcrumb []string, cfg Config, chunks *[]Chunk, index int) int {
	bc := append([]string{}, breadcrumb...)
	if sec.Title != "" {
		bc = append(bc, sec.Title)
	}

	if text := sectionText(sec); text != "" {
		tokens := EstimateTokens(text)
		if tokens <= cfg.ChunkSize {
			if tokens >= cfg.MinChunk {
				*chunks = append(*chunks, Chunk{
					ModuleID:    m.ID,
					ModuleTitle: m.Title,
					Text:        text,
					Index:       index,
					Breadcrumb:  bc,
				})
				index++
			}
		} else {
			for _, part := range splitText(text, cfg.ChunkSize, cfg.ChunkOverlap) {
				if EstimateTokens(part) >= cfg.MinChunk {
					*chunks = append(*chunks, Chunk{
						ModuleID:    m.ID,
						ModuleTitle: m.Title,
						Text:        part,
						Index:       index,
						Breadcrumb:  bc,
					})
					index++
				}
			}
		}
	}

	for _, sub := range sec.Subsections {
		index = walkSection(m, sub, bc, cfg, chunks, index)
	}
	return index
}

// sectionText joins a section's directly-owned prose. Subsection prose
// is emitted by the subsection's own walk, so nothing is duplicated.
func sectionText(sec *cnxml.Section) string {
	var parts []string
	for _, para := range sec.Content {
		if para.Text != "" {
			parts = append(parts, para.Text)
		}
	}
	for _, note := range sec.Notes {
		if note.Content.Text != "" {
			parts = append(parts, note.Content.Text)
		}
	}
	for _, ex := range sec.Exercises {
		if ex.Problem.Text != "" {
			parts = append(parts, ex.Problem.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	paragraphs := splitByParagraphs(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if currentTokens > 0 {
			result = append(result, current.String())
		}
	}

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		// A single oversized paragraph is split by sentences instead.
		if paraTokens > targetTokens {
			flush()
			current.Reset()
			currentTokens = 0
			result = append(result, splitBySentences(para, targetTokens, overlapTokens)...)
			continue
		}

		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := overlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	flush()
	return result
}

func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range splitSentences(text) {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := overlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}
	return sentences
}

// overlapText extracts the last N tokens worth of text for overlap.
func overlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}
