// Package collection parses collxml table-of-contents files, which
// organize a book's modules into chapters and sections. Unlike module
// bodies this is a single-pass read with no ownership ambiguity, so
// plain struct decoding is enough.
package collection

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/samber/lo"
)

// Structure is the chapter/section/module hierarchy of one book.
type Structure struct {
	Title    string    `json:"title"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter is one subcollection. Sections reuse the same shape since
// collxml nests subcollections uniformly.
type Chapter struct {
	Title    string    `json:"title"`
	Sections []Chapter `json:"sections"`
	Modules  []string  `json:"modules"`
}

type collectionXML struct {
	XMLName  xml.Name    `xml:"collection"`
	Metadata metadataXML `xml:"metadata"`
	Content  contentXML  `xml:"content"`
}

type metadataXML struct {
	Title string `xml:"title"`
}

type contentXML struct {
	Subcollections []subcollectionXML `xml:"subcollection"`
	Modules        []moduleRefXML     `xml:"module"`
}

type subcollectionXML struct {
	Title   string     `xml:"title"`
	Content contentXML `xml:"content"`
}

type moduleRefXML struct {
	Document string `xml:"document,attr"`
}

// Parse reads one collection file from r.
func Parse(r io.Reader) (*Structure, error) {
	var raw collectionXML
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}

	s := &Structure{Title: raw.Metadata.Title}
	for _, sub := range raw.Content.Subcollections {
		s.Chapters = append(s.Chapters, convert(sub))
	}
	return s, nil
}

func convert(sub subcollectionXML) Chapter {
	ch := Chapter{Title: sub.Title}
	for _, nested := range sub.Content.Subcollections {
		ch.Sections = append(ch.Sections, convert(nested))
	}
	for _, mod := range sub.Content.Modules {
		if mod.Document != "" {
			ch.Modules = append(ch.Modules, mod.Document)
		}
	}
	return ch
}

// ModuleIDs flattens the hierarchy into module ids in reading order,
// dropping repeated references.
func (s *Structure) ModuleIDs() []string {
	ids := lo.FlatMap(s.Chapters, func(ch Chapter, _ int) []string {
		return chapterModuleIDs(ch)
	})
	return lo.Uniq(ids)
}

func chapterModuleIDs(ch Chapter) []string {
	ids := append([]string(nil), ch.Modules...)
	for _, sec := range ch.Sections {
		ids = append(ids, chapterModuleIDs(sec)...)
	}
	return ids
}

// CountModules returns the number of distinct modules in the book.
func (s *Structure) CountModules() int {
	return len(s.ModuleIDs())
}
