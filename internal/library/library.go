// Package library loads raw book content from an on-disk bundle laid
// out the OpenStax way: modules/<id>/index.cnxml plus a collections/
// directory holding the table-of-contents file.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/studylink/cnxgest/internal/collection"
	"github.com/studylink/cnxgest/internal/xmltree"
)

// ErrNotFound reports a module id with no backing document. Callers
// treat it as "module does not exist", not as a parse failure.
var ErrNotFound = errors.New("module not found")

// Library reads a book bundle rooted at a base path.
type Library struct {
	basePath string
}

func New(basePath string) *Library {
	return &Library{basePath: basePath}
}

// Load parses the document for one module id. The returned error is
// ErrNotFound when the module file does not exist, and a wrapped decode
// error when the file exists but is not well-formed XML.
func (l *Library) Load(id string) (*xmltree.Document, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	path := filepath.Join(l.basePath, "modules", id, "index.cnxml")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("open module %s: %w", id, err)
	}
	defer f.Close()

	doc, err := xmltree.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse module %s: %w", id, err)
	}
	return doc, nil
}

// Structure parses the bundle's collection file. When the bundle holds
// several collections the lexicographically first one is used.
func (l *Library) Structure() (*collection.Structure, error) {
	dir := filepath.Join(l.basePath, "collections")
	matches, err := filepath.Glob(filepath.Join(dir, "*.collection.xml"))
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no collection file under %s", dir)
	}
	sort.Strings(matches)

	f, err := os.Open(matches[0])
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}
	defer f.Close()

	s, err := collection.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse collection %s: %w", filepath.Base(matches[0]), err)
	}
	return s, nil
}

// ModuleIDs enumerates the module ids listed by the collection file, in
// reading order.
func (l *Library) ModuleIDs() ([]string, error) {
	s, err := l.Structure()
	if err != nil {
		return nil, err
	}
	return s.ModuleIDs(), nil
}
