// Package xmltree builds an arena-indexed element tree from an XML stream.
//
// encoding/xml's struct decoding cannot represent mixed content (text
// interleaved with child elements), which CNXML uses everywhere. This
// package keeps every element in a flat arena and addresses it by a
// stable integer NodeID assigned in document order, so callers can use
// plain index sets where object identity would otherwise be needed.
package xmltree

import (
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// NodeID identifies one element within a Document. IDs are assigned in
// document order during parsing and are dense: 0 is always the root.
type NodeID int

// Tag is a qualified element name.
type Tag struct {
	Space string
	Local string
}

func (t Tag) String() string {
	if t.Space == "" {
		return t.Local
	}
	return "{" + t.Space + "}" + t.Local
}

type node struct {
	tag      Tag
	attrs    []xml.Attr
	text     string // character data before the first child
	tail     string // character data after this element, inside its parent
	children []NodeID
	parent   NodeID
}

// Document is an immutable parsed XML document.
type Document struct {
	nodes []node
}

// Parse reads one XML document from r. The decoder tolerates non-UTF-8
// encodings declared in the prolog.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	doc := &Document{}
	var stack []NodeID

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			id := NodeID(len(doc.nodes))
			n := node{
				tag:    Tag{Space: t.Name.Space, Local: t.Name.Local},
				parent: -1,
			}
			if len(t.Attr) > 0 {
				n.attrs = make([]xml.Attr, len(t.Attr))
				copy(n.attrs, t.Attr)
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				n.parent = parent
				doc.nodes[parent].children = append(doc.nodes[parent].children, id)
			} else if len(doc.nodes) > 0 {
				return nil, fmt.Errorf("multiple root elements")
			}
			doc.nodes = append(doc.nodes, n)
			stack = append(stack, id)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue // whitespace outside the root
			}
			cur := stack[len(stack)-1]
			if kids := doc.nodes[cur].children; len(kids) > 0 {
				last := kids[len(kids)-1]
				doc.nodes[last].tail += string(t)
			} else {
				doc.nodes[cur].text += string(t)
			}
		}
	}

	if len(doc.nodes) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	return doc, nil
}

// Root returns the document element.
func (d *Document) Root() NodeID { return 0 }

// Len returns the number of elements in the document.
func (d *Document) Len() int { return len(d.nodes) }

// Tag returns the qualified name of id.
func (d *Document) Tag(id NodeID) Tag { return d.nodes[id].tag }

// Text returns the character data before id's first child, untrimmed.
func (d *Document) Text(id NodeID) string { return d.nodes[id].text }

// Tail returns the character data between id's end tag and the next
// sibling, untrimmed.
func (d *Document) Tail(id NodeID) string { return d.nodes[id].tail }

// Parent returns id's parent, or -1 for the root.
func (d *Document) Parent(id NodeID) NodeID { return d.nodes[id].parent }

// Children returns id's immediate children in document order. The
// returned slice is owned by the document and must not be modified.
func (d *Document) Children(id NodeID) []NodeID { return d.nodes[id].children }

// Attr returns the value of the attribute with the given local name, or
// def if absent. CNXML attributes are unprefixed, so matching ignores
// the namespace.
func (d *Document) Attr(id NodeID, local, def string) string {
	for _, a := range d.nodes[id].attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return def
}

// AttrNames returns the local names of id's attributes in document order.
func (d *Document) AttrNames(id NodeID) []string {
	attrs := d.nodes[id].attrs
	if len(attrs) == 0 {
		return nil
	}
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name.Local
	}
	return names
}

// ChildrenMatching returns id's immediate children with the given tag.
func (d *Document) ChildrenMatching(id NodeID, t Tag) []NodeID {
	var out []NodeID
	for _, c := range d.nodes[id].children {
		if d.nodes[c].tag == t {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first immediate child of id with the given tag.
func (d *Document) FirstChild(id NodeID, t Tag) (NodeID, bool) {
	for _, c := range d.nodes[id].children {
		if d.nodes[c].tag == t {
			return c, true
		}
	}
	return -1, false
}

// FindAll returns every descendant of id with the given tag, in document
// order. id itself is never included.
func (d *Document) FindAll(id NodeID, t Tag) []NodeID {
	var out []NodeID
	var walk func(NodeID)
	walk = func(n NodeID) {
		for _, c := range d.nodes[n].children {
			if d.nodes[c].tag == t {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(id)
	return out
}

// FindFirst returns the first descendant of id with the given tag in
// document order, excluding id itself.
func (d *Document) FindFirst(id NodeID, t Tag) (NodeID, bool) {
	var found NodeID = -1
	var walk func(NodeID) bool
	walk = func(n NodeID) bool {
		for _, c := range d.nodes[n].children {
			if d.nodes[c].tag == t {
				found = c
				return true
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	if walk(id) {
		return found, true
	}
	return -1, false
}
