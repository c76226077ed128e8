// =============================================================================
// PayPal to GnuCash Importer - GnuCash Element Tree
// =============================================================================
//
// This package treats the GnuCash ledger file as an opaque XML document: a
// generic element tree that can be read, searched, appended to and written
// back out. The importer never interprets parts of the ledger it does not
// need; everything it does not touch round-trips unchanged.
//
// NAMESPACES:
//   GnuCash files use a fistful of namespace prefixes (gnc, act, trn, ts,
//   cmdty, split, ...), all declared on the document root and all rooted at
//   http://www.gnucash.org/XML/<prefix>. Element names are stored in their
//   prefixed form ("trn:id") so the tree reads and writes the same names a
//   GnuCash user would see in the file.
//
// =============================================================================

package gnucash

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// gncNamespaceBase is the URI prefix all GnuCash namespaces share. The
// trailing path segment is the prefix itself, which makes the URI-to-prefix
// mapping mechanical.
const gncNamespaceBase = "http://www.gnucash.org/XML/"

// =============================================================================
// ELEMENT TYPE
// =============================================================================

// Attr is a single XML attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the document tree.
type Element struct {
	// Name is the prefixed element name, e.g. "gnc:transaction".
	Name string

	// Attrs are the attributes in document order.
	Attrs []Attr

	// Text is the character data of a leaf element. Elements with children
	// carry no text (GnuCash never mixes content).
	Text string

	// Children are the child elements in document order.
	Children []*Element
}

// NewElement creates an element with the given prefixed name.
func NewElement(name string) *Element {
	return &Element{Name: name}
}

// NewTextElement creates a leaf element with character data.
func NewTextElement(name, text string) *Element {
	return &Element{Name: name, Text: text}
}

// Append adds child elements and returns the receiver for chaining.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// SetAttr appends an attribute and returns the receiver for chaining.
func (e *Element) SetAttr(name, value string) *Element {
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Find returns the first direct child with the given name, or nil.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindAll returns all direct children with the given name, in order.
func (e *Element) FindAll(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ChildText returns the text of the first direct child with the given name,
// or "" if there is no such child.
func (e *Element) ChildText(name string) string {
	if c := e.Find(name); c != nil {
		return c.Text
	}
	return ""
}

// =============================================================================
// PARSING
// =============================================================================

// parseElement reads an XML document into an element tree.
//
// The xml.Decoder resolves prefixes into namespace URIs; this parser maps
// GnuCash URIs back to their canonical prefixes so the tree carries the
// names as written. Namespace declarations on the root are preserved as
// plain xmlns attributes so serialization reproduces them.
func parseElement(r io.Reader) (*Element, error) {
	decoder := xml.NewDecoder(r)

	var root *Element
	var stack []*Element
	var text strings.Builder

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: prefixedName(t.Name)}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: attrName(a.Name), Value: a.Value})
			}

			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}

			stack = append(stack, el)
			text.Reset()

		case xml.CharData:
			text.Write(t)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced end element %s", t.Name.Local)
			}
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			// Container elements only ever hold indentation whitespace.
			if len(el.Children) == 0 {
				el.Text = text.String()
				if strings.TrimSpace(el.Text) == "" {
					el.Text = ""
				}
			}
			text.Reset()
		}
	}

	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	return root, nil
}

// prefixedName restores the prefixed form of a resolved element name.
func prefixedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	if strings.HasPrefix(n.Space, gncNamespaceBase) {
		prefix := strings.TrimPrefix(n.Space, gncNamespaceBase)
		// Prefixes with a dash keep it (bt-days, bt-prox).
		return prefix + ":" + n.Local
	}
	// Unknown namespace: keep the local name, the declaration attribute on
	// the root still carries the mapping.
	return n.Local
}

// attrName restores the prefixed form of an attribute name, including the
// xmlns declarations the decoder reports with the "xmlns" space.
func attrName(n xml.Name) string {
	switch {
	case n.Space == "":
		return n.Local
	case n.Space == "xmlns":
		return "xmlns:" + n.Local
	case strings.HasPrefix(n.Space, gncNamespaceBase):
		return strings.TrimPrefix(n.Space, gncNamespaceBase) + ":" + n.Local
	default:
		return n.Local
	}
}
