// =============================================================================
// PayPal to GnuCash Importer - XML Writer
// =============================================================================
//
// Serializes the element tree back into a GnuCash XML file. The writer is
// hand-rolled rather than built on encoding/xml marshaling because the
// output needs prefixed element names ("trn:id") exactly as stored and
// byte-level control over declaration, escaping and indentation.
//
// Two modes are supported:
//   - compact: elements written back to back, matching what GnuCash itself
//     produces inside the file body
//   - pretty: indented output for human inspection, one element per line
//
// =============================================================================

package gnucash

import (
	"bytes"
	"fmt"
	"io"
)

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// WriteOptions controls serialization.
type WriteOptions struct {
	// Pretty enables indented output.
	Pretty bool

	// Indent is the indentation unit for pretty output. Default " ".
	Indent string
}

// DefaultWriteOptions returns compact output options.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Pretty: false, Indent: " "}
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// WriteDocument serializes a root element, preceded by the XML declaration,
// to w.
func WriteDocument(w io.Writer, root *Element, options WriteOptions) error {
	var buffer bytes.Buffer

	buffer.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")

	if options.Indent == "" {
		options.Indent = " "
	}
	writeElement(&buffer, root, options, 0)

	if _, err := w.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// writeElement writes one element and its subtree to the buffer.
func writeElement(buffer *bytes.Buffer, element *Element, options WriteOptions, level int) {
	if options.Pretty {
		for i := 0; i < level; i++ {
			buffer.WriteString(options.Indent)
		}
	}

	buffer.WriteString("<")
	buffer.WriteString(element.Name)

	for _, attr := range element.Attrs {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name, escapeXML(attr.Value)))
	}

	// Empty leaf: self-closing tag.
	if len(element.Children) == 0 && element.Text == "" {
		buffer.WriteString("/>")
		if options.Pretty {
			buffer.WriteString("\n")
		}
		return
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		buffer.WriteString(escapeXML(element.Text))
	} else {
		if options.Pretty {
			buffer.WriteString("\n")
		}
		for _, child := range element.Children {
			writeElement(buffer, child, options, level+1)
		}
		if options.Pretty {
			for i := 0; i < level; i++ {
				buffer.WriteString(options.Indent)
			}
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">")
	if options.Pretty {
		buffer.WriteString("\n")
	}
}

// escapeXML escapes special characters for XML content and attributes.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
