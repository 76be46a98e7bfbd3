// =============================================================================
// DTB to X Converter - XML Writer Module
// =============================================================================
//
// This module writes converted records as an XML document. Records arrive in
// document order, so elements are streamed: a group stays open until the next
// group begins, and a team until the next team or group.
//
// XML STRUCTURE:
//   <?xml version="1.0" encoding="UTF-8"?>
//   <dtb>                                   <!-- Root element -->
//     <group n="1">                         <!-- Group with global index -->
//       <name>group_name</name>
//       <note>group_note</note>
//       <team n="1">                        <!-- Team with global index -->
//         <name>team_name</name>
//         <player n="1">                    <!-- Player with global index -->
//           <registration_number>000000001</registration_number>
//           <name>player_name</name>
//           <surname>player_surname</surname>
//           <date_of_birth>01.01.1900</date_of_birth>
//           <note/>                         <!-- Present but empty -->
//         </player>
//       </team>
//     </group>
//   </dtb>
//
// Absent fields produce no element at all, present empty fields produce an
// empty element. Numbering continues across groups and teams.
//
// =============================================================================

package xmlwriter

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/dtb2x/internal/config"
	"github.com/ginjaninja78/dtb2x/internal/dtb"
)

// Element names.
const (
	groupElement  = "group"
	teamElement   = "team"
	playerElement = "player"

	// indexAttribute carries the 1-based position of an element among all
	// elements of its kind.
	indexAttribute = "n"
)

// =============================================================================
// WRITER
// =============================================================================

// Writer is a converter.Sink producing XML.
type Writer struct {
	out    *bufio.Writer
	root   string
	indent string

	// open holds the names of the group and team elements not yet closed.
	open []string

	groups, teams, players int
}

// New creates a Writer on w. The caller keeps ownership of w.
func New(w io.Writer, settings config.XMLSettings) *Writer {
	root := settings.RootElement
	if root == "" {
		root = "dtb"
	}
	indent := settings.Indent
	if indent == "" {
		indent = "  "
	}
	return &Writer{out: bufio.NewWriter(w), root: root, indent: indent}
}

// WriteHeader writes the XML declaration and opens the root element. The
// column labels are not part of the document.
func (w *Writer) WriteHeader(_ []string) error {
	w.out.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	w.out.WriteString("<" + w.root + ">\n")
	return w.err()
}

// WriteRecord writes the element for rec, closing elements the record does
// not belong to.
func (w *Writer) WriteRecord(rec dtb.Record, _ []string) error {
	switch r := rec.(type) {
	case *dtb.Group:
		w.closeTo(0)
		w.groups++
		w.openElement(groupElement, w.groups)
		w.writeFields(field{"name", r.Name}, field{"note", r.Note})

	case *dtb.Team:
		w.closeTo(1)
		w.teams++
		w.openElement(teamElement, w.teams)
		w.writeFields(field{"name", r.Name}, field{"note", r.Note})

	case *dtb.Player:
		w.closeTo(2)
		w.players++
		player := Element{
			Name:       playerElement,
			Attributes: []Attribute{{Name: indexAttribute, Value: strconv.Itoa(w.players)}},
			Children: fieldElements(
				field{"registration_number", r.RegistrationNumber},
				field{"name", r.Name},
				field{"surname", r.Surname},
				field{"date_of_birth", r.DateOfBirth},
				field{"note", r.Note},
			),
		}
		writeElement(w.out, player, w.indent, len(w.open)+1)

	default:
		return fmt.Errorf("unsupported record kind %s", rec.Kind())
	}

	return w.err()
}

// Close closes every open element and flushes the output.
func (w *Writer) Close() error {
	w.closeTo(0)
	w.out.WriteString("</" + w.root + ">\n")
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("failed to flush XML output: %w", err)
	}
	return nil
}

// openElement writes the start tag of a group or team and pushes it.
func (w *Writer) openElement(name string, index int) {
	w.writeIndent(len(w.open) + 1)
	fmt.Fprintf(w.out, "<%s %s=\"%d\">\n", name, indexAttribute, index)
	w.open = append(w.open, name)
}

// closeTo writes end tags until only depth elements remain open.
func (w *Writer) closeTo(depth int) {
	for len(w.open) > depth {
		name := w.open[len(w.open)-1]
		w.open = w.open[:len(w.open)-1]
		w.writeIndent(len(w.open) + 1)
		w.out.WriteString("</" + name + ">\n")
	}
}

// writeFields writes the fields of the innermost open element.
func (w *Writer) writeFields(fields ...field) {
	for _, child := range fieldElements(fields...) {
		writeElement(w.out, child, w.indent, len(w.open)+1)
	}
}

func (w *Writer) writeIndent(level int) {
	for i := 0; i < level; i++ {
		w.out.WriteString(w.indent)
	}
}

// err reports the first write failure. bufio.Writer keeps it and returns it
// from every later Write.
func (w *Writer) err() error {
	if _, err := w.out.Write(nil); err != nil {
		return fmt.Errorf("failed to write XML output: %w", err)
	}
	return nil
}

// =============================================================================
// ELEMENTS
// =============================================================================

// Element is an XML element with either a text value or child elements.
type Element struct {
	Name       string
	Attributes []Attribute
	Value      string
	Children   []Element
}

// Attribute is a name="value" pair on an element.
type Attribute struct {
	Name  string
	Value string
}

type field struct {
	name  string
	value dtb.Field
}

// fieldElements returns one element per present field.
func fieldElements(fields ...field) []Element {
	var elements []Element
	for _, f := range fields {
		if f.value.Valid {
			elements = append(elements, Element{Name: f.name, Value: f.value.Value})
		}
	}
	return elements
}

// writeElement writes an element to out with indentation.
func writeElement(out *bufio.Writer, element Element, indent string, level int) {
	out.WriteString(strings.Repeat(indent, level))

	out.WriteString("<")
	out.WriteString(element.Name)
	for _, attr := range element.Attributes {
		fmt.Fprintf(out, " %s=\"%s\"", attr.Name, escapeXML(attr.Value))
	}

	if len(element.Children) == 0 && element.Value == "" {
		// Self-closing tag.
		out.WriteString("/>\n")
		return
	}

	out.WriteString(">")

	if element.Value != "" {
		out.WriteString(escapeXML(element.Value))
	} else {
		out.WriteString("\n")
		for _, child := range element.Children {
			writeElement(out, child, indent, level+1)
		}
		out.WriteString(strings.Repeat(indent, level))
	}

	out.WriteString("</")
	out.WriteString(element.Name)
	out.WriteString(">\n")
}

// escapeXML escapes special characters for XML. Runes XML 1.0 cannot carry
// are replaced with U+FFFD.
func escapeXML(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			if !isXMLChar(r) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
		}
	}

	return b.String()
}

// isXMLChar reports whether r is allowed in XML 1.0 character data.
func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r < 0x20:
		return false
	case r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
		return false
	default:
		return r <= 0x10FFFF
	}
}
