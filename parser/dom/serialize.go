package dom

import (
	"io"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
)

// indentation follows the html5lib tree-construction test format.
func indent(depth int) string {
	return "| " + strings.Repeat("  ", depth)
}

func (d *Document) serializeNode(sb *strings.Builder, c Coordinate, depth int) {
	n := d.nodes[c]
	sb.WriteString(indent(depth))
	switch n.Type {
	case ElementNode:
		sb.WriteString("<" + n.Name + ">\n")
		attrs := slices.Clone(n.Attributes)
		slices.SortStableFunc(attrs, func(a, b Attribute) int {
			return strings.Compare(a.Name, b.Name)
		})
		for _, a := range attrs {
			sb.WriteString(indent(depth+1) + a.Name + "=\"" + a.Value + "\"\n")
		}
		if n.data.Len() > 0 {
			sb.WriteString(indent(depth+1) + "\"" + n.Data() + "\"\n")
		}
	case TextNode:
		sb.WriteString("\"" + n.Data() + "\"\n")
	case CommentNode:
		sb.WriteString("<!-- " + n.Data() + " -->\n")
	case DocumentTypeNode:
		sb.WriteString("<!DOCTYPE " + n.Name)
		if n.PublicID != "" || n.SystemID != "" {
			sb.WriteString(" \"" + n.PublicID + "\" \"" + n.SystemID + "\"")
		}
		sb.WriteString(">\n")
	}
	for _, child := range n.children {
		d.serializeNode(sb, child, depth+1)
	}
}

// String renders the tree the way html5lib's tree-construction tests do:
// one node per line, children indented under their parent, attributes
// sorted by name.
func (d *Document) String() string {
	var sb strings.Builder
	sb.WriteString("#document\n")
	for _, c := range d.children {
		d.serializeNode(&sb, c, 0)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// isXMLName reports whether s can be written as an XML element or attribute
// name. Only the ASCII subset is accepted, and colons are refused because
// the export declares no namespaces.
func isXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// isXMLChar matches the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// xmlComment makes comment data legal inside <!-- -->: no "--" and no
// trailing "-". etree writes comments unescaped.
func xmlComment(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if !isXMLChar(r) {
			r = '\uFFFD'
		}
		if r == '-' && i > 0 && s[i-1] == '-' {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	if strings.HasSuffix(s, "-") {
		sb.WriteByte(' ')
	}
	return sb.String()
}

func (d *Document) appendXML(parent *etree.Element, c Coordinate) {
	n := d.nodes[c]
	switch n.Type {
	case ElementNode:
		var e *etree.Element
		if isXMLName(n.Name) {
			e = parent.CreateElement(n.Name)
		} else {
			e = parent.CreateElement("element")
			e.CreateAttr("name", n.Name)
		}
		for _, a := range n.Attributes {
			if isXMLName(a.Name) {
				e.CreateAttr(a.Name, a.Value)
				continue
			}
			attr := e.CreateElement("attribute")
			attr.CreateAttr("name", a.Name)
			attr.CreateAttr("value", a.Value)
		}
		if n.data.Len() > 0 {
			e.CreateText(n.Data())
		}
		for _, child := range n.children {
			d.appendXML(e, child)
		}
	case TextNode:
		parent.CreateText(n.Data())
	case CommentNode:
		parent.CreateComment(xmlComment(n.Data()))
	case DocumentTypeNode:
		e := parent.CreateElement("doctype")
		e.CreateAttr("name", n.Name)
		if n.PublicID != "" {
			e.CreateAttr("public", n.PublicID)
		}
		if n.SystemID != "" {
			e.CreateAttr("system", n.SystemID)
		}
	}
}

// XML converts the tree into an etree document rooted at a <document>
// element carrying the quirks mode. Tag names that are not XML names become
// <element name="..."> and such attributes become <attribute name value>
// children placed ahead of the element's content.
func (d *Document) XML() *etree.Document {
	doc := etree.NewDocument()
	root := doc.CreateElement("document")
	root.CreateAttr("quirks-mode", string(d.QuirksMode))
	for _, c := range d.children {
		d.appendXML(root, c)
	}
	return doc
}

func (d *Document) WriteXML(w io.Writer) error {
	doc := d.XML()
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing document xml")
	}
	return nil
}
