package dom

import "strings"

var (
	textEscaper      = strings.NewReplacer("&", "&amp;", "\u00A0", "&nbsp;", "<", "&lt;", ">", "&gt;")
	attributeEscaper = strings.NewReplacer("&", "&amp;", "\u00A0", "&nbsp;", "\"", "&quot;")
)

// https://html.spec.whatwg.org/#escapingString
func escapeString(s string, attrVal bool) string {
	if attrVal {
		return attributeEscaper.Replace(s)
	}
	return textEscaper.Replace(s)
}

func isVoidElement(name string) bool {
	switch name {
	case "area", "base", "basefont", "bgsound", "br", "col", "embed", "frame", "hr",
		"img", "input", "keygen", "link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

// text under these parents is written out as is
func isRawTextParent(name string) bool {
	switch name {
	case "style", "script", "xmp", "iframe", "noembed", "noframes", "plaintext":
		return true
	}
	return false
}

func escapeText(parent, s string) string {
	if isRawTextParent(parent) {
		return s
	}
	return escapeString(s, false)
}

// HTML serializes the whole document back into markup.
// https://html.spec.whatwg.org/multipage/parsing.html#serialising-html-fragments
func (d *Document) HTML() string {
	var sb strings.Builder
	d.serializeChildren(&sb, Root)
	return sb.String()
}

// InnerHTML serializes the children of the element at c.
func (d *Document) InnerHTML(c Coordinate) string {
	var sb strings.Builder
	d.serializeChildren(&sb, d.ElementFor(c).self)
	return sb.String()
}

func (d *Document) serializeChildren(sb *strings.Builder, parent Coordinate) {
	parentName := ""
	if parent != Root {
		n := d.nodes[parent]
		if isVoidElement(n.Name) {
			return
		}
		parentName = n.Name
		// RAWTEXT and RCDATA content is kept on the element itself
		if n.data.Len() > 0 {
			sb.WriteString(escapeText(parentName, n.Data()))
		}
	}

	for _, c := range d.Children(parent) {
		child := d.nodes[c]
		switch child.Type {
		case ElementNode:
			sb.WriteString("<" + child.Name)
			for _, a := range child.Attributes {
				sb.WriteString(" " + a.Name + "=\"" + escapeString(a.Value, true) + "\"")
			}
			sb.WriteString(">")
			if isVoidElement(child.Name) {
				continue
			}
			d.serializeChildren(sb, c)
			sb.WriteString("</" + child.Name + ">")
		case TextNode:
			sb.WriteString(escapeText(parentName, child.Data()))
		case CommentNode:
			sb.WriteString("<!--" + child.Data() + "-->")
		case DocumentTypeNode:
			sb.WriteString("<!DOCTYPE " + child.Name + ">")
		}
	}
}
