package dom

import "strings"

type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentTypeNode
)

var nodeTypeNames = [...]string{
	ElementNode:      "Element",
	TextNode:         "Text",
	CommentNode:      "Comment",
	DocumentTypeNode: "DocumentType",
}

func (n NodeType) String() string {
	if int(n) < len(nodeTypeNames) && nodeTypeNames[n] != "" {
		return nodeTypeNames[n]
	}
	return "NodeType(?)"
}

// Attribute is a single name/value pair in source order.
type Attribute struct {
	Name  string
	Value string
}

// Node is one entry in the document arena. Links to other nodes are
// coordinates, never pointers.
type Node struct {
	Type       NodeType
	Name       string
	Attributes []Attribute
	PublicID   string
	SystemID   string

	self     Coordinate
	parent   Coordinate
	children []Coordinate
	data     strings.Builder
}

// Data is the comment text, the run of characters of a Text node, or the
// verbatim text an element accumulated while the tokenizer was in RAWTEXT or
// RCDATA.
func (n *Node) Data() string {
	return n.data.String()
}

// Attribute returns the value of the named attribute.
func (n *Node) Attribute(name string) (string, bool) {
	for _, a := range n.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) Coordinate() Coordinate {
	return n.self
}

func (n *Node) HasChildNodes() bool {
	return len(n.children) > 0
}
