package dom

import "fmt"

// QuirksMode is the compatibility mode decided by the doctype.
type QuirksMode string

const (
	NoQuirks      QuirksMode = "no-quirks"
	Quirks        QuirksMode = "quirks"
	LimitedQuirks QuirksMode = "limited-quirks"
)

// Coordinate addresses a node in a Document's arena. Nodes are never removed,
// so a coordinate stays valid for the lifetime of the Document.
type Coordinate int

// Root addresses the Document itself.
const Root Coordinate = -1

// Document is the tree being built. Every node lives in a flat arena and
// refers to its parent and children by Coordinate.
// https://dom.spec.whatwg.org/#interface-document
type Document struct {
	QuirksMode QuirksMode

	nodes    []*Node
	children []Coordinate
}

func NewDocument() *Document {
	return &Document{QuirksMode: NoQuirks}
}

// Len is the number of nodes in the arena.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Node resolves any coordinate. It panics on coordinates this Document never
// handed out.
func (d *Document) Node(c Coordinate) *Node {
	if c < 0 || int(c) >= len(d.nodes) {
		panic(fmt.Sprintf("dom: coordinate %d out of range [0,%d)", c, len(d.nodes)))
	}
	return d.nodes[c]
}

// ElementFor resolves c to an element. Anything else is a programming error
// in the caller and panics.
func (d *Document) ElementFor(c Coordinate) *Node {
	n := d.Node(c)
	if n.Type != ElementNode {
		panic(fmt.Sprintf("dom: coordinate %d is a %s, not an element", c, n.Type))
	}
	return n
}

// Children returns the child coordinates of parent, or the top level nodes
// when parent is Root.
func (d *Document) Children(parent Coordinate) []Coordinate {
	if parent == Root {
		return d.children
	}
	return d.Node(parent).children
}

// Parent returns Root for top level nodes.
func (d *Document) Parent(c Coordinate) Coordinate {
	return d.Node(c).parent
}

// Path returns the child indices leading from the document to c.
func (d *Document) Path(c Coordinate) []int {
	var path []int
	for c != Root {
		parent := d.Parent(c)
		siblings := d.Children(parent)
		for i, s := range siblings {
			if s == c {
				path = append(path, i)
				break
			}
		}
		c = parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Resolve walks a child-index path from the document and returns the node it
// ends on.
func (d *Document) Resolve(path []int) (Coordinate, bool) {
	c := Root
	for _, i := range path {
		children := d.Children(c)
		if i < 0 || i >= len(children) {
			return Root, false
		}
		c = children[i]
	}
	return c, c != Root
}

func (d *Document) appendNode(parent Coordinate, n *Node) Coordinate {
	if parent != Root {
		d.ElementFor(parent)
	}
	n.self = Coordinate(len(d.nodes))
	n.parent = parent
	d.nodes = append(d.nodes, n)
	if parent == Root {
		d.children = append(d.children, n.self)
	} else {
		p := d.nodes[parent]
		p.children = append(p.children, n.self)
	}
	return n.self
}

// InsertElement appends a new element under parent and returns its coordinate.
func (d *Document) InsertElement(parent Coordinate, tagName string, attrs []Attribute) Coordinate {
	n := &Node{Type: ElementNode, Name: tagName}
	if len(attrs) > 0 {
		n.Attributes = make([]Attribute, len(attrs))
		copy(n.Attributes, attrs)
	}
	return d.appendNode(parent, n)
}

func (d *Document) InsertComment(parent Coordinate, data string) {
	n := &Node{Type: CommentNode}
	n.data.WriteString(data)
	d.appendNode(parent, n)
}

func (d *Document) InsertDocumentType(name, publicID, systemID string) {
	d.appendNode(Root, &Node{
		Type:     DocumentTypeNode,
		Name:     name,
		PublicID: publicID,
		SystemID: systemID,
	})
}

// InsertCharacter adds r to the trailing Text child of parent, creating that
// child first if the last child is anything else.
func (d *Document) InsertCharacter(parent Coordinate, r rune) {
	siblings := d.Children(parent)
	if len(siblings) > 0 {
		if last := d.nodes[siblings[len(siblings)-1]]; last.Type == TextNode {
			last.data.WriteRune(r)
			return
		}
	}
	n := &Node{Type: TextNode}
	n.data.WriteRune(r)
	d.appendNode(parent, n)
}

// AppendData adds r to the element's own accumulated text.
func (d *Document) AppendData(c Coordinate, r rune) {
	d.ElementFor(c).data.WriteRune(r)
}

// Walk visits every node in document order. Returning false from visit skips
// the node's children.
func (d *Document) Walk(visit func(c Coordinate, depth int) bool) {
	var walk func(cs []Coordinate, depth int)
	walk = func(cs []Coordinate, depth int) {
		for _, c := range cs {
			if visit(c, depth) {
				walk(d.nodes[c].children, depth+1)
			}
		}
	}
	walk(d.children, 0)
}

// GetElementsByTagName returns every element named name in document order.
// https://dom.spec.whatwg.org/#dom-document-getelementsbytagname
func (d *Document) GetElementsByTagName(name string) []Coordinate {
	var found []Coordinate
	d.Walk(func(c Coordinate, _ int) bool {
		if n := d.nodes[c]; n.Type == ElementNode && n.Name == name {
			found = append(found, c)
		}
		return true
	})
	return found
}
