// Package surface is the retained drawing surface charts render into.
//
// A Surface owns a tree of Nodes (SVG elements with string attributes), a
// defs node for shared markers and gradients, and the set of in-flight
// attribute transitions. Nothing is drawn until WriteSVG serializes the
// current state of the tree.
package surface

import (
	"math"
	"slices"
	"strconv"
	"time"
)

// Surface is a retained scene graph. It is not safe for concurrent use; all
// mutation happens on the goroutine that owns the chart.
type Surface struct {
	width, height float64

	root *Node
	defs *Node

	active []*Transition
}

// New creates an empty surface of the given size.
func New(width, height float64) *Surface {
	s := &Surface{width: width, height: height}
	s.root = &Node{tag: "svg", s: s, attrs: map[string]string{}}
	s.defs = s.root.Append("defs")
	return s
}

// Root returns the top-level svg node.
func (s *Surface) Root() *Node { return s.root }

// Defs returns the node holding markers, clip paths and gradients.
func (s *Surface) Defs() *Node { return s.defs }

// Size returns the surface dimensions.
func (s *Surface) Size() (float64, float64) { return s.width, s.height }

// Resize changes the surface dimensions. The tree is left alone.
func (s *Surface) Resize(width, height float64) {
	s.width, s.height = width, height
}

// Clear removes every node except the defs node, whose children are also
// removed, and drops all transitions.
func (s *Surface) Clear() {
	s.Interrupt()
	for _, c := range slices.Clone(s.root.children) {
		if c != s.defs {
			c.Remove()
		}
	}
	s.defs.Clear()
}

// Node is one element of the tree.
type Node struct {
	tag      string
	attrs    map[string]string
	text     string
	children []*Node
	parent   *Node
	s        *Surface
	removed  bool
}

// Tag returns the element name.
func (n *Node) Tag() string { return n.tag }

// Parent returns the parent node, or nil for the root and removed nodes.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// Removed reports whether the node was detached with Remove.
func (n *Node) Removed() bool { return n.removed }

// Append creates a child element at the end of the child list.
func (n *Node) Append(tag string) *Node {
	c := &Node{tag: tag, s: n.s, parent: n, attrs: map[string]string{}}
	n.children = append(n.children, c)
	return c
}

// Insert creates a child element at index i, clamped to the child count.
func (n *Node) Insert(tag string, i int) *Node {
	c := &Node{tag: tag, s: n.s, parent: n, attrs: map[string]string{}}
	i = max(0, min(i, len(n.children)))
	n.children = slices.Insert(n.children, i, c)
	return c
}

// SortChildren reorders the children with a stable sort.
func (n *Node) SortChildren(less func(a, b *Node) int) {
	slices.SortStableFunc(n.children, less)
}

// Raise moves the node to the end of its parent's children, drawing it on
// top of its siblings.
func (n *Node) Raise() {
	p := n.parent
	if p == nil {
		return
	}
	i := slices.Index(p.children, n)
	p.children = append(slices.Delete(p.children, i, i+1), n)
}

// Remove detaches the node and cancels the transitions of its subtree.
// Removing twice is a no-op.
func (n *Node) Remove() {
	if n.removed {
		return
	}
	n.walk(func(m *Node) {
		m.removed = true
		if m.s != nil {
			m.s.cancel(m, nil)
		}
	})
	if p := n.parent; p != nil {
		if i := slices.Index(p.children, n); i >= 0 {
			p.children = slices.Delete(p.children, i, i+1)
		}
	}
	n.parent = nil
}

// Clear removes all children.
func (n *Node) Clear() {
	for _, c := range slices.Clone(n.children) {
		c.Remove()
	}
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

// Attr returns an attribute value.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// Float returns an attribute parsed as a number. Missing or non-numeric
// attributes yield NaN.
func (n *Node) Float(name string) float64 {
	v, ok := n.attrs[name]
	if !ok {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// SetAttr sets an attribute immediately, interrupting any transition of
// the same attribute.
func (n *Node) SetAttr(name, value string) *Node {
	if n.s != nil {
		n.s.cancel(n, []string{name})
	}
	n.attrs[name] = value
	return n
}

// SetFloat is SetAttr for numbers.
func (n *Node) SetFloat(name string, v float64) *Node {
	return n.SetAttr(name, FormatFloat(v))
}

// DelAttr removes an attribute.
func (n *Node) DelAttr(name string) *Node {
	if n.s != nil {
		n.s.cancel(n, []string{name})
	}
	delete(n.attrs, name)
	return n
}

// Attrs returns the attribute names in sorted order.
func (n *Node) Attrs() []string {
	names := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// SetText sets the character data of the element.
func (n *Node) SetText(s string) *Node {
	n.text = s
	return n
}

// Text returns the character data of the element.
func (n *Node) Text() string { return n.text }

// Find returns the first node in the subtree whose id attribute equals id.
func (n *Node) Find(id string) *Node {
	if n.attrs["id"] == id {
		return n
	}
	for _, c := range n.children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// Transition starts an attribute transition on n. A zero or negative
// duration applies values immediately.
func (n *Node) Transition(d time.Duration, ease Easing) *Transition {
	if ease == nil {
		ease = CubicInOut
	}
	return &Transition{node: n, dur: d, ease: ease}
}

// Interrupt stops the transitions of the node's subtree, leaving attributes
// at their current values.
func (n *Node) Interrupt() {
	if n.s == nil {
		return
	}
	n.walk(func(m *Node) { n.s.cancel(m, nil) })
}

// FormatFloat formats an attribute number without exponent notation.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
