package widget

import (
	"strings"

	"datepick/internal/calendar"
)

// Attr is a single element attribute. Order is preserved when rendering.
type Attr struct {
	Key string
	Val string
}

// Node describes one element of the widget tree. Action is what a click on
// the node dispatches; nil means the node is inert.
type Node struct {
	Tag      string
	ID       string
	Class    string
	Attrs    []Attr
	Text     string
	Action   Msg
	Children []*Node
}

// Msg is a click routed back into the widget.
type Msg interface{ isMsg() }

// NavMsg is a click on one of the header arrows.
type NavMsg struct{ Nav calendar.Nav }

// SelectMsg is a click on a day cell.
type SelectMsg struct{ Day int }

// BackdropMsg is a click on the outer container, outside the grid.
type BackdropMsg struct{}

func (NavMsg) isMsg()      {}
func (SelectMsg) isMsg()   {}
func (BackdropMsg) isMsg() {}

func el(tag, class string, children ...*Node) *Node {
	return &Node{Tag: tag, Class: class, Children: children}
}

// Attr returns the value of an attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasClass reports whether class is one of the node's classes.
func (n *Node) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Class) {
		if c == class {
			return true
		}
	}
	return false
}

// Find returns the first node (depth-first, including n) with the given id.
func (n *Node) Find(id string) *Node {
	if n == nil || id == "" {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// FindByClass returns every descendant (including n) carrying class, in
// document order.
func (n *Node) FindByClass(class string) []*Node {
	var out []*Node
	n.walk(func(x *Node) {
		if x.HasClass(class) {
			out = append(out, x)
		}
	})
	return out
}

// Count returns how many nodes in the subtree satisfy fn.
func (n *Node) Count(fn func(*Node) bool) int {
	c := 0
	n.walk(func(x *Node) {
		if fn(x) {
			c++
		}
	})
	return c
}

func (n *Node) walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// replace swaps the descendant with the given id for repl.
func (n *Node) replace(id string, repl *Node) bool {
	for i, c := range n.Children {
		if c.ID == id {
			n.Children[i] = repl
			return true
		}
		if c.replace(id, repl) {
			return true
		}
	}
	return false
}

// remove detaches the descendant with the given id.
func (n *Node) remove(id string) bool {
	for i, c := range n.Children {
		if c.ID == id {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
		if c.remove(id) {
			return true
		}
	}
	return false
}
