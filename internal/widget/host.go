package widget

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("element not found")
	ErrDuplicateID = errors.New("duplicate element id")
)

// Host is the document a widget mounts into. Implementations translate the
// three mutations into whatever their surface needs (an in-memory tree, DOM
// patches pushed to a browser).
type Host interface {
	Append(n *Node) error
	Replace(id string, n *Node) error
	Remove(id string) error
}

// Document is an in-memory Host rooted at a body element.
type Document struct {
	Body *Node
}

func NewDocument() *Document {
	return &Document{Body: &Node{Tag: "body"}}
}

func (d *Document) Append(n *Node) error {
	if n == nil {
		return nil
	}
	if n.ID != "" && d.Body.Find(n.ID) != nil {
		return fmt.Errorf("append #%s: %w", n.ID, ErrDuplicateID)
	}
	d.Body.Children = append(d.Body.Children, n)
	return nil
}

func (d *Document) Replace(id string, n *Node) error {
	if !d.Body.replace(id, n) {
		return fmt.Errorf("replace #%s: %w", id, ErrNotFound)
	}
	return nil
}

func (d *Document) Remove(id string) error {
	if !d.Body.remove(id) {
		return fmt.Errorf("remove #%s: %w", id, ErrNotFound)
	}
	return nil
}

func (d *Document) Find(id string) *Node { return d.Body.Find(id) }

func (d *Document) FindByClass(class string) []*Node { return d.Body.FindByClass(class) }

// Click returns the message a click on n dispatches. Clicks bubble the way
// they do in a browser: an inert node hands the click to its nearest ancestor
// with an action, except that nodes inside the picker panel never reach the
// backdrop.
func (d *Document) Click(n *Node) Msg {
	path := d.pathTo(n)
	for i := len(path) - 1; i >= 0; i-- {
		x := path[i]
		if x.HasClass(panelClass) {
			return nil
		}
		if x.Action != nil {
			return x.Action
		}
	}
	return nil
}

func (d *Document) pathTo(target *Node) []*Node {
	var path []*Node
	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		path = append(path, n)
		if n == target {
			return true
		}
		for _, c := range n.Children {
			if visit(c) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if target == nil || !visit(d.Body) {
		return nil
	}
	return path
}
