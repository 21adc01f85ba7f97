package widget

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ActionEncoder turns a node's click action into element attributes (for
// example a Datastar data-on-click expression). Nodes without an action are
// never passed to it.
type ActionEncoder func(n *Node) []Attr

// RenderHTML serializes a tree as HTML. Text and attribute values are escaped
// by the html package.
func RenderHTML(w io.Writer, n *Node, enc ActionEncoder) error {
	if n == nil {
		return nil
	}
	return html.Render(w, toHTML(n, enc))
}

// HTML is RenderHTML into a string.
func HTML(n *Node, enc ActionEncoder) (string, error) {
	var b strings.Builder
	if err := RenderHTML(&b, n, enc); err != nil {
		return "", err
	}
	return b.String(), nil
}

func toHTML(n *Node, enc ActionEncoder) *html.Node {
	hn := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	if n.ID != "" {
		hn.Attr = append(hn.Attr, html.Attribute{Key: "id", Val: n.ID})
	}
	if n.Class != "" {
		hn.Attr = append(hn.Attr, html.Attribute{Key: "class", Val: n.Class})
	}
	for _, a := range n.Attrs {
		hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	if n.Action != nil && enc != nil {
		for _, a := range enc(n) {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
	}
	if n.Text != "" {
		hn.AppendChild(&html.Node{Type: html.TextNode, Data: n.Text})
	}
	for _, c := range n.Children {
		hn.AppendChild(toHTML(c, enc))
	}
	return hn
}
