package site

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func newElement(a atom.Atom, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

func newText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// empty removes every child of n.
func empty(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// setDisplay sets the display declaration of n's inline style, keeping the
// other declarations.
func setDisplay(n *html.Node, value string) {
	decls := []string{"display: " + value}
	for _, d := range strings.Split(attr(n, "style"), ";") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		prop, _, _ := strings.Cut(d, ":")
		if strings.EqualFold(strings.TrimSpace(prop), "display") {
			continue
		}
		decls = append(decls, d)
	}
	setAttr(n, "style", strings.Join(decls, "; "))
}
