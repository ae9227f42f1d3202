package headless

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/joeycumines/go-browserfx"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type (
	// VNode is the virtual tree of the headless [Renderer]. A VNode with an
	// empty Tag is a text node.
	VNode struct {
		Tag      string
		Text     string
		Attrs    []Attr
		Children []browserfx.VTree
	}

	// Attr is either a plain attribute or an event handler, see On.
	Attr struct {
		handler *handler
		Name    string
		Value   string
	}

	handler struct {
		decode func(browserfx.Event) (any, bool)
		event  string
		sync   bool
	}

	// Renderer draws [VNode] trees into the document of a [Host]. It is a
	// replacing renderer: every patch rebuilds the subtree under the root.
	Renderer struct {
		host *Host
	}

	// replacement is the only patch the Renderer produces.
	replacement struct {
		tree *VNode
	}

	// rendered tracks the handler listeners a render added to an element,
	// so an in-place update can remove them.
	rendered struct {
		listener *browserfx.Listener
		event    string
	}
)

var _ browserfx.Renderer = (*Renderer)(nil)

// NewRenderer returns a renderer for h.
func NewRenderer(h *Host) *Renderer { return &Renderer{host: h} }

// El builds an element node.
func El(tag string, attrs []Attr, children ...browserfx.VTree) *VNode {
	return &VNode{Tag: tag, Attrs: attrs, Children: children}
}

// Text builds a text node.
func Text(s string) *VNode { return &VNode{Text: s} }

// A builds a plain attribute.
func A(name, value string) Attr { return Attr{Name: name, Value: value} }

// On builds a handler that decodes eventName into a message, drawn on the
// next frame.
func On[Msg any](eventName string, decoder browserfx.Decoder[Msg]) Attr {
	return onEvent(eventName, decoder, false)
}

// OnSync is On, except the message is drawn immediately.
func OnSync[Msg any](eventName string, decoder browserfx.Decoder[Msg]) Attr {
	return onEvent(eventName, decoder, true)
}

func onEvent[Msg any](eventName string, decoder browserfx.Decoder[Msg], sync bool) Attr {
	return Attr{handler: &handler{
		event: eventName,
		sync:  sync,
		decode: func(event browserfx.Event) (any, bool) {
			return browserfx.Decode(decoder, event)
		},
	}}
}

// Virtualize reads the subtree at root. Event listeners are not recovered.
func (x *Renderer) Virtualize(root browserfx.Element) browserfx.VTree {
	e, ok := root.(*Element)
	if !ok || e == nil {
		return nil
	}
	return virtualize(e.node)
}

func virtualize(n *html.Node) *VNode {
	switch n.Type {
	case html.TextNode:
		return Text(n.Data)
	case html.ElementNode:
		v := &VNode{Tag: n.Data}
		for _, a := range n.Attr {
			v.Attrs = append(v.Attrs, A(a.Key, a.Val))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := virtualize(c); child != nil {
				v.Children = append(v.Children, child)
			}
		}
		return v
	default:
		return nil
	}
}

// Diff returns nil if next is prev, otherwise a patch replacing the tree.
func (x *Renderer) Diff(prev, next browserfx.VTree) browserfx.Patch {
	p, _ := prev.(*VNode)
	n, ok := next.(*VNode)
	if !ok || n == nil || p == n {
		return nil
	}
	return replacement{tree: n}
}

// Apply draws patch. If the new tree has the same tag as root, root is
// updated in place, otherwise it is swapped for a new element.
func (x *Renderer) Apply(root browserfx.Element, _ browserfx.VTree, patch browserfx.Patch, dispatch browserfx.Dispatcher) (browserfx.Element, error) {
	e, ok := root.(*Element)
	if !ok || e == nil {
		return nil, fmt.Errorf(`headless: cannot render into %T`, root)
	}
	if patch == nil {
		return e, nil
	}
	p, ok := patch.(replacement)
	if !ok {
		return nil, fmt.Errorf(`headless: unknown patch %T`, patch)
	}
	if p.tree.Tag == `` {
		return nil, errors.New(`headless: root must be an element`)
	}

	doc := e.doc
	if p.tree.Tag == e.node.Data {
		e.unbind()
		for c := e.node.FirstChild; c != nil; c = c.NextSibling {
			doc.forget(c)
		}
		removeChildren(e.node)
		e.node.Attr = nil
		x.fill(e, p.tree, dispatch)
		return e, nil
	}

	parent := e.node.Parent
	if parent == nil {
		return nil, errors.New(`headless: cannot replace a detached root`)
	}
	n := &html.Node{Type: html.ElementNode, Data: p.tree.Tag, DataAtom: atom.Lookup([]byte(p.tree.Tag))}
	parent.InsertBefore(n, e.node)
	parent.RemoveChild(e.node)
	doc.forget(e.node)
	next := doc.element(n)
	x.fill(next, p.tree, dispatch)
	return next, nil
}

// Node builds an element tree from a plain attribute map.
func (x *Renderer) Node(tag string, attrs map[string]string, children []browserfx.VTree) browserfx.VTree {
	v := &VNode{Tag: tag, Children: children}
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		v.Attrs = append(v.Attrs, A(k, attrs[k]))
	}
	return v
}

// fill sets the attributes, handlers and children of e from v.
func (x *Renderer) fill(e *Element, v *VNode, dispatch browserfx.Dispatcher) {
	for _, a := range v.Attrs {
		if a.handler == nil {
			e.node.Attr = append(e.node.Attr, html.Attribute{Key: a.Name, Val: a.Value})
			continue
		}
		e.bind(a.handler, dispatch)
	}
	e.scene[browserfx.Horizontal] = floatAttr(e.node, attrScrollWidth)
	e.scene[browserfx.Vertical] = floatAttr(e.node, attrScrollHeight)
	e.client[browserfx.Horizontal] = floatAttr(e.node, attrClientWidth)
	e.client[browserfx.Vertical] = floatAttr(e.node, attrClientHeight)

	for _, child := range v.Children {
		switch c := child.(type) {
		case *VNode:
			if c == nil {
				continue
			}
			if c.Tag == `` {
				e.node.AppendChild(&html.Node{Type: html.TextNode, Data: c.Text})
				continue
			}
			n := &html.Node{Type: html.ElementNode, Data: c.Tag, DataAtom: atom.Lookup([]byte(c.Tag))}
			e.node.AppendChild(n)
			x.fill(e.doc.element(n), c, dispatch)
		case string:
			e.node.AppendChild(&html.Node{Type: html.TextNode, Data: c})
		case nil:
		default:
			x.host.logger.Warning().
				Limit().
				Str(`type`, fmt.Sprintf(`%T`, child)).
				Log(`skipped unknown child`)
		}
	}
}

func (e *Element) bind(h *handler, dispatch browserfx.Dispatcher) {
	listener := browserfx.NewListener(func(event browserfx.Event) {
		if msg, ok := h.decode(event); ok && dispatch != nil {
			dispatch(msg, h.sync)
		}
	})
	e.AddEventListener(h.event, listener, browserfx.ListenerOptions{})
	e.handlers = append(e.handlers, rendered{listener: listener, event: h.event})
}

func (e *Element) unbind() {
	for _, r := range e.handlers {
		e.RemoveEventListener(r.event, r.listener, browserfx.ListenerOptions{})
	}
	e.handlers = nil
}
