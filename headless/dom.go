package headless

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joeycumines/go-browserfx"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Geometry attributes read from the initial document, since a headless host
// performs no layout.
const (
	attrScrollWidth  = `data-scroll-width`
	attrScrollHeight = `data-scroll-height`
	attrClientWidth  = `data-client-width`
	attrClientHeight = `data-client-height`
)

type (
	// Document is the headless document: a parsed HTML tree plus an identity
	// map of the elements handed out for it. It MUST only be used on the
	// loop goroutine.
	Document struct {
		eventTarget
		root     *html.Node
		elements map[*html.Node]*Element
		active   *Element
	}

	// Element wraps one element node of a [Document].
	Element struct {
		eventTarget
		doc      *Document
		node     *html.Node
		handlers []rendered
		scroll   [2]float64
		scene    [2]float64
		client   [2]float64
	}
)

var (
	_ browserfx.Document = (*Document)(nil)
	_ browserfx.Element  = (*Element)(nil)
)

func newDocument(host *Host, src string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf(`headless: parse document: %w`, err)
	}
	d := &Document{
		eventTarget: newEventTarget(host, `document`),
		root:        root,
		elements:    make(map[*html.Node]*Element),
	}
	if d.find(func(n *html.Node) bool { return n.DataAtom == atom.Body }) == nil {
		return nil, errors.New(`headless: document has no body`)
	}
	return d, nil
}

// Root returns the underlying document node.
func (d *Document) Root() *html.Node { return d.root }

// GetElementByID returns the first element whose id attribute is id.
func (d *Document) GetElementByID(id string) (browserfx.Element, bool) {
	if e := d.ElementByID(id); e != nil {
		return e, true
	}
	return nil, false
}

// ElementByID is GetElementByID returning the concrete type, or nil.
func (d *Document) ElementByID(id string) *Element {
	if id == `` {
		return nil
	}
	n := d.find(func(n *html.Node) bool {
		v, ok := attr(n, `id`)
		return ok && v == id
	})
	if n == nil {
		return nil
	}
	return d.element(n)
}

func (d *Document) Body() browserfx.Element { return d.BodyElement() }

// BodyElement is Body returning the concrete type.
func (d *Document) BodyElement() *Element {
	return d.element(d.find(func(n *html.Node) bool { return n.DataAtom == atom.Body }))
}

// ActiveElement returns the focused element, or nil.
func (d *Document) ActiveElement() *Element { return d.active }

func (d *Document) Title() string {
	n := d.find(func(n *html.Node) bool { return n.DataAtom == atom.Title })
	if n == nil {
		return ``
	}
	return textContent(n)
}

// SetTitle replaces the title text, creating the title element if needed.
func (d *Document) SetTitle(title string) {
	n := d.find(func(n *html.Node) bool { return n.DataAtom == atom.Title })
	if n == nil {
		head := d.find(func(n *html.Node) bool { return n.DataAtom == atom.Head })
		if head == nil {
			return
		}
		n = &html.Node{Type: html.ElementNode, DataAtom: atom.Title, Data: `title`}
		head.AppendChild(n)
	}
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: title})
}

// HTML renders the whole document.
func (d *Document) HTML() string {
	var sb strings.Builder
	if err := html.Render(&sb, d.root); err != nil {
		return ``
	}
	return sb.String()
}

func (d *Document) find(match func(*html.Node) bool) *html.Node {
	return findNode(d.root, match)
}

// element returns the wrapper for n, creating it on first use.
func (d *Document) element(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if e, ok := d.elements[n]; ok {
		return e
	}
	e := &Element{
		eventTarget: newEventTarget(d.host, describe(n)),
		doc:         d,
		node:        n,
	}
	e.scene[browserfx.Horizontal] = floatAttr(n, attrScrollWidth)
	e.scene[browserfx.Vertical] = floatAttr(n, attrScrollHeight)
	e.client[browserfx.Horizontal] = floatAttr(n, attrClientWidth)
	e.client[browserfx.Vertical] = floatAttr(n, attrClientHeight)
	d.elements[n] = e
	return e
}

// forget drops the wrappers of a detached subtree.
func (d *Document) forget(n *html.Node) {
	walk(n, func(c *html.Node) bool {
		if e, ok := d.elements[c]; ok {
			if d.active == e {
				d.active = nil
			}
			delete(d.elements, c)
		}
		return false
	})
}

// Node returns the underlying element node.
func (e *Element) Node() *html.Node { return e.node }

func (e *Element) ID() string {
	v, _ := attr(e.node, `id`)
	return v
}

// Attr returns the value of an attribute.
func (e *Element) Attr(name string) (string, bool) { return attr(e.node, name) }

// Text returns the text content of the element.
func (e *Element) Text() string { return textContent(e.node) }

// HTML renders the element.
func (e *Element) HTML() string {
	var sb strings.Builder
	if err := html.Render(&sb, e.node); err != nil {
		return ``
	}
	return sb.String()
}

// Focused reports whether the element is the document's active element.
func (e *Element) Focused() bool { return e.doc.active == e }

// Call supports the focus, blur and click methods. Focus changes dispatch
// focus and blur events, click dispatches a click event.
func (e *Element) Call(method string) error {
	switch method {
	case `focus`:
		if prev := e.doc.active; prev != e {
			if prev != nil {
				prev.blur()
			}
			e.doc.active = e
			e.DispatchEvent(NewUncancelableEvent(`focus`, nil))
		}
	case `blur`:
		if e.doc.active == e {
			e.blur()
		}
	case `click`:
		e.DispatchEvent(NewEvent(`click`, nil))
	default:
		return fmt.Errorf(`%w: %s`, browserfx.ErrUnsupportedMethod, method)
	}
	return nil
}

func (e *Element) blur() {
	e.doc.active = nil
	e.DispatchEvent(NewUncancelableEvent(`blur`, nil))
}

func (e *Element) ScrollOffset(axis browserfx.Axis) float64 {
	if !validAxis(axis) {
		return 0
	}
	return e.scroll[axis]
}

// SetScrollOffset clamps offset to [0, ScrollMax], then dispatches a scroll
// event if the offset changed.
func (e *Element) SetScrollOffset(axis browserfx.Axis, offset float64) {
	if !validAxis(axis) {
		return
	}
	offset = max(0, min(offset, e.ScrollMax(axis)))
	if offset == e.scroll[axis] {
		return
	}
	e.scroll[axis] = offset
	e.DispatchEvent(NewUncancelableEvent(`scroll`, browserfx.Scroll{
		X: e.scroll[browserfx.Horizontal],
		Y: e.scroll[browserfx.Vertical],
	}))
}

func (e *Element) ScrollMax(axis browserfx.Axis) float64 {
	if !validAxis(axis) {
		return 0
	}
	return max(0, e.scene[axis]-e.client[axis])
}

// SetGeometry sets the scrollable scene and the client (visible) size,
// clamping the current offsets.
func (e *Element) SetGeometry(sceneWidth, sceneHeight, clientWidth, clientHeight float64) {
	e.scene = [2]float64{sceneWidth, sceneHeight}
	e.client = [2]float64{clientWidth, clientHeight}
	for _, axis := range [...]browserfx.Axis{browserfx.Horizontal, browserfx.Vertical} {
		e.scroll[axis] = max(0, min(e.scroll[axis], e.ScrollMax(axis)))
	}
}

func (e *Element) Viewport() browserfx.Viewport {
	var v browserfx.Viewport
	v.Scene.Width = e.scene[browserfx.Horizontal]
	v.Scene.Height = e.scene[browserfx.Vertical]
	v.Viewport.X = e.scroll[browserfx.Horizontal]
	v.Viewport.Y = e.scroll[browserfx.Vertical]
	v.Viewport.Width = e.client[browserfx.Horizontal]
	v.Viewport.Height = e.client[browserfx.Vertical]
	return v
}

func validAxis(axis browserfx.Axis) bool {
	return axis == browserfx.Horizontal || axis == browserfx.Vertical
}

func attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return ``, false
	}
	for _, a := range n.Attr {
		if a.Namespace == `` && a.Key == name {
			return a.Val, true
		}
	}
	return ``, false
}

func floatAttr(n *html.Node, name string) float64 {
	v, ok := attr(n, name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func describe(n *html.Node) string {
	if id, ok := attr(n, `id`); ok {
		return n.Data + `#` + id
	}
	return n.Data
}

// walk visits n and its descendants depth first, in document order, until
// visit returns true.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if visit(n) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if walk(c, visit) {
			return true
		}
	}
	return false
}

func findNode(root *html.Node, match func(*html.Node) bool) (found *html.Node) {
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			found = n
			return true
		}
		return false
	})
	return found
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return false
	})
	return sb.String()
}

func removeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}
