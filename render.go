package browserfx

type (
	// VTree is a renderer's virtual node. Its representation belongs to the
	// Renderer.
	VTree any

	// Patch is a renderer's difference between two VTree values.
	Patch any

	// Dispatcher delivers a message raised by a rendered event handler. A
	// sync message is drawn immediately instead of on the next frame.
	Dispatcher func(msg any, sync bool)

	// Renderer turns virtual trees into host nodes. Programs only ever call
	// it from the host loop, inside animator draws.
	Renderer interface {
		// Virtualize reads an existing host node as the starting tree.
		Virtualize(root Element) VTree
		Diff(prev, next VTree) Patch
		// Apply patches root, returning the (possibly replaced) root node.
		Apply(root Element, prev VTree, patch Patch, dispatch Dispatcher) (Element, error)
		// Node builds an element tree, used to wrap document bodies.
		Node(tag string, attrs map[string]string, children []VTree) VTree
	}

	// Page is the view of a document-mode program.
	Page struct {
		Title string
		Body  []VTree
	}
)
