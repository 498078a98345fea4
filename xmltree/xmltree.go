// Package xmltree adapts the etree XML library to the TreeReader interface
// the metadata model consumes. Only the attributed-tree view the parser
// needs is exposed; the tokenizer itself stays an external collaborator.
package xmltree

import (
	"io"

	"github.com/beevik/etree"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
)

// Node wraps one etree element as a TreeReader.
type Node struct {
	el *etree.Element
}

var _ fmuruntime.TreeReader = (*Node)(nil)

// Parse reads an XML document and returns its root element.
func Parse(r io.Reader) (*Node, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "read XML document")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.ParseFailed(nil, "document has no root element")
	}
	return &Node{el: root}, nil
}

// ParseFile reads an XML document from disk and returns its root element.
func ParseFile(path string) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "read "+path)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.ParseFailed(nil, "document has no root element")
	}
	return &Node{el: root}, nil
}

// Name returns the element tag.
func (n *Node) Name() string {
	return n.el.Tag
}

// Attr returns an attribute value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	a := n.el.SelectAttr(name)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// Children returns all child elements in document order.
func (n *Node) Children() []fmuruntime.TreeReader {
	elems := n.el.ChildElements()
	out := make([]fmuruntime.TreeReader, len(elems))
	for i, el := range elems {
		out[i] = &Node{el: el}
	}
	return out
}

// FirstChild returns the first child element with the given tag, or nil.
func (n *Node) FirstChild(name string) fmuruntime.TreeReader {
	el := n.el.SelectElement(name)
	if el == nil {
		return nil
	}
	return &Node{el: el}
}
