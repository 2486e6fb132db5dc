package xmlio

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// Handler receives element callbacks while a document is read.
//
// BeginElement fires on every child start tag seen by the handler. A handler
// may call Reader.ReadTo from inside BeginElement to delegate the subtree of
// that child to another handler.
//
// EndElement fires on every end tag. objectEnd is true when the tag closes
// the element the handler itself was attached to; after that the handler is
// detached and the same end tag is redelivered to the enclosing handler with
// objectEnd false, with PreviousObject reporting the detached handler's
// object.
type Handler interface {
	BeginElement(r *Reader, e *Element) error
	EndElement(r *Reader, e *Element, objectEnd bool) error
}

// ObjectProvider lets a handler expose a domain object distinct from the
// handler value itself through Reader.PreviousObject.
type ObjectProvider interface {
	Object() interface{}
}

type readerFrame struct {
	handler Handler
	object  *Element // end of this element pops the frame; nil for the root
	open    []*Element
}

// Reader drives element handlers over a streaming XML document.
type Reader struct {
	dec        *xml.Decoder
	frames     []*readerFrame
	prevObject interface{}
	delegate   Handler
}

// NewReader creates a reader over the given input.
func NewReader(in io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(in)}
}

// ReadTo delegates the subtree of the element currently passed to
// BeginElement to the given handler. Only valid during BeginElement.
func (r *Reader) ReadTo(h Handler) {
	r.delegate = h
}

// PreviousObject returns the object of the handler that most recently
// finished, for the enclosing handler to pick up on the redelivered end tag.
func (r *Reader) PreviousObject() interface{} {
	return r.prevObject
}

func (r *Reader) top() *readerFrame {
	return r.frames[len(r.frames)-1]
}

// Run reads the document to completion, dispatching to root and any
// delegated handlers.
func (r *Reader) Run(root Handler) error {
	r.frames = []*readerFrame{{handler: root}}
	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading XML input")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e := &Element{Name: t.Name.Local, Attributes: startAttributes(t)}
			f := r.top()
			f.open = append(f.open, e)
			r.delegate = nil
			if err := f.handler.BeginElement(r, e); err != nil {
				return err
			}
			if r.delegate != nil {
				f.open = f.open[:len(f.open)-1]
				r.frames = append(r.frames, &readerFrame{
					handler: r.delegate,
					object:  e,
					open:    []*Element{e},
				})
				r.delegate = nil
			}
		case xml.CharData:
			f := r.top()
			if n := len(f.open); n > 0 {
				f.open[n-1].appendText(t)
			}
		case xml.EndElement:
			f := r.top()
			n := len(f.open)
			if n == 0 {
				continue
			}
			e := f.open[n-1]
			f.open = f.open[:n-1]
			objectEnd := f.object != nil && e == f.object
			if err := f.handler.EndElement(r, e, objectEnd); err != nil {
				return err
			}
			if objectEnd {
				if p, ok := f.handler.(ObjectProvider); ok {
					r.prevObject = p.Object()
				} else {
					r.prevObject = f.handler
				}
				r.frames = r.frames[:len(r.frames)-1]
				if err := r.top().handler.EndElement(r, e, false); err != nil {
					return err
				}
			}
		}
	}
}

func startAttributes(t xml.StartElement) Attributes {
	if len(t.Attr) == 0 {
		return nil
	}
	a := make(Attributes, len(t.Attr))
	for _, at := range t.Attr {
		a[at.Name.Local] = at.Value
	}
	return a
}

// Discard is a handler that skips an entire subtree.
type Discard struct{}

// BeginElement ignores the child element.
func (Discard) BeginElement(*Reader, *Element) error { return nil }

// EndElement ignores the end tag.
func (Discard) EndElement(*Reader, *Element, bool) error { return nil }
