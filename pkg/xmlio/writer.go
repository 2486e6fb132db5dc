package xmlio

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// Mode selects how an object serializes itself.
type Mode int

const (
	// ModeDefault writes the full element with all fields.
	ModeDefault Mode = iota
	// ModeReference writes only the identifying attributes, self-closed.
	ModeReference
	// ModeNoHeader writes the fields without the enclosing start/end tags,
	// for callers that already opened the object element themselves.
	ModeNoHeader
)

// Attr is a name/value attribute pair on a start tag.
type Attr struct {
	Name  string
	Value string
}

// Writer emits indented XML and tracks the stack of objects being written,
// so nested objects can inspect their enclosing container.
type Writer struct {
	out     *bufio.Writer
	depth   int
	objects []interface{}
	err     error
}

// NewWriter creates a writer over the given output.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(out)}
}

// BeginObject opens an element owned by the given object. The owner may be
// nil for purely structural containers.
func (w *Writer) BeginObject(owner interface{}, name string, attrs ...Attr) {
	w.writeIndent()
	w.raw("<" + name)
	w.writeAttrs(attrs)
	w.raw(">\n")
	w.depth++
	w.objects = append(w.objects, owner)
}

// EndObject closes the innermost open object element.
func (w *Writer) EndObject(name string) {
	w.depth--
	w.objects = w.objects[:len(w.objects)-1]
	w.writeIndent()
	w.raw("</" + name + ">\n")
}

// ParentObject returns the object enclosing the one currently being
// written, or nil at the top of the document.
func (w *Writer) ParentObject() interface{} {
	if len(w.objects) < 2 {
		return nil
	}
	return w.objects[len(w.objects)-2]
}

// WriteTag writes a simple <name>text</name> element.
func (w *Writer) WriteTag(name, text string) {
	w.writeIndent()
	w.raw("<" + name + ">")
	w.escaped(text)
	w.raw("</" + name + ">\n")
}

// WriteRef writes a self-closing element carrying only attributes.
func (w *Writer) WriteRef(name string, attrs ...Attr) {
	w.writeIndent()
	w.raw("<" + name)
	w.writeAttrs(attrs)
	w.raw("/>\n")
}

// WriteDate writes a date element, skipping unset (zero) dates.
func (w *Writer) WriteDate(name string, t time.Time) {
	if t.IsZero() {
		return
	}
	w.WriteTag(name, t.Format(DateFormat))
}

// WriteDecimal writes a numeric element.
func (w *Writer) WriteDecimal(name string, d decimal.Decimal) {
	w.WriteTag(name, d.String())
}

// WriteBool writes a boolean element.
func (w *Writer) WriteBool(name string, b bool) {
	w.WriteTag(name, fmt.Sprintf("%t", b))
}

// Flush writes any buffered output and reports the first error seen.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.out.Flush()
}

func (w *Writer) writeAttrs(attrs []Attr) {
	for _, a := range attrs {
		w.raw(" " + a.Name + `="`)
		w.escaped(a.Value)
		w.raw(`"`)
	}
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.depth; i++ {
		w.raw("  ")
	}
}

func (w *Writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.out.WriteString(s)
}

func (w *Writer) escaped(s string) {
	if w.err != nil {
		return
	}
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		w.err = err
		return
	}
	_, w.err = w.out.Write(buf.Bytes())
}
