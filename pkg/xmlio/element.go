package xmlio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the wire format for all dates and timestamps.
const DateFormat = time.RFC3339

// Attributes holds the attributes of a start tag.
type Attributes map[string]string

// Get returns the attribute value, or "" when absent.
func (a Attributes) Get(name string) string {
	return a[name]
}

// Element represents one XML element while it is being read. The character
// data accumulates until the end tag fires, at which point the typed
// accessors become meaningful.
type Element struct {
	Name       string
	Attributes Attributes

	text strings.Builder
}

func (e *Element) appendText(data []byte) {
	e.text.Write(data)
}

// Text returns the accumulated character data, trimmed.
func (e *Element) Text() string {
	return strings.TrimSpace(e.text.String())
}

// Date parses the element text as a date.
func (e *Element) Date() (time.Time, error) {
	t, err := time.Parse(DateFormat, e.Text())
	if err != nil {
		return time.Time{}, fmt.Errorf("element %s: invalid date %q: %w", e.Name, e.Text(), err)
	}
	return t, nil
}

// Decimal parses the element text as a decimal number.
func (e *Element) Decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(e.Text())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("element %s: invalid number %q: %w", e.Name, e.Text(), err)
	}
	return d, nil
}

// Bool parses the element text as a boolean. Empty text reads as true so
// that bare marker elements behave like flags.
func (e *Element) Bool() (bool, error) {
	s := e.Text()
	if s == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("element %s: invalid boolean %q: %w", e.Name, s, err)
	}
	return b, nil
}

// Uint parses the element text as an unsigned integer.
func (e *Element) Uint() (uint64, error) {
	v, err := strconv.ParseUint(e.Text(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("element %s: invalid identifier %q: %w", e.Name, e.Text(), err)
	}
	return v, nil
}
