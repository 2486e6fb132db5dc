package plan

import (
	"io"
	"strconv"

	"github.com/vsinha/opplan/pkg/xmlio"
)

// Element names of the external representation.
const (
	tagPlan           = "plan"
	tagOperationPlans = "operationplans"
	tagOperationPlan  = "operationplan"
	tagID             = "id"
	tagOperation      = "operation"
	tagDemand         = "demand"
	tagStart          = "start"
	tagEnd            = "end"
	tagQuantity       = "quantity"
	tagLocked         = "locked"
	tagEPST           = "epst"
	tagLPST           = "lpst"
	tagOwner          = "owner"
	tagAction         = "action"
	tagName           = "name"
)

// decodePlanAttributes turns a start tag's attributes into the factory's
// attribute bundle.
func decodePlanAttributes(attrs xmlio.Attributes) (PlanAttributes, error) {
	var pa PlanAttributes
	action, err := DecodeAction(attrs.Get(tagAction))
	if err != nil {
		return pa, err
	}
	pa.Action = action
	pa.Operation = attrs.Get(tagOperation)
	if raw := attrs.Get(tagID); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return pa, dataErrorf("invalid operationplan identifier '%s'", raw)
		}
		pa.ID = id
	}
	return pa, nil
}

// ReadPlans reads an operation-plan document, applying every contained plan
// through the factory.
func ReadPlans(in io.Reader, f *Factory) error {
	return xmlio.NewReader(in).Run(&planDocument{factory: f})
}

// planDocument handles the document envelope and hands each operationplan
// element to the factory.
type planDocument struct {
	factory *Factory
}

func (d *planDocument) BeginElement(r *xmlio.Reader, e *xmlio.Element) error {
	if e.Name != tagOperationPlan {
		return nil
	}
	attrs, err := decodePlanAttributes(e.Attributes)
	if err != nil {
		return err
	}
	p, err := d.factory.CreateOperationPlan(attrs)
	if err != nil {
		return err
	}
	if p == nil {
		// A remove action leaves nothing to read into.
		r.ReadTo(xmlio.Discard{})
		return nil
	}
	r.ReadTo(&planElementHandler{plan: p, factory: d.factory})
	return nil
}

func (d *planDocument) EndElement(*xmlio.Reader, *xmlio.Element, bool) error {
	return nil
}

// planElementHandler is the read side of the serialization bridge for one
// operation plan.
type planElementHandler struct {
	plan    *OperationPlan
	factory *Factory
}

// Object exposes the plan to the enclosing handler once this element ends.
func (h *planElementHandler) Object() interface{} { return h.plan }

func (h *planElementHandler) BeginElement(r *xmlio.Reader, e *xmlio.Element) error {
	switch e.Name {
	case tagDemand:
		d := h.factory.FindDemand(e.Attributes.Get(tagName))
		if d == nil {
			return dataErrorf("demand '%s' doesn't exist", e.Attributes.Get(tagName))
		}
		r.ReadTo(demandRef{demand: d})
	case tagOwner:
		attrs, err := decodePlanAttributes(e.Attributes)
		if err != nil {
			return err
		}
		o, err := h.factory.CreateOperationPlan(attrs)
		if err != nil {
			return err
		}
		r.ReadTo(&planElementHandler{plan: o, factory: h.factory})
	}
	return nil
}

func (h *planElementHandler) EndElement(r *xmlio.Reader, e *xmlio.Element, objectEnd bool) error {
	// The dispatch is ordered more or less by expected element frequency.
	// The id and operation attributes were already consumed when the plan
	// was created.
	if !objectEnd {
		switch e.Name {
		case tagQuantity:
			v, err := e.Decimal()
			if err != nil {
				return err
			}
			h.plan.quantity = v
		case tagStart:
			d, err := e.Date()
			if err != nil {
				return err
			}
			h.plan.dates.Start = d
		case tagEnd:
			d, err := e.Date()
			if err != nil {
				return err
			}
			h.plan.dates.End = d
		case tagOwner:
			if o, ok := r.PreviousObject().(*OperationPlan); ok {
				h.plan.SetOwner(o)
			}
		case tagDemand:
			d, ok := r.PreviousObject().(Demand)
			if !ok {
				return logicErrorf("incorrect object type during read operation")
			}
			d.AddDelivery(h.plan)
		case tagLocked:
			b, err := e.Bool()
			if err != nil {
				return err
			}
			h.plan.SetLocked(b)
		case tagEPST:
			t, err := e.Date()
			if err != nil {
				return err
			}
			h.plan.epst = t
		case tagLPST:
			t, err := e.Date()
			if err != nil {
				return err
			}
			h.plan.lpst = t
		}
		return nil
	}

	// End of the plan's own element. The empty flow and load collections
	// separate newly read plans from changes to initialized ones.
	if len(h.plan.flowPlans) == 0 && len(h.plan.loadPlans) == 0 {
		h.plan.runUpdate = true
		if err := h.plan.Initialize(); err != nil {
			h.factory.ReleaseWriteLock(h.plan)
			return err
		}
	}
	h.factory.ReleaseWriteLock(h.plan)
	return nil
}

// demandRef is the read-through handler for a nested demand element.
type demandRef struct {
	demand Demand
}

func (d demandRef) Object() interface{} { return d.demand }

func (demandRef) BeginElement(*xmlio.Reader, *xmlio.Element) error { return nil }

func (demandRef) EndElement(*xmlio.Reader, *xmlio.Element, bool) error { return nil }

// WriteElement is the write side of the serialization bridge. Plans of
// hidden operations are skipped; in reference mode only the identifying
// attributes are emitted.
func (p *OperationPlan) WriteElement(w *xmlio.Writer, tag string, mode xmlio.Mode) {
	if p.operation.Hidden() {
		return
	}

	refAttrs := []xmlio.Attr{
		{Name: tagID, Value: formatID(p.id)},
		{Name: tagOperation, Value: p.operation.Name()},
	}
	if mode == xmlio.ModeReference {
		w.WriteRef(tag, refAttrs...)
		return
	}

	if mode != xmlio.ModeNoHeader {
		w.BeginObject(p, tag, refAttrs...)
	}

	// The demand reference is only written when this element is not itself
	// part of a demand-with-deliveries container, to keep the output
	// acyclic.
	if p.demand != nil {
		if _, insideDemand := w.ParentObject().(Demand); !insideDemand {
			w.WriteRef(tagDemand, xmlio.Attr{Name: tagName, Value: p.demand.Name()})
		}
	}

	w.WriteDate(tagStart, p.dates.Start)
	w.WriteDate(tagEnd, p.dates.End)
	w.WriteDecimal(tagQuantity, p.quantity)
	if p.locked {
		w.WriteBool(tagLocked, true)
	}
	w.WriteDate(tagEPST, p.epst)
	w.WriteDate(tagLPST, p.lpst)
	if p.owner != nil {
		p.owner.WriteElement(w, tagOwner, xmlio.ModeReference)
	}

	if mode != xmlio.ModeNoHeader {
		w.EndObject(tag)
	}
}

// WritePlans writes every registered plan, top-level plans first so that
// owner references resolve against plans already read back.
func WritePlans(out io.Writer) error {
	w := xmlio.NewWriter(out)
	w.BeginObject(nil, tagPlan)
	w.BeginObject(nil, tagOperationPlans)
	plans := RegisteredPlans()
	for _, p := range plans {
		if p.owner == nil {
			p.WriteElement(w, tagOperationPlan, xmlio.ModeDefault)
		}
	}
	for _, p := range plans {
		if p.owner != nil {
			p.WriteElement(w, tagOperationPlan, xmlio.ModeDefault)
		}
	}
	w.EndObject(tagOperationPlans)
	w.EndObject(tagPlan)
	return w.Flush()
}
