package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/opplan/pkg/domain/plan"
)

// FlowType selects the date at which a material movement takes effect.
type FlowType int

const (
	// FlowStart posts the movement at the plan's start date, the usual
	// shape for consumed components.
	FlowStart FlowType = iota
	// FlowEnd posts the movement at the plan's end date, the usual shape
	// for produced material.
	FlowEnd
)

func (t FlowType) String() string {
	switch t {
	case FlowStart:
		return "start"
	case FlowEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Flow defines a material movement of an operation against a buffer. The
// quantity is per plan unit; a negative quantity consumes, a positive one
// produces.
type Flow struct {
	buffer   *Buffer
	quantity decimal.Decimal
	typ      FlowType
}

// NewFlow creates a flow definition. Attach it to an operation with
// AddFlow.
func NewFlow(buffer *Buffer, qtyPer decimal.Decimal, typ FlowType) *Flow {
	return &Flow{buffer: buffer, quantity: qtyPer, typ: typ}
}

// Verify interface compliance.
var _ plan.Flow = (*Flow)(nil)

// Buffer returns the buffer the flow moves material in or out of.
func (f *Flow) Buffer() *Buffer { return f.buffer }

// QuantityPer returns the signed movement per plan unit.
func (f *Flow) QuantityPer() decimal.Decimal { return f.quantity }

// Type returns when the movement takes effect.
func (f *Flow) Type() FlowType { return f.typ }

// NewFlowPlan accounts this flow for one plan and registers the result on
// the buffer.
func (f *Flow) NewFlowPlan(p *plan.OperationPlan) plan.FlowPlan {
	fp := &FlowPlan{plan: p, flow: f}
	fp.Update()
	f.buffer.addFlowPlan(fp)
	return fp
}

// FlowPlan is the material effect of one plan for one flow: the plan's
// quantity scaled by the flow's per-unit movement, dated at the plan's
// start or end.
type FlowPlan struct {
	plan     *plan.OperationPlan
	flow     *Flow
	quantity decimal.Decimal
	date     time.Time
}

// Verify interface compliance.
var _ plan.FlowPlan = (*FlowPlan)(nil)

// Plan returns the owning plan.
func (fp *FlowPlan) Plan() *plan.OperationPlan { return fp.plan }

// Flow returns the definition this sub-plan accounts for.
func (fp *FlowPlan) Flow() *Flow { return fp.flow }

// Quantity returns the accounted movement.
func (fp *FlowPlan) Quantity() decimal.Decimal { return fp.quantity }

// Date returns the date the movement takes effect.
func (fp *FlowPlan) Date() time.Time { return fp.date }

// Update recomputes the movement from the owning plan's current quantity
// and dates, and marks the buffer changed.
func (fp *FlowPlan) Update() {
	fp.quantity = fp.flow.quantity.Mul(fp.plan.Quantity())
	fp.date = fp.effectiveDate()
	fp.flow.buffer.SetChanged()
}

// Check verifies the stored movement against a recomputation.
func (fp *FlowPlan) Check() error {
	if want := fp.flow.quantity.Mul(fp.plan.Quantity()); !fp.quantity.Equal(want) {
		return fmt.Errorf("flowplan on buffer %s: quantity %s doesn't match plan size (want %s)",
			fp.flow.buffer.Name(), fp.quantity, want)
	}
	if want := fp.effectiveDate(); !fp.date.Equal(want) {
		return fmt.Errorf("flowplan on buffer %s: date %v doesn't match plan dates (want %v)",
			fp.flow.buffer.Name(), fp.date, want)
	}
	return nil
}

// Delete unregisters the movement from the buffer.
func (fp *FlowPlan) Delete() {
	fp.flow.buffer.removeFlowPlan(fp)
}

func (fp *FlowPlan) effectiveDate() time.Time {
	if fp.flow.typ == FlowStart {
		return fp.plan.Start()
	}
	return fp.plan.End()
}
