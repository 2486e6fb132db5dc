package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/opplan/pkg/domain/plan"
)

// Operation holds the definition shared by all operation kinds: naming,
// duration, batch-size constraints and the material/capacity definitions.
// Concrete kinds embed it.
type Operation struct {
	name         string
	hidden       bool
	duration     time.Duration
	sizeMinimum  decimal.Decimal
	sizeMultiple decimal.Decimal
	flows        []plan.Flow
	loads        []plan.Load
	changed      bool
}

// Name returns the operation name.
func (o *Operation) Name() string { return o.name }

// Hidden reports whether plans of this operation are excluded from export.
func (o *Operation) Hidden() bool { return o.hidden }

// SetHidden excludes or includes the operation's plans in export.
func (o *Operation) SetHidden(h bool) { o.hidden = h }

// Duration returns the fixed duration of the operation.
func (o *Operation) Duration() time.Duration { return o.duration }

// SizeMinimum returns the minimum batch size, zero when unconstrained.
func (o *Operation) SizeMinimum() decimal.Decimal { return o.sizeMinimum }

// SetSizeMinimum sets the minimum batch size.
func (o *Operation) SetSizeMinimum(d decimal.Decimal) { o.sizeMinimum = d }

// SizeMultiple returns the batch-size multiple, zero when unconstrained.
func (o *Operation) SizeMultiple() decimal.Decimal { return o.sizeMultiple }

// SetSizeMultiple sets the batch-size multiple.
func (o *Operation) SetSizeMultiple(d decimal.Decimal) { o.sizeMultiple = d }

// Flows returns the material-movement definitions of the operation.
func (o *Operation) Flows() []plan.Flow { return o.flows }

// AddFlow attaches a material-movement definition.
func (o *Operation) AddFlow(f plan.Flow) { o.flows = append(o.flows, f) }

// Loads returns the capacity-usage definitions of the operation.
func (o *Operation) Loads() []plan.Load { return o.loads }

// AddLoad attaches a capacity-usage definition.
func (o *Operation) AddLoad(l plan.Load) { o.loads = append(o.loads, l) }

// SetChanged marks the operation for problem re-detection.
func (o *Operation) SetChanged() { o.changed = true }

// Changed reports whether the operation was marked since the last clear.
func (o *Operation) Changed() bool { return o.changed }

// ClearChanged resets the changed mark.
func (o *Operation) ClearChanged() { o.changed = false }

// SetOperationPlanParameters reconciles a plan's dates against the
// operation duration: anchored by start the end follows, anchored by end
// the start precedes. With neither anchor the dates stay untouched.
func (o *Operation) SetOperationPlanParameters(p *plan.OperationPlan, qty decimal.Decimal, start, end time.Time) {
	switch {
	case !start.IsZero():
		p.SetStartAndEnd(start, start.Add(o.duration))
	case !end.IsZero():
		p.SetStartAndEnd(end.Add(-o.duration), end)
	}
}

// newPlan is the shared plan-factory body; self carries the concrete kind.
func newPlan(self plan.Operation, qty decimal.Decimal, start, end time.Time, demand plan.Demand,
	autoRegister bool, owner *plan.OperationPlan, id uint64, runUpdate bool) (*plan.OperationPlan, error) {
	p := plan.NewOperationPlan(self, qty, start, end, demand, owner, id, runUpdate)
	if autoRegister {
		if err := p.Initialize(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// OperationFixedTime is an activity with a fixed duration and no
// sub-operations. Its plans are simple.
type OperationFixedTime struct {
	Operation
}

// NewOperationFixedTime creates a fixed-duration operation.
func NewOperationFixedTime(name string, duration time.Duration) *OperationFixedTime {
	return &OperationFixedTime{Operation: Operation{name: name, duration: duration}}
}

// Kind identifies the plans of this operation as simple.
func (o *OperationFixedTime) Kind() plan.Kind { return plan.KindSimple }

// SubOperations returns nil; a fixed-time operation has no steps.
func (o *OperationFixedTime) SubOperations() []plan.Operation { return nil }

// CreateOperationPlan builds a plan of this operation.
func (o *OperationFixedTime) CreateOperationPlan(qty decimal.Decimal, start, end time.Time, demand plan.Demand,
	autoRegister bool, owner *plan.OperationPlan, id uint64, runUpdate bool) (*plan.OperationPlan, error) {
	return newPlan(o, qty, start, end, demand, autoRegister, owner, id, runUpdate)
}

// OperationRouting chains sub-operations into an ordered sequence. Its
// plans carry one step plan per sub-operation.
type OperationRouting struct {
	Operation
	subs []plan.Operation
}

// NewOperationRouting creates a routing operation.
func NewOperationRouting(name string) *OperationRouting {
	return &OperationRouting{Operation: Operation{name: name}}
}

// AddSubOperation appends a step to the routing. The routing duration is
// the sum of the step durations.
func (o *OperationRouting) AddSubOperation(sub plan.Operation) {
	o.subs = append(o.subs, sub)
	if d, ok := sub.(interface{ Duration() time.Duration }); ok {
		o.duration += d.Duration()
	}
}

// Kind identifies the plans of this operation as routings.
func (o *OperationRouting) Kind() plan.Kind { return plan.KindRouting }

// SubOperations returns the ordered steps.
func (o *OperationRouting) SubOperations() []plan.Operation { return o.subs }

// CreateOperationPlan builds a routing plan.
func (o *OperationRouting) CreateOperationPlan(qty decimal.Decimal, start, end time.Time, demand plan.Demand,
	autoRegister bool, owner *plan.OperationPlan, id uint64, runUpdate bool) (*plan.OperationPlan, error) {
	return newPlan(o, qty, start, end, demand, autoRegister, owner, id, runUpdate)
}

// OperationAlternate offers a preference-ordered choice between
// sub-operations. Its plans wrap a single chosen plan; the first
// alternative is the default.
type OperationAlternate struct {
	Operation
	subs []plan.Operation
}

// NewOperationAlternate creates an alternate operation.
func NewOperationAlternate(name string) *OperationAlternate {
	return &OperationAlternate{Operation: Operation{name: name}}
}

// AddSubOperation appends an alternative, in preference order.
func (o *OperationAlternate) AddSubOperation(sub plan.Operation) {
	o.subs = append(o.subs, sub)
}

// Kind identifies the plans of this operation as alternates.
func (o *OperationAlternate) Kind() plan.Kind { return plan.KindAlternate }

// SubOperations returns the alternatives in preference order.
func (o *OperationAlternate) SubOperations() []plan.Operation { return o.subs }

// CreateOperationPlan builds an alternate plan.
func (o *OperationAlternate) CreateOperationPlan(qty decimal.Decimal, start, end time.Time, demand plan.Demand,
	autoRegister bool, owner *plan.OperationPlan, id uint64, runUpdate bool) (*plan.OperationPlan, error) {
	return newPlan(o, qty, start, end, demand, autoRegister, owner, id, runUpdate)
}

// EffectiveSpan binds a sub-operation to the validity window in which it
// applies. A zero To leaves the window open ended.
type EffectiveSpan struct {
	Sub  plan.Operation
	From time.Time
	To   time.Time
}

// covers reports whether the window contains the date.
func (s EffectiveSpan) covers(d time.Time) bool {
	if d.Before(s.From) {
		return false
	}
	return s.To.IsZero() || !d.After(s.To)
}

// OperationEffective picks a sub-operation by date validity. Its plans wrap
// a single inner plan that callers must supply before initialization.
type OperationEffective struct {
	Operation
	spans []EffectiveSpan
}

// NewOperationEffective creates an effectivity wrapper operation.
func NewOperationEffective(name string) *OperationEffective {
	return &OperationEffective{Operation: Operation{name: name}}
}

// AddSubOperation appends a sub-operation with its validity window.
func (o *OperationEffective) AddSubOperation(sub plan.Operation, from, to time.Time) {
	o.spans = append(o.spans, EffectiveSpan{Sub: sub, From: from, To: to})
}

// EffectiveSub returns the sub-operation whose validity window covers the
// date, or nil.
func (o *OperationEffective) EffectiveSub(d time.Time) plan.Operation {
	for _, s := range o.spans {
		if s.covers(d) {
			return s.Sub
		}
	}
	return nil
}

// Kind identifies the plans of this operation as effective wrappers.
func (o *OperationEffective) Kind() plan.Kind { return plan.KindEffective }

// SubOperations returns the sub-operations of all validity windows.
func (o *OperationEffective) SubOperations() []plan.Operation {
	subs := make([]plan.Operation, len(o.spans))
	for i, s := range o.spans {
		subs[i] = s.Sub
	}
	return subs
}

// CreateOperationPlan builds an effective plan.
func (o *OperationEffective) CreateOperationPlan(qty decimal.Decimal, start, end time.Time, demand plan.Demand,
	autoRegister bool, owner *plan.OperationPlan, id uint64, runUpdate bool) (*plan.OperationPlan, error) {
	return newPlan(o, qty, start, end, demand, autoRegister, owner, id, runUpdate)
}

// Interface compliance checks.
var (
	_ plan.Operation = (*OperationFixedTime)(nil)
	_ plan.Operation = (*OperationRouting)(nil)
	_ plan.Operation = (*OperationAlternate)(nil)
	_ plan.Operation = (*OperationEffective)(nil)
)
