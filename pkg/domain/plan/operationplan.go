package plan

import (
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
)

// DateRange is a start/end pair. A zero time means the bound is unset.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// OperationPlan is an instance of an operation scheduled at a specific time
// and quantity. Plans form a tree: a parent owns its children, children hold
// a non-owning back-reference to the parent. Registered plans additionally
// sit in their operation's intrusive plan list.
type OperationPlan struct {
	id         uint64 // 0 until the plan is registered
	proposedID uint64 // id supplied by input, consumed during Initialize
	operation  Operation
	quantity   decimal.Decimal
	dates      DateRange
	locked     bool
	epst       time.Time
	lpst       time.Time
	owner      *OperationPlan
	demand     Demand
	prev, next *OperationPlan

	flowPlans []FlowPlan
	loadPlans []LoadPlan

	// runUpdate gates cascading updates; it stays false during bulk
	// construction and is enabled by trusted constructors only.
	runUpdate bool

	variant variant
}

// variant is the capability table for the plan kinds. The base node
// dispatches through it wherever behavior differs per kind.
type variant interface {
	addSub(p, child *OperationPlan)
	eraseSub(p, child *OperationPlan)
	setStart(p *OperationPlan, d time.Time)
	setEnd(p *OperationPlan, d time.Time)
	applyQuantity(p *OperationPlan)
	preUpdate(p *OperationPlan)
	initialize(p *OperationPlan) error
	children() []*OperationPlan
	destroyChildren(p *OperationPlan)
}

// NewOperationPlan constructs an unregistered plan for the given operation.
// The operation's parameter solver reconciles the dates, and when an owner
// is given the plan registers itself with it. Call Initialize to assign an
// id and enter the registry.
func NewOperationPlan(op Operation, qty decimal.Decimal, start, end time.Time,
	demand Demand, owner *OperationPlan, id uint64, runUpdate bool) *OperationPlan {
	p := &OperationPlan{
		operation:  op,
		quantity:   qty,
		dates:      DateRange{Start: start, End: end},
		demand:     demand,
		proposedID: id,
		runUpdate:  runUpdate,
	}
	switch op.Kind() {
	case KindRouting:
		p.variant = &routingSubs{}
	case KindAlternate:
		p.variant = &alternateSubs{}
	case KindEffective:
		p.variant = &effectiveSubs{}
	default:
		p.variant = simpleSubs{}
	}
	op.SetOperationPlanParameters(p, qty, start, end)
	if owner != nil {
		p.SetOwner(owner)
	}
	return p
}

// ID returns the plan's identifier, 0 while unregistered.
func (p *OperationPlan) ID() uint64 { return p.id }

// Operation returns the operation that produced the plan.
func (p *OperationPlan) Operation() Operation { return p.operation }

// Quantity returns the planned quantity.
func (p *OperationPlan) Quantity() decimal.Decimal { return p.quantity }

// Dates returns the start/end pair.
func (p *OperationPlan) Dates() DateRange { return p.dates }

// Start returns the start date, zero when unset.
func (p *OperationPlan) Start() time.Time { return p.dates.Start }

// End returns the end date, zero when unset.
func (p *OperationPlan) End() time.Time { return p.dates.End }

// Locked reports whether the plan is frozen against resizing and
// rescheduling.
func (p *OperationPlan) Locked() bool { return p.locked }

// SetLocked freezes or unfreezes the plan.
func (p *OperationPlan) SetLocked(b bool) { p.locked = b }

// EPST returns the earliest plannable start, zero when unset.
func (p *OperationPlan) EPST() time.Time { return p.epst }

// SetEPST sets the earliest plannable start.
func (p *OperationPlan) SetEPST(t time.Time) { p.epst = t }

// LPST returns the latest plannable start, zero when unset.
func (p *OperationPlan) LPST() time.Time { return p.lpst }

// SetLPST sets the latest plannable start.
func (p *OperationPlan) SetLPST(t time.Time) { p.lpst = t }

// Owner returns the parent plan, nil for a top-level plan.
func (p *OperationPlan) Owner() *OperationPlan { return p.owner }

// Demand returns the demand this plan delivers to, nil otherwise.
func (p *OperationPlan) Demand() Demand { return p.demand }

// Next returns the following plan in the owning operation's plan list.
func (p *OperationPlan) Next() *OperationPlan { return p.next }

// Children returns the plan's child plans: the steps of a routing, or the
// single chosen/inner plan of an alternate/effective.
func (p *OperationPlan) Children() []*OperationPlan { return p.variant.children() }

// FlowPlans returns the plan's material sub-plans.
func (p *OperationPlan) FlowPlans() []FlowPlan { return p.flowPlans }

// LoadPlans returns the plan's capacity sub-plans.
func (p *OperationPlan) LoadPlans() []LoadPlan { return p.loadPlans }

// SetStartAndEnd sets both dates directly, without consulting the
// operation's solver and without cascading.
func (p *OperationPlan) SetStartAndEnd(start, end time.Time) {
	p.dates = DateRange{Start: start, End: end}
}

// SetStart moves the plan to start at the given date. Locked plans ignore
// the call.
func (p *OperationPlan) SetStart(d time.Time) {
	if p.locked {
		return
	}
	p.variant.setStart(p, d)
}

// SetEnd moves the plan to end at the given date. Locked plans ignore the
// call.
func (p *OperationPlan) SetEnd(d time.Time) {
	if p.locked {
		return
	}
	p.variant.setEnd(p, d)
}

func (p *OperationPlan) baseSetStart(d time.Time) {
	p.operation.SetOperationPlanParameters(p, p.quantity, d, time.Time{})
	p.afterChange()
}

func (p *OperationPlan) baseSetEnd(d time.Time) {
	p.operation.SetOperationPlanParameters(p, p.quantity, time.Time{}, d)
	p.afterChange()
}

// SetQuantity resizes the plan. Negative quantities are a data error. On a
// child plan the call recurses to the owner: the top plan is the size
// authority, and the variant pushes the rounded size back down. Rounding
// honors the operation's size minimum and size multiple; roundDown selects
// the rounding direction.
func (p *OperationPlan) SetQuantity(f decimal.Decimal, roundDown bool) error {
	// No impact on locked operationplans.
	if p.locked {
		return nil
	}

	if f.IsNegative() {
		return dataErrorf("operationplans can't have negative quantities")
	}

	// Setting a quantity is only allowed on a top operationplan.
	if p.owner != nil {
		return p.owner.SetQuantity(f, roundDown)
	}

	p.applySize(f, roundDown)
	p.variant.applyQuantity(p)
	return nil
}

// applySize computes the rounded size and stores it, then cascades.
func (p *OperationPlan) applySize(f decimal.Decimal, roundDown bool) {
	min := p.operation.SizeMinimum()
	if min.IsPositive() && f.LessThan(min) {
		if roundDown {
			// Smaller than the minimum quantity, rounding down means nothing
			// remains.
			p.quantity = decimal.Zero
			p.afterChange()
			return
		}
		f = min
	}
	if mult := p.operation.SizeMultiple(); mult.IsPositive() {
		n := f.Div(mult)
		if !roundDown {
			n = n.Add(decimal.NewFromFloat(0.999999))
		}
		p.quantity = n.Floor().Mul(mult)
	} else {
		p.quantity = f
	}
	p.afterChange()
}

// afterChange cascades a mutation: a full update when updates are enabled,
// otherwise only the changed marks.
func (p *OperationPlan) afterChange() {
	if p.runUpdate {
		p.Update()
	} else {
		p.SetChanged()
	}
}

// SetOwner re-parents the plan. Setting the same owner twice is a no-op; a
// previous owner is told to erase the plan before the new owner adds it.
func (p *OperationPlan) SetOwner(o *OperationPlan) {
	if p.owner == o {
		return
	}
	if p.owner != nil {
		p.owner.variant.eraseSub(p.owner, p)
	}
	p.owner = o
	if p.owner != nil {
		p.owner.variant.addSub(p.owner, p)
	}
}

// SetDemand links the plan to a demand, detaching it from any previous one.
func (p *OperationPlan) SetDemand(d Demand) {
	if d == p.demand {
		return
	}
	if p.demand != nil {
		p.demand.RemoveDelivery(p)
	}
	p.demand = d
	if d != nil {
		d.SetChanged()
	}
}

// Initialize assigns the plan its identifier, enters it in the registry,
// materializes flow and load sub-plans and registers the plan as a delivery
// when it serves its demand's delivery operation. A top-level plan without
// quantity destroys itself instead.
func (p *OperationPlan) Initialize() error {
	return p.variant.initialize(p)
}

func (p *OperationPlan) baseInitialize() error {
	// At least a valid operation reference must exist.
	if p.operation == nil {
		return logicErrorf("initializing an invalid operationplan")
	}

	// Avoid zero quantity on top operationplans.
	if !p.quantity.IsPositive() && p.owner == nil {
		p.Destroy()
		return nil
	}

	// Having an identifier assigned is an important flag: only registered
	// plans are linked in an operation's plan list and with a demand.
	if err := p.register(); err != nil {
		p.Destroy()
		return err
	}

	// If the lazy creator was used, the flow and load plans have not been
	// built yet.
	p.CreateFlowLoads()

	// Extra registration step if this is a delivery operationplan.
	if p.demand != nil && p.demand.DeliveryOperation() == p.operation {
		p.demand.AddDelivery(p)
	}

	// Mark the operation to re-detect its problems.
	p.operation.SetChanged()

	if err := p.Check(); err != nil {
		return &LogicError{Msg: "operationplan " + strconv.FormatUint(p.id, 10) + " fails its invariants", Err: err}
	}
	return nil
}

// CreateFlowLoads materializes the flow and load sub-plans. The call is
// idempotent: it does nothing when either collection already exists.
func (p *OperationPlan) CreateFlowLoads() {
	if len(p.flowPlans) != 0 || len(p.loadPlans) != 0 {
		return
	}
	for _, l := range p.operation.Loads() {
		p.loadPlans = append(p.loadPlans, l.NewLoadPlan(p))
	}
	for _, f := range p.operation.Flows() {
		p.flowPlans = append(p.flowPlans, f.NewFlowPlan(p))
	}
}

// ResizeFlowLoadPlans refreshes every existing flow and load sub-plan
// without recreating them, and notifies the demand of the changed delivery.
func (p *OperationPlan) ResizeFlowLoadPlans() {
	for _, fp := range p.flowPlans {
		fp.Update()
	}
	for _, lp := range p.loadPlans {
		lp.Update()
	}
	if p.demand != nil {
		p.demand.SetChanged()
	}
}

// Update recomputes the plan after a date or quantity change: the variant
// resyncs the top dates from its children, the flow and load sub-plans are
// resized, the owner chain is updated and the changed marks are set.
func (p *OperationPlan) Update() {
	p.variant.preUpdate(p)
	p.ResizeFlowLoadPlans()
	if p.owner != nil {
		p.owner.Update()
	}
	p.SetChanged()
}

// SetChanged marks the plan's context dirty. A child defers to its owner; a
// top plan marks its operation and, when linked, its demand.
func (p *OperationPlan) SetChanged() {
	if p.owner != nil {
		p.owner.SetChanged()
		return
	}
	p.operation.SetChanged()
	if p.demand != nil {
		p.demand.SetChanged()
	}
}

// Check verifies every flow and load sub-plan, aggregating all failures.
func (p *OperationPlan) Check() error {
	var result *multierror.Error
	for _, fp := range p.flowPlans {
		result = multierror.Append(result, fp.Check())
	}
	for _, lp := range p.loadPlans {
		result = multierror.Append(result, lp.Check())
	}
	return result.ErrorOrNil()
}

// Destroy tears the plan down: sub-plans first, then the children with
// their back-references cleared, then the owner through the
// parent-destroys-through-child chain, and finally, for registered plans
// only, the demand delivery set and the operation's plan list.
func (p *OperationPlan) Destroy() {
	for _, fp := range p.flowPlans {
		fp.Delete()
	}
	p.flowPlans = nil
	for _, lp := range p.loadPlans {
		lp.Delete()
	}
	p.loadPlans = nil

	p.variant.destroyChildren(p)

	if p.owner != nil {
		o := p.owner
		// Detach first, so the owner's teardown no longer sees this plan.
		p.SetOwner(nil)
		o.Destroy()
	}

	// The remaining actions are only required for registered plans; only
	// those are linked in the plan list and with a demand.
	if p.id != 0 {
		if p.demand != nil {
			p.demand.RemoveDelivery(p)
		}
		p.unregister()
	}
}

// simpleSubs is the variant of plans without children.
type simpleSubs struct{}

func (simpleSubs) addSub(p, child *OperationPlan) {
	panic(logicErrorf("operationplan of %s can't own sub operationplans", p.operation.Name()))
}

func (simpleSubs) eraseSub(p, child *OperationPlan)       {}
func (simpleSubs) setStart(p *OperationPlan, d time.Time) { p.baseSetStart(d) }
func (simpleSubs) setEnd(p *OperationPlan, d time.Time)   { p.baseSetEnd(d) }
func (simpleSubs) applyQuantity(p *OperationPlan)         {}
func (simpleSubs) preUpdate(p *OperationPlan)             {}
func (simpleSubs) initialize(p *OperationPlan) error      { return p.baseInitialize() }
func (simpleSubs) children() []*OperationPlan             { return nil }
func (simpleSubs) destroyChildren(p *OperationPlan)       {}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
