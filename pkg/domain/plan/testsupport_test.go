package plan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// resetState gives each test a fresh registry, wall clock and silent
// logger.
func resetState(t *testing.T) {
	t.Helper()
	ResetRegistry()
	SetClock(nil)
	SetLogger(nil)
	t.Cleanup(func() {
		ResetRegistry()
		SetClock(nil)
		SetLogger(nil)
	})
}

// testOperation is an in-memory operation for testing the plan core
// without the entities package.
type testOperation struct {
	name         string
	hidden       bool
	kind         Kind
	duration     time.Duration
	subs         []Operation
	flows        []Flow
	loads        []Load
	sizeMinimum  decimal.Decimal
	sizeMultiple decimal.Decimal
	changed      int
}

func newTestOperation(name string, duration time.Duration) *testOperation {
	return &testOperation{name: name, kind: KindSimple, duration: duration}
}

func (o *testOperation) Name() string                 { return o.name }
func (o *testOperation) Hidden() bool                 { return o.hidden }
func (o *testOperation) Kind() Kind                   { return o.kind }
func (o *testOperation) SubOperations() []Operation   { return o.subs }
func (o *testOperation) Flows() []Flow                { return o.flows }
func (o *testOperation) Loads() []Load                { return o.loads }
func (o *testOperation) SizeMinimum() decimal.Decimal { return o.sizeMinimum }
func (o *testOperation) SizeMultiple() decimal.Decimal {
	return o.sizeMultiple
}
func (o *testOperation) SetChanged() { o.changed++ }

func (o *testOperation) SetOperationPlanParameters(p *OperationPlan, qty decimal.Decimal, start, end time.Time) {
	switch {
	case !start.IsZero():
		p.SetStartAndEnd(start, start.Add(o.duration))
	case !end.IsZero():
		p.SetStartAndEnd(end.Add(-o.duration), end)
	}
}

func (o *testOperation) CreateOperationPlan(qty decimal.Decimal, start, end time.Time, demand Demand,
	autoRegister bool, owner *OperationPlan, id uint64, runUpdate bool) (*OperationPlan, error) {
	p := NewOperationPlan(o, qty, start, end, demand, owner, id, runUpdate)
	if autoRegister {
		if err := p.Initialize(); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// testDemand is an in-memory demand for testing delivery bookkeeping.
type testDemand struct {
	name       string
	operation  Operation
	deliveries []*OperationPlan
	changed    int
}

func newTestDemand(name string, deliveryOp Operation) *testDemand {
	return &testDemand{name: name, operation: deliveryOp}
}

func (d *testDemand) Name() string                 { return d.name }
func (d *testDemand) DeliveryOperation() Operation { return d.operation }
func (d *testDemand) SetChanged()                  { d.changed++ }

func (d *testDemand) AddDelivery(p *OperationPlan) {
	for _, existing := range d.deliveries {
		if existing == p {
			return
		}
	}
	d.deliveries = append([]*OperationPlan{p}, d.deliveries...)
	p.SetDemand(d)
}

func (d *testDemand) RemoveDelivery(p *OperationPlan) {
	for i, existing := range d.deliveries {
		if existing == p {
			d.deliveries = append(d.deliveries[:i], d.deliveries[i+1:]...)
			return
		}
	}
}

func (d *testDemand) hasDelivery(p *OperationPlan) bool {
	for _, existing := range d.deliveries {
		if existing == p {
			return true
		}
	}
	return false
}

// testFlow and testFlowPlan record sub-plan lifecycle calls.
type testFlow struct {
	plans []*testFlowPlan
}

func (f *testFlow) NewFlowPlan(p *OperationPlan) FlowPlan {
	fp := &testFlowPlan{flow: f, plan: p, quantity: p.Quantity()}
	f.plans = append(f.plans, fp)
	return fp
}

type testFlowPlan struct {
	flow     *testFlow
	plan     *OperationPlan
	quantity decimal.Decimal
	updates  int
	deleted  bool
	checkErr error
}

func (fp *testFlowPlan) Update() {
	fp.quantity = fp.plan.Quantity()
	fp.updates++
}

func (fp *testFlowPlan) Check() error { return fp.checkErr }
func (fp *testFlowPlan) Delete()      { fp.deleted = true }

// testLoad and testLoadPlan mirror the flow doubles for capacity.
type testLoad struct {
	plans []*testLoadPlan
}

func (l *testLoad) NewLoadPlan(p *OperationPlan) LoadPlan {
	lp := &testLoadPlan{load: l, plan: p}
	l.plans = append(l.plans, lp)
	return lp
}

type testLoadPlan struct {
	load    *testLoad
	plan    *OperationPlan
	updates int
	deleted bool
}

func (lp *testLoadPlan) Update()      { lp.updates++ }
func (lp *testLoadPlan) Check() error { return nil }
func (lp *testLoadPlan) Delete()      { lp.deleted = true }

// testLocks counts obtain/release calls and tracks held plans.
type testLocks struct {
	held     map[*OperationPlan]bool
	obtained int
	released int
}

func newTestLocks() *testLocks {
	return &testLocks{held: make(map[*OperationPlan]bool)}
}

func (l *testLocks) ObtainWriteLock(p *OperationPlan) {
	l.held[p] = true
	l.obtained++
}

func (l *testLocks) ReleaseWriteLock(p *OperationPlan) {
	delete(l.held, p)
	l.released++
}

// testBus vetoes the configured signals and records everything raised.
type testBus struct {
	vetoAdd    bool
	vetoRemove bool
	raised     []Signal
}

func (b *testBus) RaiseEvent(p *OperationPlan, sig Signal) bool {
	b.raised = append(b.raised, sig)
	if sig == SignalAdd && b.vetoAdd {
		return false
	}
	if sig == SignalRemove && b.vetoRemove {
		return false
	}
	return true
}

// testFinder resolves operations and demands from maps.
type testFinder struct {
	operations map[string]Operation
	demands    map[string]Demand
}

func newTestFinder() *testFinder {
	return &testFinder{
		operations: make(map[string]Operation),
		demands:    make(map[string]Demand),
	}
}

func (f *testFinder) addOperation(ops ...Operation) {
	for _, o := range ops {
		f.operations[o.Name()] = o
	}
}

func (f *testFinder) FindOperation(name string) Operation {
	op, ok := f.operations[name]
	if !ok {
		return nil
	}
	return op
}

func (f *testFinder) FindDemand(name string) Demand {
	d, ok := f.demands[name]
	if !ok {
		return nil
	}
	return d
}

// fixedClock pins the plan clock for routing initialization tests.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Current() time.Time { return c.now }

func qty(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func date(h int) time.Time {
	return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(h) * time.Hour)
}
