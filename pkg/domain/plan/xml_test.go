package plan

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vsinha/opplan/pkg/xmlio"
)

// planSnapshot is the comparable projection of a plan used by the
// round-trip tests.
type planSnapshot struct {
	ID        uint64
	Operation string
	Start     time.Time
	End       time.Time
	Quantity  string
	Locked    bool
	EPST      time.Time
	LPST      time.Time
	OwnerID   uint64
	Demand    string
}

func snapshot(p *OperationPlan) planSnapshot {
	s := planSnapshot{
		ID:        p.ID(),
		Operation: p.Operation().Name(),
		Start:     p.Start(),
		End:       p.End(),
		Quantity:  p.Quantity().String(),
		Locked:    p.Locked(),
		EPST:      p.EPST(),
		LPST:      p.LPST(),
	}
	if o := p.Owner(); o != nil {
		s.OwnerID = o.ID()
	}
	if d := p.Demand(); d != nil {
		s.Demand = d.Name()
	}
	return s
}

func TestReadPlans_CreatesAndInitializes(t *testing.T) {
	resetState(t)
	f, finder, locks, _ := newTestFactoryEnv(t)
	op := newTestOperation("PACK", time.Hour)
	flow := &testFlow{}
	op.flows = []Flow{flow}
	finder.addOperation(op)

	doc := `<plan><operationplans>
		<operationplan id="7" operation="PACK">
			<start>2026-06-01T08:00:00Z</start>
			<end>2026-06-01T09:00:00Z</end>
			<quantity>12.5</quantity>
			<locked>true</locked>
			<epst>2026-05-30T00:00:00Z</epst>
			<lpst>2026-06-02T00:00:00Z</lpst>
		</operationplan>
	</operationplans></plan>`

	if err := ReadPlans(strings.NewReader(doc), f); err != nil {
		t.Fatalf("ReadPlans failed: %v", err)
	}

	p := FindID(7)
	if p == nil {
		t.Fatal("Expected plan 7 registered")
	}
	want := planSnapshot{
		ID:        7,
		Operation: "PACK",
		Start:     time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC),
		End:       time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		Quantity:  "12.5",
		Locked:    true,
		EPST:      time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC),
		LPST:      time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, snapshot(p)); diff != "" {
		t.Errorf("Plan mismatch (-want +got):\n%s", diff)
	}
	if len(p.FlowPlans()) != 1 {
		t.Error("Expected the flow sub-plans materialized at the object end")
	}
	if len(locks.held) != 0 {
		t.Error("Expected all write locks released after the document")
	}
}

func TestReadPlans_DemandElement(t *testing.T) {
	resetState(t)
	f, finder, _, _ := newTestFactoryEnv(t)
	op := newTestOperation("SHIP", time.Hour)
	finder.addOperation(op)
	d := newTestDemand("ORDER_17", op)
	finder.demands["ORDER_17"] = d

	doc := `<plan><operationplans>
		<operationplan operation="SHIP">
			<quantity>4</quantity>
			<start>2026-06-01T08:00:00Z</start>
			<demand name="ORDER_17"/>
		</operationplan>
	</operationplans></plan>`

	if err := ReadPlans(strings.NewReader(doc), f); err != nil {
		t.Fatalf("ReadPlans failed: %v", err)
	}

	if len(d.deliveries) != 1 {
		t.Fatalf("Expected one delivery on the demand, got %d", len(d.deliveries))
	}
	p := d.deliveries[0]
	if p.Demand() != Demand(d) {
		t.Error("Expected the plan linked back to the demand")
	}
	if p.ID() == 0 {
		t.Error("Expected the plan registered")
	}
}

func TestReadPlans_UnknownDemand(t *testing.T) {
	resetState(t)
	f, finder, _, _ := newTestFactoryEnv(t)
	finder.addOperation(newTestOperation("SHIP", time.Hour))

	doc := `<plan><operationplans>
		<operationplan operation="SHIP"><demand name="NOWHERE"/></operationplan>
	</operationplans></plan>`

	err := ReadPlans(strings.NewReader(doc), f)
	if !errors.Is(err, ErrData) {
		t.Fatalf("Expected ErrData for an unknown demand, got: %v", err)
	}
}

func TestReadPlans_OwnerElement(t *testing.T) {
	resetState(t)
	f, finder, _, _ := newTestFactoryEnv(t)
	wrap := newTestOperation("WRAP", time.Hour)
	wrap.kind = KindAlternate
	inner := newTestOperation("INNER", time.Hour)
	wrap.subs = []Operation{inner}
	finder.addOperation(wrap, inner)

	// The owner exists already; the child element binds to it by reference.
	owner := registerPlan(t, f, PlanAttributes{Operation: "WRAP", ID: 3})

	doc := `<plan><operationplans>
		<operationplan id="9" operation="INNER">
			<quantity>5</quantity>
			<start>2026-06-01T08:00:00Z</start>
			<owner id="3" operation="WRAP"/>
		</operationplan>
	</operationplans></plan>`

	if err := ReadPlans(strings.NewReader(doc), f); err != nil {
		t.Fatalf("ReadPlans failed: %v", err)
	}

	child := FindID(9)
	if child == nil {
		t.Fatal("Expected plan 9 registered")
	}
	if child.Owner() != owner {
		t.Error("Expected the child bound to the pre-existing owner")
	}
	found := false
	for _, c := range owner.Children() {
		if c == child {
			found = true
		}
	}
	if !found {
		t.Error("Expected the child in the owner's child collection")
	}
}

func TestReadPlans_Remove(t *testing.T) {
	resetState(t)
	f, finder, _, _ := newTestFactoryEnv(t)
	finder.addOperation(newTestOperation("PACK", time.Hour))
	registerPlan(t, f, PlanAttributes{Operation: "PACK", ID: 42})

	doc := `<plan><operationplans>
		<operationplan id="42" action="remove"/>
	</operationplans></plan>`

	if err := ReadPlans(strings.NewReader(doc), f); err != nil {
		t.Fatalf("ReadPlans failed: %v", err)
	}
	if FindID(42) != nil {
		t.Error("Expected plan 42 removed")
	}
}

func TestWritePlans_RoundTrip(t *testing.T) {
	resetState(t)
	f, finder, _, _ := newTestFactoryEnv(t)
	op := newTestOperation("PACK", time.Hour)
	finder.addOperation(op)
	d := newTestDemand("ORDER_17", op)
	finder.demands["ORDER_17"] = d

	p, err := f.CreateOperationPlan(PlanAttributes{Operation: "PACK", ID: 7})
	if err != nil {
		t.Fatalf("CreateOperationPlan failed: %v", err)
	}
	if err := p.SetQuantity(qty(12), false); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	p.SetStart(date(8))
	p.SetEPST(date(1))
	p.SetLPST(date(40))
	p.SetLocked(true)
	p.SetDemand(d)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	f.ReleaseWriteLock(p)
	want := snapshot(p)

	var buf bytes.Buffer
	if err := WritePlans(&buf); err != nil {
		t.Fatalf("WritePlans failed: %v", err)
	}

	// Read the document back into an empty registry.
	ResetRegistry()
	if err := ReadPlans(&buf, f); err != nil {
		t.Fatalf("ReadPlans failed: %v", err)
	}
	got := FindID(7)
	if got == nil {
		t.Fatal("Expected plan 7 after the round trip")
	}
	if diff := cmp.Diff(want, snapshot(got)); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteElement_ReferenceMode(t *testing.T) {
	resetState(t)
	op := newTestOperation("PACK", time.Hour)
	p := NewOperationPlan(op, qty(5), date(0), time.Time{}, nil, nil, 7, false)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	var buf bytes.Buffer
	w := xmlio.NewWriter(&buf)
	p.WriteElement(w, "operationplan", xmlio.ModeReference)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, `<operationplan id="7" operation="PACK"/>`) {
		t.Errorf("Expected a self-closing reference, got: %s", got)
	}
}

func TestWriteElement_HiddenOperationSkipped(t *testing.T) {
	resetState(t)
	op := newTestOperation("INTERNAL", time.Hour)
	op.hidden = true
	p := NewOperationPlan(op, qty(5), date(0), time.Time{}, nil, nil, 0, false)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	var buf bytes.Buffer
	w := xmlio.NewWriter(&buf)
	p.WriteElement(w, "operationplan", xmlio.ModeDefault)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output for a hidden operation, got: %s", buf.String())
	}
}

func TestWriteElement_DemandCycleSuppressed(t *testing.T) {
	resetState(t)
	op := newTestOperation("SHIP", time.Hour)
	d := newTestDemand("ORDER_17", op)
	p := NewOperationPlan(op, qty(5), date(0), time.Time{}, d, nil, 0, false)
	if err := p.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	// Written standalone, the demand reference appears.
	var standalone bytes.Buffer
	w := xmlio.NewWriter(&standalone)
	p.WriteElement(w, "operationplan", xmlio.ModeDefault)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if !strings.Contains(standalone.String(), `<demand name="ORDER_17"/>`) {
		t.Errorf("Expected a demand reference in standalone output, got: %s", standalone.String())
	}

	// Written inside the demand's own delivery container, it is suppressed.
	var nested bytes.Buffer
	w = xmlio.NewWriter(&nested)
	w.BeginObject(Demand(d), "demand")
	p.WriteElement(w, "operationplan", xmlio.ModeDefault)
	w.EndObject("demand")
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if strings.Contains(nested.String(), "<demand ") {
		t.Errorf("Expected the demand reference suppressed inside the demand, got: %s", nested.String())
	}
}
