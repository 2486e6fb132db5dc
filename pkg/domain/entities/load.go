package entities

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/opplan/pkg/domain/plan"
)

// Load defines a capacity usage of an operation against a resource. The
// usage factor is per plan unit.
type Load struct {
	resource *Resource
	usage    decimal.Decimal
}

// NewLoad creates a load definition. Attach it to an operation with
// AddLoad.
func NewLoad(resource *Resource, usagePer decimal.Decimal) *Load {
	return &Load{resource: resource, usage: usagePer}
}

// Verify interface compliance.
var _ plan.Load = (*Load)(nil)

// Resource returns the loaded resource.
func (l *Load) Resource() *Resource { return l.resource }

// UsagePer returns the usage factor per plan unit.
func (l *Load) UsagePer() decimal.Decimal { return l.usage }

// NewLoadPlan accounts this load for one plan and registers the result on
// the resource.
func (l *Load) NewLoadPlan(p *plan.OperationPlan) plan.LoadPlan {
	lp := &LoadPlan{plan: p, load: l}
	lp.Update()
	l.resource.addLoadPlan(lp)
	return lp
}

// LoadPlan is the capacity effect of one plan for one load: the plan's
// quantity scaled by the usage factor, over the plan's date range.
type LoadPlan struct {
	plan  *plan.OperationPlan
	load  *Load
	usage decimal.Decimal
	dates plan.DateRange
}

// Verify interface compliance.
var _ plan.LoadPlan = (*LoadPlan)(nil)

// Plan returns the owning plan.
func (lp *LoadPlan) Plan() *plan.OperationPlan { return lp.plan }

// Load returns the definition this sub-plan accounts for.
func (lp *LoadPlan) Load() *Load { return lp.load }

// Usage returns the accounted capacity usage.
func (lp *LoadPlan) Usage() decimal.Decimal { return lp.usage }

// Dates returns the range over which the capacity is used.
func (lp *LoadPlan) Dates() plan.DateRange { return lp.dates }

// Update recomputes the usage from the owning plan's current quantity and
// dates, and marks the resource changed.
func (lp *LoadPlan) Update() {
	lp.usage = lp.load.usage.Mul(lp.plan.Quantity())
	lp.dates = lp.plan.Dates()
	lp.load.resource.SetChanged()
}

// Check verifies the stored usage against a recomputation.
func (lp *LoadPlan) Check() error {
	if want := lp.load.usage.Mul(lp.plan.Quantity()); !lp.usage.Equal(want) {
		return fmt.Errorf("loadplan on resource %s: usage %s doesn't match plan size (want %s)",
			lp.load.resource.Name(), lp.usage, want)
	}
	if want := lp.plan.Dates(); !lp.dates.Start.Equal(want.Start) || !lp.dates.End.Equal(want.End) {
		return fmt.Errorf("loadplan on resource %s: dates don't match plan dates", lp.load.resource.Name())
	}
	return nil
}

// Delete unregisters the usage from the resource.
func (lp *LoadPlan) Delete() {
	lp.load.resource.removeLoadPlan(lp)
}
