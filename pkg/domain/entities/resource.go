package entities

import (
	"github.com/shopspring/decimal"
)

// Resource is a named capacity pool. Load plans of all operations using the
// capacity register themselves here.
type Resource struct {
	name      string
	capacity  decimal.Decimal
	loadPlans []*LoadPlan
	changed   bool
}

// NewResource creates a resource with the given nominal capacity.
func NewResource(name string, capacity decimal.Decimal) *Resource {
	return &Resource{name: name, capacity: capacity}
}

// Name returns the resource name.
func (r *Resource) Name() string { return r.name }

// Capacity returns the nominal capacity.
func (r *Resource) Capacity() decimal.Decimal { return r.capacity }

// LoadPlans returns the registered capacity usages.
func (r *Resource) LoadPlans() []*LoadPlan { return r.loadPlans }

// SetChanged marks the resource dirty after a usage changed.
func (r *Resource) SetChanged() { r.changed = true }

// Changed reports whether the resource was marked since the last clear.
func (r *Resource) Changed() bool { return r.changed }

// ClearChanged resets the changed mark.
func (r *Resource) ClearChanged() { r.changed = false }

// PlannedUsage sums the usage of every registered load plan.
func (r *Resource) PlannedUsage() decimal.Decimal {
	total := decimal.Zero
	for _, lp := range r.loadPlans {
		total = total.Add(lp.Usage())
	}
	return total
}

func (r *Resource) addLoadPlan(lp *LoadPlan) {
	r.loadPlans = append(r.loadPlans, lp)
	r.changed = true
}

func (r *Resource) removeLoadPlan(lp *LoadPlan) {
	for i, existing := range r.loadPlans {
		if existing == lp {
			r.loadPlans = append(r.loadPlans[:i], r.loadPlans[i+1:]...)
			r.changed = true
			return
		}
	}
}
