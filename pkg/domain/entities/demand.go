package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/opplan/pkg/domain/plan"
)

// Demand represents an external requirement that delivery plans satisfy.
type Demand struct {
	name       string
	quantity   decimal.Decimal
	due        time.Time
	operation  plan.Operation
	deliveries []*plan.OperationPlan
	changed    bool
}

// NewDemand creates a demand satisfied by plans of the given delivery
// operation.
func NewDemand(name string, qty decimal.Decimal, due time.Time, deliveryOp plan.Operation) *Demand {
	return &Demand{name: name, quantity: qty, due: due, operation: deliveryOp}
}

// Verify interface compliance.
var _ plan.Demand = (*Demand)(nil)

// Name returns the demand name.
func (d *Demand) Name() string { return d.name }

// Quantity returns the requested quantity.
func (d *Demand) Quantity() decimal.Decimal { return d.quantity }

// Due returns the requested date.
func (d *Demand) Due() time.Time { return d.due }

// DeliveryOperation returns the operation whose plans deliver this demand.
func (d *Demand) DeliveryOperation() plan.Operation { return d.operation }

// Deliveries returns the plans registered as deliveries, most recent first.
func (d *Demand) Deliveries() []*plan.OperationPlan { return d.deliveries }

// AddDelivery registers a plan as a delivery. Re-adding a registered plan
// is a no-op.
func (d *Demand) AddDelivery(p *plan.OperationPlan) {
	for _, existing := range d.deliveries {
		if existing == p {
			return
		}
	}
	d.deliveries = append([]*plan.OperationPlan{p}, d.deliveries...)
	p.SetDemand(d)
	d.changed = true
}

// RemoveDelivery unregisters a plan from the delivery set.
func (d *Demand) RemoveDelivery(p *plan.OperationPlan) {
	for i, existing := range d.deliveries {
		if existing == p {
			d.deliveries = append(d.deliveries[:i], d.deliveries[i+1:]...)
			d.changed = true
			return
		}
	}
}

// SetChanged marks the demand dirty after a delivery changed.
func (d *Demand) SetChanged() { d.changed = true }

// Changed reports whether the demand was marked since the last clear.
func (d *Demand) Changed() bool { return d.changed }

// ClearChanged resets the changed mark.
func (d *Demand) ClearChanged() { d.changed = false }

// PlannedQuantity sums the quantities of all deliveries.
func (d *Demand) PlannedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.deliveries {
		total = total.Add(p.Quantity())
	}
	return total
}
