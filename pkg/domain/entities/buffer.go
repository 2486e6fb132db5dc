package entities

import (
	"github.com/shopspring/decimal"
)

// Buffer is a named stock point for a material. Flow plans of all
// operations touching the material register themselves here, giving the
// buffer a view of its planned movements.
type Buffer struct {
	name      string
	onHand    decimal.Decimal
	flowPlans []*FlowPlan
	changed   bool
}

// NewBuffer creates a buffer with the given starting inventory.
func NewBuffer(name string, onHand decimal.Decimal) *Buffer {
	return &Buffer{name: name, onHand: onHand}
}

// Name returns the buffer name.
func (b *Buffer) Name() string { return b.name }

// OnHand returns the starting inventory.
func (b *Buffer) OnHand() decimal.Decimal { return b.onHand }

// FlowPlans returns the registered material movements.
func (b *Buffer) FlowPlans() []*FlowPlan { return b.flowPlans }

// SetChanged marks the buffer dirty after a movement changed.
func (b *Buffer) SetChanged() { b.changed = true }

// Changed reports whether the buffer was marked since the last clear.
func (b *Buffer) Changed() bool { return b.changed }

// ClearChanged resets the changed mark.
func (b *Buffer) ClearChanged() { b.changed = false }

// PlannedBalance returns the starting inventory plus every planned
// movement.
func (b *Buffer) PlannedBalance() decimal.Decimal {
	total := b.onHand
	for _, fp := range b.flowPlans {
		total = total.Add(fp.Quantity())
	}
	return total
}

func (b *Buffer) addFlowPlan(fp *FlowPlan) {
	b.flowPlans = append(b.flowPlans, fp)
	b.changed = true
}

func (b *Buffer) removeFlowPlan(fp *FlowPlan) {
	for i, existing := range b.flowPlans {
		if existing == fp {
			b.flowPlans = append(b.flowPlans[:i], b.flowPlans[i+1:]...)
			b.changed = true
			return
		}
	}
}
