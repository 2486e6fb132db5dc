package plan

import (
	"time"
)

// routingSubs is the variant of routing plans: an ordered sequence of step
// plans, one per sub-operation of the routing.
type routingSubs struct {
	steps []*OperationPlan
}

func (r *routingSubs) addSub(p, child *OperationPlan) {
	if child.owner != p {
		panic(logicErrorf("sub operationplan of %s is not owned by its routing", p.operation.Name()))
	}

	// Add at the front of the list.
	r.steps = append([]*OperationPlan{child}, r.steps...)

	r.syncDates(p)
	p.afterChange()
}

func (r *routingSubs) eraseSub(p, child *OperationPlan) {
	for i, s := range r.steps {
		if s == child {
			r.steps = append(r.steps[:i], r.steps[i+1:]...)
			return
		}
	}
}

// syncDates resets the top dates to the extremes of the steps.
func (r *routingSubs) syncDates(p *OperationPlan) {
	if len(r.steps) == 0 {
		return
	}
	p.SetStartAndEnd(r.steps[0].Start(), r.steps[len(r.steps)-1].End())
}

func (r *routingSubs) setEnd(p *OperationPlan, d time.Time) {
	if len(r.steps) == 0 {
		p.baseSetEnd(d)
		return
	}

	// Move the steps backward in an orderly fashion. The last step moves
	// unconditionally to force a re-propagation; earlier steps only move
	// while they overlap the propagated target.
	firstMove := true
	for i := len(r.steps) - 1; i >= 0; i-- {
		s := r.steps[i]
		if firstMove || s.End().After(d) {
			s.SetEnd(d)
			firstMove = false
			d = s.Start()
		} else {
			// There is sufficient slack in the routing.
			break
		}
	}
	r.syncDates(p)
}

func (r *routingSubs) setStart(p *OperationPlan, d time.Time) {
	if len(r.steps) == 0 {
		p.baseSetStart(d)
		return
	}

	// Move the steps forward in an orderly fashion.
	firstMove := true
	for _, s := range r.steps {
		if firstMove || s.Start().Before(d) {
			s.SetStart(d)
			firstMove = false
			d = s.End()
		} else {
			// There is sufficient slack in the routing.
			break
		}
	}
	r.syncDates(p)
}

// applyQuantity copies the rounded top quantity into every step, bypassing
// step-level rounding, and resizes their flow and load sub-plans.
func (r *routingSubs) applyQuantity(p *OperationPlan) {
	for _, s := range r.steps {
		s.quantity = p.quantity
		s.ResizeFlowLoadPlans()
	}
}

func (r *routingSubs) preUpdate(p *OperationPlan) {
	r.syncDates(p)
}

func (r *routingSubs) initialize(p *OperationPlan) error {
	// Create the step sub-plans if they don't exist yet.
	if len(r.steps) == 0 {
		subs := p.operation.SubOperations()
		if d := p.End(); !d.IsZero() {
			// Anchored by the end date: create in reverse operation order,
			// propagating each step's computed start backward.
			for i := len(subs) - 1; i >= 0; i-- {
				s, err := subs[i].CreateOperationPlan(p.quantity, time.Time{}, d, nil, false, p, 0, true)
				if err != nil {
					return err
				}
				d = s.Start()
			}
		} else {
			// Anchored by the start date, or by the plan clock when both
			// dates are missing: create in forward order, propagating each
			// step's computed end.
			d = p.Start()
			if d.IsZero() {
				d = clock.Current()
			}
			for _, sub := range subs {
				s, err := sub.CreateOperationPlan(p.quantity, d, time.Time{}, nil, false, p, 0, true)
				if err != nil {
					return err
				}
				d = s.End()
			}
			// Creation prepends each step; restore the routing order.
			for i, j := 0, len(r.steps)-1; i < j; i, j = i+1, j-1 {
				r.steps[i], r.steps[j] = r.steps[j], r.steps[i]
			}
			r.syncDates(p)
		}
	}

	// Initialize the steps, then the routing plan itself.
	for _, s := range r.steps {
		if err := s.Initialize(); err != nil {
			return err
		}
	}
	return p.baseInitialize()
}

func (r *routingSubs) children() []*OperationPlan {
	return r.steps
}

func (r *routingSubs) destroyChildren(p *OperationPlan) {
	steps := r.steps
	r.steps = nil
	for _, s := range steps {
		// Clear the back-reference first so the step doesn't re-destroy its
		// parent.
		s.owner = nil
		s.Destroy()
	}
}
