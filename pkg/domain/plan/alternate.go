package plan

import (
	"time"
)

// alternateSubs is the variant of alternate plans: a single chosen child
// plan among the operation's alternatives.
type alternateSubs struct {
	chosen *OperationPlan
}

func (a *alternateSubs) addSub(p, child *OperationPlan) {
	if child.owner != p {
		panic(logicErrorf("sub operationplan of %s is not owned by its alternate", p.operation.Name()))
	}
	a.chosen = child
	a.syncDates(p)
	if p.runUpdate {
		p.Update()
	}
}

func (a *alternateSubs) eraseSub(p, child *OperationPlan) {
	if a.chosen == child {
		a.chosen = nil
	} else if child != nil {
		logger.Warn("removing a sub operationplan that is not registered with its parent",
			"sub", child.operation.Name(), "parent", p.operation.Name())
	}
}

func (a *alternateSubs) syncDates(p *OperationPlan) {
	if a.chosen == nil {
		return
	}
	p.SetStartAndEnd(a.chosen.Start(), a.chosen.End())
}

func (a *alternateSubs) setStart(p *OperationPlan, d time.Time) {
	if a.chosen == nil {
		return
	}
	a.chosen.SetStart(d)
	a.syncDates(p)
}

func (a *alternateSubs) setEnd(p *OperationPlan, d time.Time) {
	if a.chosen == nil {
		return
	}
	a.chosen.SetEnd(d)
	a.syncDates(p)
}

// applyQuantity copies the rounded top quantity into the chosen plan,
// bypassing its own rounding, and resizes its flow and load sub-plans.
func (a *alternateSubs) applyQuantity(p *OperationPlan) {
	if a.chosen == nil {
		return
	}
	a.chosen.quantity = p.quantity
	a.chosen.ResizeFlowLoadPlans()
}

func (a *alternateSubs) preUpdate(p *OperationPlan) {
	a.syncDates(p)
}

func (a *alternateSubs) initialize(p *OperationPlan) error {
	// Create a chosen sub-plan if one doesn't exist yet, using the first
	// alternative by default.
	if a.chosen == nil {
		if subs := p.operation.SubOperations(); len(subs) > 0 {
			if _, err := subs[0].CreateOperationPlan(p.quantity, p.Start(), p.End(), nil, false, p, 0, true); err != nil {
				return err
			}
		}
	}
	if a.chosen != nil {
		if err := a.chosen.Initialize(); err != nil {
			return err
		}
	}
	return p.baseInitialize()
}

func (a *alternateSubs) children() []*OperationPlan {
	if a.chosen == nil {
		return nil
	}
	return []*OperationPlan{a.chosen}
}

func (a *alternateSubs) destroyChildren(p *OperationPlan) {
	if a.chosen == nil {
		return
	}
	c := a.chosen
	a.chosen = nil
	c.owner = nil
	c.Destroy()
}
