package plan

import (
	"time"
)

// effectiveSubs is the variant of effective plans: a single inner child
// plan whose effective window is delegated. Unlike an alternate, the inner
// plan must be supplied before initialization.
type effectiveSubs struct {
	inner *OperationPlan
}

func (e *effectiveSubs) addSub(p, child *OperationPlan) {
	if child.owner != p {
		panic(logicErrorf("sub operationplan of %s is not owned by its effective wrapper", p.operation.Name()))
	}
	e.inner = child
	e.syncDates(p)
	if p.runUpdate {
		p.Update()
	}
}

func (e *effectiveSubs) eraseSub(p, child *OperationPlan) {
	if e.inner == child {
		e.inner = nil
	} else if child != nil {
		logger.Warn("removing a sub operationplan that is not registered with its parent",
			"sub", child.operation.Name(), "parent", p.operation.Name())
	}
}

func (e *effectiveSubs) syncDates(p *OperationPlan) {
	if e.inner == nil {
		return
	}
	p.SetStartAndEnd(e.inner.Start(), e.inner.End())
}

func (e *effectiveSubs) setStart(p *OperationPlan, d time.Time) {
	if e.inner == nil {
		return
	}
	e.inner.SetStart(d)
	e.syncDates(p)
}

func (e *effectiveSubs) setEnd(p *OperationPlan, d time.Time) {
	if e.inner == nil {
		return
	}
	e.inner.SetEnd(d)
	e.syncDates(p)
}

func (e *effectiveSubs) applyQuantity(p *OperationPlan) {
	if e.inner == nil {
		return
	}
	e.inner.quantity = p.quantity
	e.inner.ResizeFlowLoadPlans()
}

func (e *effectiveSubs) preUpdate(p *OperationPlan) {
	e.syncDates(p)
}

func (e *effectiveSubs) initialize(p *OperationPlan) error {
	if e.inner == nil {
		return logicErrorf("can't initialize an effective operationplan of %s without sub operationplan",
			p.operation.Name())
	}
	if err := e.inner.Initialize(); err != nil {
		return err
	}
	return p.baseInitialize()
}

func (e *effectiveSubs) children() []*OperationPlan {
	if e.inner == nil {
		return nil
	}
	return []*OperationPlan{e.inner}
}

func (e *effectiveSubs) destroyChildren(p *OperationPlan) {
	if e.inner == nil {
		return
	}
	c := e.inner
	e.inner = nil
	c.owner = nil
	c.Destroy()
}
