package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the structure of the plans an operation produces.
type Kind int

const (
	// KindSimple plans have no child plans.
	KindSimple Kind = iota
	// KindRouting plans wrap an ordered sequence of step plans.
	KindRouting
	// KindAlternate plans wrap a single chosen child plan.
	KindAlternate
	// KindEffective plans wrap a single child plan picked by validity window.
	KindEffective
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindRouting:
		return "routing"
	case KindAlternate:
		return "alternate"
	case KindEffective:
		return "effective"
	default:
		return "unknown"
	}
}

// Operation is the definition of an activity producing and consuming
// material and capacity. Operation plans hold a non-owning reference to the
// operation that produced them.
type Operation interface {
	Name() string
	Hidden() bool
	Kind() Kind
	SubOperations() []Operation
	Flows() []Flow
	Loads() []Load
	SizeMinimum() decimal.Decimal
	SizeMultiple() decimal.Decimal

	// SetOperationPlanParameters reconciles the plan's dates (and possibly
	// quantity) given the anchor the caller supplies: a zero start or end
	// means "derive it".
	SetOperationPlanParameters(p *OperationPlan, qty decimal.Decimal, start, end time.Time)

	// CreateOperationPlan builds a plan of this operation. When autoRegister
	// is set the plan is initialized before it is returned.
	CreateOperationPlan(qty decimal.Decimal, start, end time.Time, demand Demand,
		autoRegister bool, owner *OperationPlan, id uint64, runUpdate bool) (*OperationPlan, error)

	// SetChanged marks the operation for problem re-detection.
	SetChanged()
}

// Demand is an external requirement that delivery plans satisfy.
type Demand interface {
	Name() string
	AddDelivery(p *OperationPlan)
	RemoveDelivery(p *OperationPlan)
	DeliveryOperation() Operation
	SetChanged()
}

// Flow is a material-movement definition on an operation.
type Flow interface {
	NewFlowPlan(p *OperationPlan) FlowPlan
}

// Load is a capacity-usage definition on an operation.
type Load interface {
	NewLoadPlan(p *OperationPlan) LoadPlan
}

// FlowPlan accounts the material effect of one plan for one flow.
type FlowPlan interface {
	Update()
	Check() error
	Delete()
}

// LoadPlan accounts the capacity effect of one plan for one load.
type LoadPlan interface {
	Update()
	Check() error
	Delete()
}

// LockManager gates concurrent access to individual plans. Obtaining and
// releasing are idempotent per holder.
type LockManager interface {
	ObtainWriteLock(p *OperationPlan)
	ReleaseWriteLock(p *OperationPlan)
}

// Signal is a plan lifecycle event subscribers may veto.
type Signal int

const (
	// SignalAdd fires before a newly created plan is committed.
	SignalAdd Signal = iota
	// SignalRemove fires before a plan is deleted.
	SignalRemove
)

func (s Signal) String() string {
	switch s {
	case SignalAdd:
		return "add"
	case SignalRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// EventBus raises lifecycle events. A false return vetoes the transition.
type EventBus interface {
	RaiseEvent(p *OperationPlan, sig Signal) bool
}

// Clock supplies the reference date used when a routing initializes with
// neither start nor end set.
type Clock interface {
	Current() time.Time
}

// OperationFinder resolves operations by name for the factory.
type OperationFinder interface {
	FindOperation(name string) Operation
}

// DemandFinder resolves demands by name for the serialization bridge.
type DemandFinder interface {
	FindDemand(name string) Demand
}
