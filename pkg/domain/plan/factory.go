package plan

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/shopspring/decimal"
)

// Action tells the factory what to do with an incoming plan description.
type Action int

const (
	// ActionAddChange locates an existing plan or creates a new one. This is
	// the default action.
	ActionAddChange Action = iota
	// ActionAdd creates a plan and requires that none exists yet.
	ActionAdd
	// ActionChange mutates a plan and requires that it exists.
	ActionChange
	// ActionRemove deletes an existing plan.
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionChange:
		return "change"
	case ActionRemove:
		return "remove"
	case ActionAddChange:
		return "add_change"
	default:
		return "unknown"
	}
}

// DecodeAction parses an action attribute value. The empty string decodes
// to ActionAddChange.
func DecodeAction(s string) (Action, error) {
	switch s {
	case "", "add_change", "AC":
		return ActionAddChange, nil
	case "add", "A":
		return ActionAdd, nil
	case "change", "C":
		return ActionChange, nil
	case "remove", "R":
		return ActionRemove, nil
	default:
		return ActionAddChange, dataErrorf("invalid action '%s'", s)
	}
}

// PlanAttributes is the attribute bundle the factory decodes.
type PlanAttributes struct {
	// Action selects among add, change, remove and add_change.
	Action Action
	// Operation names the operation the plan belongs to. Optional when an
	// existing plan is addressed by id.
	Operation string
	// ID addresses an existing plan, or proposes the identifier for a new
	// one. Zero means unassigned.
	ID uint64
}

// Factory locates, creates, mutates or deletes operation plans from
// attribute bundles, enforcing the action pre- and post-conditions.
type Factory struct {
	operations OperationFinder
	demands    DemandFinder
	locks      LockManager
	events     EventBus
	log        hclog.Logger
}

// FactoryOption customizes a Factory.
type FactoryOption func(*Factory)

// WithDemands supplies the demand lookup used by the serialization bridge.
func WithDemands(d DemandFinder) FactoryOption {
	return func(f *Factory) { f.demands = d }
}

// WithLockManager supplies the write-lock manager. Without one, locking is
// a no-op.
func WithLockManager(l LockManager) FactoryOption {
	return func(f *Factory) { f.locks = l }
}

// WithEventBus supplies the lifecycle event bus. Without one, every add and
// remove is accepted.
func WithEventBus(b EventBus) FactoryOption {
	return func(f *Factory) { f.events = b }
}

// WithLogger supplies the factory logger.
func WithLogger(l hclog.Logger) FactoryOption {
	return func(f *Factory) { f.log = l }
}

// NewFactory creates a factory resolving operations through the given
// finder.
func NewFactory(operations OperationFinder, opts ...FactoryOption) *Factory {
	f := &Factory{
		operations: operations,
		locks:      noopLocks{},
		events:     acceptAll{},
		log:        hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateOperationPlan executes the action encoded in the attribute bundle.
// For remove it returns a nil plan. For the other actions the returned plan
// is write-locked; the caller releases the lock when its mutation chain is
// complete. A newly created plan is not yet initialized.
func (f *Factory) CreateOperationPlan(attrs PlanAttributes) (*OperationPlan, error) {
	// If an id is specified, look up the existing plan.
	var existing *OperationPlan
	if attrs.ID != 0 {
		existing = FindID(attrs.ID)
		if existing != nil && attrs.Operation != "" && existing.Operation().Name() != attrs.Operation {
			return nil, dataErrorf("operationplan id %s defined multiple times with different operations: '%s' and '%s'",
				formatID(attrs.ID), existing.Operation().Name(), attrs.Operation)
		}
	}

	// Execute the proper action.
	switch attrs.Action {
	case ActionRemove:
		if existing == nil {
			return nil, dataErrorf("can't find operationplan with identifier %s for removal", formatID(attrs.ID))
		}
		f.locks.ObtainWriteLock(existing)
		if !f.events.RaiseEvent(existing, SignalRemove) {
			// The subscribers disallowed the deletion.
			f.locks.ReleaseWriteLock(existing)
			return nil, dataErrorf("can't delete operationplan with id %s", formatID(attrs.ID))
		}
		existing.Destroy()
		f.locks.ReleaseWriteLock(existing)
		f.log.Debug("removed operationplan", "id", attrs.ID)
		return nil, nil
	case ActionAdd:
		if existing != nil {
			return nil, dataErrorf("operationplan with identifier %s already exists and can't be added again",
				formatID(attrs.ID))
		}
		if attrs.Operation == "" {
			return nil, dataErrorf("operation name missing for creating an operationplan")
		}
	case ActionChange:
		if existing == nil {
			return nil, dataErrorf("operationplan with identifier %s doesn't exist", formatID(attrs.ID))
		}
	case ActionAddChange:
	}

	// Return the existing operationplan.
	if existing != nil {
		f.locks.ObtainWriteLock(existing)
		return existing, nil
	}

	// Create a new operationplan.
	op := f.operations.FindOperation(attrs.Operation)
	if op == nil {
		return nil, dataErrorf("operation '%s' doesn't exist", attrs.Operation)
	}
	p, err := op.CreateOperationPlan(decimal.Zero, time.Time{}, time.Time{}, nil, false, nil, attrs.ID, false)
	if err != nil {
		return nil, err
	}
	f.locks.ObtainWriteLock(p)
	if !f.events.RaiseEvent(p, SignalAdd) {
		f.locks.ReleaseWriteLock(p)
		p.Destroy()
		return nil, dataErrorf("can't create operationplan for operation '%s'", attrs.Operation)
	}
	f.log.Debug("created operationplan", "operation", attrs.Operation, "id", attrs.ID)
	return p, nil
}

// ReleaseWriteLock releases the write lock the factory obtained on a plan.
func (f *Factory) ReleaseWriteLock(p *OperationPlan) {
	f.locks.ReleaseWriteLock(p)
}

// FindDemand resolves a demand by name, or nil when no demand lookup is
// configured.
func (f *Factory) FindDemand(name string) Demand {
	if f.demands == nil {
		return nil
	}
	return f.demands.FindDemand(name)
}

type noopLocks struct{}

func (noopLocks) ObtainWriteLock(*OperationPlan)  {}
func (noopLocks) ReleaseWriteLock(*OperationPlan) {}

type acceptAll struct{}

func (acceptAll) RaiseEvent(*OperationPlan, Signal) bool { return true }
