package plan

import (
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// The registry is process-wide mutable state: a monotonically increasing id
// counter and the head of the intrusive plan list of every operation that
// has registered plans. All mutations happen under regMu; the higher-level
// write-lock discipline serializes whole mutation chains.
var (
	regMu   sync.Mutex
	counter uint64 = 1
	heads          = make(map[Operation]*OperationPlan)

	clock  Clock        = systemClock{}
	logger hclog.Logger = hclog.NewNullLogger()
)

type systemClock struct{}

func (systemClock) Current() time.Time { return time.Now() }

// SetClock replaces the plan clock. Pass nil to restore the wall clock.
func SetClock(c Clock) {
	if c == nil {
		c = systemClock{}
	}
	clock = c
}

// SetLogger replaces the package logger. Pass nil to silence it.
func SetLogger(l hclog.Logger) {
	if l == nil {
		l = hclog.NewNullLogger()
	}
	logger = l
}

// Counter returns the next id the registry would assign. It is strictly
// greater than every assigned id.
func Counter() uint64 {
	regMu.Lock()
	defer regMu.Unlock()
	return counter
}

// FindID returns the registered plan with the given id, or nil.
func FindID(id uint64) *OperationPlan {
	regMu.Lock()
	defer regMu.Unlock()
	return findID(id)
}

func findID(id uint64) *OperationPlan {
	// No registered plan carries an id at or above the counter; ids above it
	// skip the scan outright.
	if id > counter {
		return nil
	}
	for _, head := range heads {
		for p := head; p != nil; p = p.next {
			if p.id == id {
				return p
			}
		}
	}
	return nil
}

// register assigns or validates the plan's id and inserts it at the head of
// its operation's plan list.
func (p *OperationPlan) register() error {
	regMu.Lock()
	defer regMu.Unlock()

	// Already registered. Re-initialization must not relink the plan.
	if p.id != 0 {
		return nil
	}

	if p.proposedID != 0 {
		if p.proposedID < counter {
			// The supplied id potentially clashes with an existing plan.
			if existing := findID(p.proposedID); existing != nil && existing.operation != p.operation {
				return &RuntimeError{Msg: "duplicated operationplan id " + formatID(p.proposedID)}
			}
		} else {
			// The id is definitely unused; advance the counter so it stays a
			// safe starting point for tagging new plans.
			counter = p.proposedID + 1
		}
		p.id = p.proposedID
	} else {
		p.id = counter
		counter++
	}

	p.next = heads[p.operation]
	if p.next != nil {
		p.next.prev = p
	}
	heads[p.operation] = p
	return nil
}

// unregister unlinks the plan from its operation's plan list.
func (p *OperationPlan) unregister() {
	regMu.Lock()
	defer regMu.Unlock()

	if p.prev != nil {
		p.prev.next = p.next
	} else {
		// First plan in the list of this operation.
		heads[p.operation] = p.next
	}
	if p.next != nil {
		p.next.prev = p.prev
	}
	p.prev = nil
	p.next = nil
}

// FirstPlan returns the head of the operation's plan list, or nil.
func FirstPlan(o Operation) *OperationPlan {
	regMu.Lock()
	defer regMu.Unlock()
	return heads[o]
}

// RegisteredPlans returns a snapshot of every registered plan, ordered by
// ascending id.
func RegisteredPlans() []*OperationPlan {
	regMu.Lock()
	var plans []*OperationPlan
	for _, head := range heads {
		for p := head; p != nil; p = p.next {
			plans = append(plans, p)
		}
	}
	regMu.Unlock()

	sort.Slice(plans, func(i, j int) bool { return plans[i].id < plans[j].id })
	return plans
}

// DeleteOperationPlans destroys every plan of the given operation,
// optionally sparing locked plans. The next pointer is captured before each
// destruction because destroying mutates the list.
func DeleteOperationPlans(o Operation, deleteLocked bool) {
	if o == nil {
		return
	}
	for p := FirstPlan(o); p != nil; {
		tmp := p
		p = p.next
		if deleteLocked || !tmp.locked {
			tmp.Destroy()
		}
	}
}

// ResetRegistry clears all registered plans and restarts the id counter.
// Intended for tests and for loading a fresh model.
func ResetRegistry() {
	regMu.Lock()
	defer regMu.Unlock()
	counter = 1
	heads = make(map[Operation]*OperationPlan)
}
