package events

import (
	"sync"
	"time"

	"github.com/vsinha/opplan/pkg/domain/plan"
)

// Subscriber is a pre-commit hook on plan lifecycle events. Returning false
// vetoes the transition.
type Subscriber interface {
	HandlePlanEvent(p *plan.OperationPlan, sig plan.Signal) bool
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(p *plan.OperationPlan, sig plan.Signal) bool

// HandlePlanEvent calls the function.
func (f SubscriberFunc) HandlePlanEvent(p *plan.OperationPlan, sig plan.Signal) bool {
	return f(p, sig)
}

// RaisedEvent records one raised signal for later inspection.
type RaisedEvent struct {
	PlanID    uint64
	Operation string
	Signal    plan.Signal
	Vetoed    bool
	Time      time.Time
}

// Bus raises plan lifecycle events against registered subscribers, in
// registration order, and keeps a log of everything raised. Any subscriber
// returning false vetoes the event.
type Bus struct {
	mutex       sync.RWMutex
	subscribers []Subscriber
	log         []RaisedEvent
}

// NewBus creates an empty event bus; without subscribers every event is
// accepted.
func NewBus() *Bus {
	return &Bus{}
}

// Verify interface compliance.
var _ plan.EventBus = (*Bus)(nil)

// Subscribe registers a subscriber.
func (b *Bus) Subscribe(s Subscriber) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.subscribers = append(b.subscribers, s)
}

// Unsubscribe removes a previously registered subscriber. The subscriber
// must be of a comparable type, such as a pointer.
func (b *Bus) Unsubscribe(s Subscriber) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	kept := make([]Subscriber, 0, len(b.subscribers))
	for _, existing := range b.subscribers {
		if existing != s {
			kept = append(kept, existing)
		}
	}
	b.subscribers = kept
}

// RaiseEvent runs the subscribers for the signal and reports whether all of
// them accepted it. The raised event is recorded either way.
func (b *Bus) RaiseEvent(p *plan.OperationPlan, sig plan.Signal) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	accepted := true
	for _, s := range b.subscribers {
		if !s.HandlePlanEvent(p, sig) {
			accepted = false
			break
		}
	}

	b.log = append(b.log, RaisedEvent{
		PlanID:    p.ID(),
		Operation: p.Operation().Name(),
		Signal:    sig,
		Vetoed:    !accepted,
		Time:      time.Now(),
	})
	return accepted
}

// Log returns a copy of every raised event in order.
func (b *Bus) Log() []RaisedEvent {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	out := make([]RaisedEvent, len(b.log))
	copy(out, b.log)
	return out
}
