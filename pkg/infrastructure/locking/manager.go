package locking

import (
	"sync"

	"github.com/vsinha/opplan/pkg/domain/plan"
)

// Manager is the process-wide write-lock manager recording which individual
// plans are write-locked. Obtaining a lock never waits and does not track
// the holder: obtaining a lock that is already held is a no-op, and
// releasing an unheld lock is equally harmless.
type Manager struct {
	mutex sync.Mutex
	held  map[*plan.OperationPlan]struct{}
}

// NewManager creates an empty lock manager.
func NewManager() *Manager {
	return &Manager{held: make(map[*plan.OperationPlan]struct{})}
}

// Verify interface compliance.
var _ plan.LockManager = (*Manager)(nil)

// ObtainWriteLock marks the plan write-locked.
func (m *Manager) ObtainWriteLock(p *plan.OperationPlan) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.held[p] = struct{}{}
}

// ReleaseWriteLock clears the plan's write lock.
func (m *Manager) ReleaseWriteLock(p *plan.OperationPlan) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.held, p)
}

// Held reports whether the plan is currently write-locked.
func (m *Manager) Held(p *plan.OperationPlan) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	_, ok := m.held[p]
	return ok
}

// HeldCount returns the number of write-locked plans.
func (m *Manager) HeldCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.held)
}
