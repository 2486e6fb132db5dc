package locking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/opplan/pkg/domain/entities"
	"github.com/vsinha/opplan/pkg/domain/plan"
)

func newPlan(t *testing.T, name string) *plan.OperationPlan {
	t.Helper()
	op := entities.NewOperationFixedTime(name, time.Hour)
	p, err := op.CreateOperationPlan(decimal.NewFromInt(5),
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), time.Time{}, nil, true, nil, 0, false)
	if err != nil {
		t.Fatalf("CreateOperationPlan failed: %v", err)
	}
	return p
}

func TestManager_ObtainReleaseIdempotent(t *testing.T) {
	plan.ResetRegistry()
	m := NewManager()
	p := newPlan(t, "PACK")

	m.ObtainWriteLock(p)
	m.ObtainWriteLock(p)
	if !m.Held(p) {
		t.Error("Expected the plan write-locked")
	}
	if m.HeldCount() != 1 {
		t.Errorf("Expected a single held lock, got %d", m.HeldCount())
	}

	m.ReleaseWriteLock(p)
	m.ReleaseWriteLock(p)
	if m.Held(p) {
		t.Error("Expected the lock released")
	}
}

func TestManager_TracksPlansIndependently(t *testing.T) {
	plan.ResetRegistry()
	m := NewManager()
	p1 := newPlan(t, "PACK")
	p2 := newPlan(t, "SHIP")

	m.ObtainWriteLock(p1)
	m.ObtainWriteLock(p2)
	m.ReleaseWriteLock(p1)

	if m.Held(p1) {
		t.Error("Expected the first lock released")
	}
	if !m.Held(p2) {
		t.Error("Expected the second lock still held")
	}
}
