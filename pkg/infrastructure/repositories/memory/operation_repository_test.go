package memory

import (
	"strings"
	"testing"
	"time"

	"github.com/vsinha/opplan/pkg/domain/entities"
)

func TestOperationRepository_SaveAndFind(t *testing.T) {
	repo := NewOperationRepository(10)

	op := entities.NewOperationFixedTime("MACHINE_CASING", 8*time.Hour)
	if err := repo.SaveOperation(op); err != nil {
		t.Fatalf("Failed to save operation: %v", err)
	}

	found := repo.FindOperation("MACHINE_CASING")
	if found == nil {
		t.Fatal("Failed to find saved operation")
	}
	if found.Name() != "MACHINE_CASING" {
		t.Errorf("Expected name MACHINE_CASING, got %s", found.Name())
	}
	if repo.FindOperation("NOWHERE") != nil {
		t.Error("Expected nil for an unknown operation")
	}
}

func TestOperationRepository_Duplicate(t *testing.T) {
	repo := NewOperationRepository(10)

	if err := repo.SaveOperation(entities.NewOperationFixedTime("PACK", time.Hour)); err != nil {
		t.Fatalf("Failed to save operation first time: %v", err)
	}

	err := repo.SaveOperation(entities.NewOperationFixedTime("PACK", 2*time.Hour))
	if err == nil {
		t.Fatal("Expected error when saving duplicate operation name, got none")
	}
	if !strings.Contains(err.Error(), "duplicate operation name") {
		t.Errorf("Expected error message to mention the duplicate, got: %v", err)
	}

	// Verify the original operation is still there and unchanged.
	found := repo.FindOperation("PACK")
	if found == nil {
		t.Fatal("Failed to find original operation")
	}
	if d, ok := found.(*entities.OperationFixedTime); !ok || d.Duration() != time.Hour {
		t.Error("Expected the original operation to survive the duplicate save")
	}
}

func TestOperationRepository_GetAllPreservesOrder(t *testing.T) {
	repo := NewOperationRepository(10)
	names := []string{"FIRST", "SECOND", "THIRD"}
	for _, n := range names {
		if err := repo.SaveOperation(entities.NewOperationFixedTime(n, time.Hour)); err != nil {
			t.Fatalf("Failed to save operation: %v", err)
		}
	}

	all := repo.GetAllOperations()
	if len(all) != len(names) {
		t.Fatalf("Expected %d operations, got %d", len(names), len(all))
	}
	for i, n := range names {
		if all[i].Name() != n {
			t.Errorf("Expected %s at position %d, got %s", n, i, all[i].Name())
		}
	}
}
