package memory

import (
	"fmt"

	"github.com/vsinha/opplan/pkg/domain/plan"
	"github.com/vsinha/opplan/pkg/domain/repositories"
)

// OperationRepository provides in-memory operation storage.
type OperationRepository struct {
	operations []plan.Operation
	byName     map[string]int
}

// NewOperationRepository creates a new in-memory operation repository.
func NewOperationRepository(expectedOperations int) *OperationRepository {
	return &OperationRepository{
		operations: make([]plan.Operation, 0, expectedOperations),
		byName:     make(map[string]int, expectedOperations),
	}
}

// Verify interface compliance.
var (
	_ repositories.OperationRepository = (*OperationRepository)(nil)
	_ plan.OperationFinder             = (*OperationRepository)(nil)
)

// SaveOperation adds an operation with name-uniqueness validation.
func (r *OperationRepository) SaveOperation(op plan.Operation) error {
	if _, exists := r.byName[op.Name()]; exists {
		return fmt.Errorf("duplicate operation name: %s already exists", op.Name())
	}
	r.byName[op.Name()] = len(r.operations)
	r.operations = append(r.operations, op)
	return nil
}

// FindOperation returns the operation with the given name, or nil.
func (r *OperationRepository) FindOperation(name string) plan.Operation {
	index, exists := r.byName[name]
	if !exists {
		return nil
	}
	return r.operations[index]
}

// GetAllOperations returns all operations in insertion order.
func (r *OperationRepository) GetAllOperations() []plan.Operation {
	out := make([]plan.Operation, len(r.operations))
	copy(out, r.operations)
	return out
}
