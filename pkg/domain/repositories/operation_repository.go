package repositories

import "github.com/vsinha/opplan/pkg/domain/plan"

// OperationRepository provides access to the operation definitions of the
// model.
type OperationRepository interface {
	FindOperation(name string) plan.Operation
	GetAllOperations() []plan.Operation
	SaveOperation(op plan.Operation) error
}
