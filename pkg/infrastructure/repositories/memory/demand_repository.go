package memory

import (
	"fmt"

	"github.com/vsinha/opplan/pkg/domain/entities"
	"github.com/vsinha/opplan/pkg/domain/plan"
	"github.com/vsinha/opplan/pkg/domain/repositories"
)

// DemandRepository provides in-memory demand storage.
type DemandRepository struct {
	demands []*entities.Demand
	byName  map[string]int
}

// NewDemandRepository creates a new in-memory demand repository.
func NewDemandRepository(expectedDemands int) *DemandRepository {
	return &DemandRepository{
		demands: make([]*entities.Demand, 0, expectedDemands),
		byName:  make(map[string]int, expectedDemands),
	}
}

// Verify interface compliance.
var (
	_ repositories.DemandRepository = (*DemandRepository)(nil)
	_ plan.DemandFinder             = (*DemandRepository)(nil)
)

// SaveDemand adds a demand with name-uniqueness validation.
func (r *DemandRepository) SaveDemand(d *entities.Demand) error {
	if _, exists := r.byName[d.Name()]; exists {
		return fmt.Errorf("duplicate demand name: %s already exists", d.Name())
	}
	r.byName[d.Name()] = len(r.demands)
	r.demands = append(r.demands, d)
	return nil
}

// FindDemand returns the demand with the given name, or nil.
func (r *DemandRepository) FindDemand(name string) plan.Demand {
	index, exists := r.byName[name]
	if !exists {
		return nil
	}
	return r.demands[index]
}

// GetAllDemands returns all demands in insertion order.
func (r *DemandRepository) GetAllDemands() []*entities.Demand {
	out := make([]*entities.Demand, len(r.demands))
	copy(out, r.demands)
	return out
}
