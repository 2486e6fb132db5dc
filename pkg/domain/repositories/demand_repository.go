package repositories

import (
	"github.com/vsinha/opplan/pkg/domain/entities"
	"github.com/vsinha/opplan/pkg/domain/plan"
)

// DemandRepository provides access to the demands of the model.
type DemandRepository interface {
	FindDemand(name string) plan.Demand
	GetAllDemands() []*entities.Demand
	SaveDemand(d *entities.Demand) error
}
