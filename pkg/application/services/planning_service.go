package services

import (
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/vsinha/opplan/pkg/domain/plan"
	"github.com/vsinha/opplan/pkg/infrastructure/events"
	"github.com/vsinha/opplan/pkg/infrastructure/locking"
	"github.com/vsinha/opplan/pkg/infrastructure/repositories/csv"
)

// PlanningService wires the static model, the plan factory and the
// serialization bridge into the load-and-apply use case the CLI drives.
type PlanningService struct {
	model   *csv.Model
	factory *plan.Factory
	locks   *locking.Manager
	bus     *events.Bus
	log     hclog.Logger
}

// NewPlanningService creates a planning service logging through the given
// logger.
func NewPlanningService(log hclog.Logger) *PlanningService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &PlanningService{log: log}
}

// Model returns the loaded model, nil before LoadModel.
func (s *PlanningService) Model() *csv.Model { return s.model }

// Bus returns the lifecycle event bus, nil before LoadModel.
func (s *PlanningService) Bus() *events.Bus { return s.bus }

// Locks returns the write-lock manager, nil before LoadModel.
func (s *PlanningService) Locks() *locking.Manager { return s.locks }

// Factory returns the plan factory, nil before LoadModel.
func (s *PlanningService) Factory() *plan.Factory { return s.factory }

// LoadModel resets the plan registry and loads the static model from a
// scenario directory.
func (s *PlanningService) LoadModel(dir string) error {
	plan.ResetRegistry()
	plan.SetLogger(s.log)

	model, err := csv.NewLoader().LoadModel(dir)
	if err != nil {
		return errors.Wrap(err, "loading model")
	}
	s.model = model
	s.locks = locking.NewManager()
	s.bus = events.NewBus()
	s.factory = plan.NewFactory(model.Operations,
		plan.WithDemands(model.Demands),
		plan.WithLockManager(s.locks),
		plan.WithEventBus(s.bus),
		plan.WithLogger(s.log),
	)
	s.log.Info("model loaded", "summary", model.Summary())
	return nil
}

// ApplyPlans reads an operation-plan document and applies it through the
// factory.
func (s *PlanningService) ApplyPlans(in io.Reader) error {
	if s.factory == nil {
		return errors.New("no model loaded")
	}
	if err := plan.ReadPlans(in, s.factory); err != nil {
		return errors.Wrap(err, "applying plans")
	}
	s.log.Info("plans applied", "registered", len(plan.RegisteredPlans()))
	return nil
}

// WritePlans serializes every registered plan.
func (s *PlanningService) WritePlans(out io.Writer) error {
	return plan.WritePlans(out)
}
