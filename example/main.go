package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/opplan/pkg/domain/entities"
	"github.com/vsinha/opplan/pkg/domain/plan"
	"github.com/vsinha/opplan/pkg/infrastructure/events"
	"github.com/vsinha/opplan/pkg/infrastructure/locking"
	"github.com/vsinha/opplan/pkg/infrastructure/repositories/memory"
)

func main() {
	plan.ResetRegistry()

	// Model a small engine assembly line as a routing of three steps:
	// machine the casing, build the core, then assemble.
	alloy := entities.NewBuffer("ALLOY_STOCK", decimal.NewFromInt(500))
	engines := entities.NewBuffer("ENGINE_STOCK", decimal.Zero)
	line := entities.NewResource("ASSEMBLY_LINE", decimal.NewFromInt(16))

	machine := entities.NewOperationFixedTime("MACHINE_CASING", 8*time.Hour)
	machine.AddFlow(entities.NewFlow(alloy, decimal.NewFromInt(-3), entities.FlowStart))

	core := entities.NewOperationFixedTime("BUILD_CORE", 12*time.Hour)
	core.AddLoad(entities.NewLoad(line, decimal.NewFromInt(1)))

	assemble := entities.NewOperationFixedTime("ASSEMBLE", 4*time.Hour)
	assemble.AddFlow(entities.NewFlow(engines, decimal.NewFromInt(1), entities.FlowEnd))

	build := entities.NewOperationRouting("BUILD_ENGINE")
	build.SetSizeMultiple(decimal.NewFromInt(5))
	build.AddSubOperation(machine)
	build.AddSubOperation(core)
	build.AddSubOperation(assemble)

	operations := memory.NewOperationRepository(8)
	for _, op := range []plan.Operation{machine, core, assemble, build} {
		if err := operations.SaveOperation(op); err != nil {
			fmt.Fprintf(os.Stderr, "model setup failed: %v\n", err)
			os.Exit(1)
		}
	}

	demands := memory.NewDemandRepository(2)
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	order := entities.NewDemand("ORDER_7", decimal.NewFromInt(12), due, build)
	if err := demands.SaveDemand(order); err != nil {
		fmt.Fprintf(os.Stderr, "model setup failed: %v\n", err)
		os.Exit(1)
	}

	locks := locking.NewManager()
	bus := events.NewBus()
	factory := plan.NewFactory(operations,
		plan.WithDemands(demands),
		plan.WithLockManager(locks),
		plan.WithEventBus(bus),
	)

	// Create a plan for the order through the factory, the way external
	// input would.
	p, err := factory.CreateOperationPlan(plan.PlanAttributes{Operation: "BUILD_ENGINE"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "plan creation failed: %v\n", err)
		os.Exit(1)
	}
	p.SetDemand(order)
	p.SetEnd(due)
	if err := p.SetQuantity(order.Quantity(), false); err != nil {
		fmt.Fprintf(os.Stderr, "resize failed: %v\n", err)
		os.Exit(1)
	}
	if err := p.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "initialize failed: %v\n", err)
		os.Exit(1)
	}
	factory.ReleaseWriteLock(p)

	fmt.Printf("Planned %s of %s (demand %s asked for %s)\n",
		p.Quantity(), build.Name(), order.Name(), order.Quantity())
	for _, step := range p.Children() {
		fmt.Printf("  step %-16s %s -> %s\n",
			step.Operation().Name(),
			step.Start().Format(time.RFC3339),
			step.End().Format(time.RFC3339))
	}

	// Pull the whole routing in by a day; the steps re-propagate.
	p.SetEnd(due.Add(-24 * time.Hour))
	fmt.Printf("After rescheduling, the routing runs %s -> %s\n",
		p.Start().Format(time.RFC3339), p.End().Format(time.RFC3339))

	fmt.Printf("Alloy balance after planning: %s\n", alloy.PlannedBalance())
	fmt.Printf("Line usage after planning: %s\n", line.PlannedUsage())
	fmt.Printf("Lifecycle events raised: %d\n", len(bus.Log()))
}
