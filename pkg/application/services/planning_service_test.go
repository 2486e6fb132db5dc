package services

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vsinha/opplan/pkg/domain/plan"
)

func writeScenario(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"operations.csv": `name,kind,duration_hours,size_minimum,size_multiple,hidden
MACHINE_CASING,fixed_time,8,,,
BUILD_CORE,fixed_time,12,,,
ASSEMBLE,fixed_time,4,,,
BUILD_ENGINE,routing,0,,5,false
`,
		"suboperations.csv": `parent,child,effective_from,effective_to
BUILD_ENGINE,MACHINE_CASING,,
BUILD_ENGINE,BUILD_CORE,,
BUILD_ENGINE,ASSEMBLE,,
`,
		"flows.csv": `operation,buffer,quantity_per,type
MACHINE_CASING,ALLOY_STOCK,-3,start
ASSEMBLE,ENGINE_STOCK,1,end
`,
		"demands.csv": `name,operation,quantity,due
ORDER_7,BUILD_ENGINE,12,2026-09-01T00:00:00Z
`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestPlanningService_EndToEnd(t *testing.T) {
	svc := NewPlanningService(nil)
	if err := svc.LoadModel(writeScenario(t)); err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}

	doc := `<plan><operationplans>
		<operationplan operation="BUILD_ENGINE">
			<end>2026-09-01T00:00:00Z</end>
			<quantity>15</quantity>
			<demand name="ORDER_7"/>
		</operationplan>
	</operationplans></plan>`

	if err := svc.ApplyPlans(strings.NewReader(doc)); err != nil {
		t.Fatalf("ApplyPlans failed: %v", err)
	}

	// The routing plan and its three steps are registered.
	plans := plan.RegisteredPlans()
	if len(plans) != 4 {
		t.Fatalf("Expected 4 registered plans, got %d", len(plans))
	}
	if svc.Locks().HeldCount() != 0 {
		t.Error("Expected all write locks released")
	}

	// The delivery is linked to the demand from the model.
	d := svc.Model().Demands.GetAllDemands()[0]
	if len(d.Deliveries()) != 1 {
		t.Fatalf("Expected one delivery on ORDER_7, got %d", len(d.Deliveries()))
	}
	top := d.Deliveries()[0]
	if top.Operation().Name() != "BUILD_ENGINE" {
		t.Errorf("Expected the delivery planned on BUILD_ENGINE, got %s", top.Operation().Name())
	}
	if len(top.Children()) != 3 {
		t.Errorf("Expected 3 routing steps, got %d", len(top.Children()))
	}

	// The material movements arrived on the buffers.
	alloy := svc.Model().Buffers["ALLOY_STOCK"]
	if len(alloy.FlowPlans()) != 1 {
		t.Fatalf("Expected one movement on ALLOY_STOCK, got %d", len(alloy.FlowPlans()))
	}
	if alloy.FlowPlans()[0].Quantity().String() != "-45" {
		t.Errorf("Expected a movement of -45, got %s", alloy.FlowPlans()[0].Quantity())
	}

	// Writing the plans back produces a readable document.
	var buf bytes.Buffer
	if err := svc.WritePlans(&buf); err != nil {
		t.Fatalf("WritePlans failed: %v", err)
	}
	if !strings.Contains(buf.String(), `operation="BUILD_ENGINE"`) {
		t.Errorf("Expected the routing plan in the output, got: %s", buf.String())
	}
}

func TestPlanningService_ApplyWithoutModel(t *testing.T) {
	svc := NewPlanningService(nil)
	if err := svc.ApplyPlans(strings.NewReader("<plan/>")); err == nil {
		t.Error("Expected an error without a loaded model")
	}
}
