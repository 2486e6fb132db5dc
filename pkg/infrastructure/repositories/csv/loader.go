package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vsinha/opplan/pkg/domain/entities"
	"github.com/vsinha/opplan/pkg/domain/plan"
	"github.com/vsinha/opplan/pkg/infrastructure/repositories/memory"
)

// Model is the static planning model assembled from a scenario directory.
type Model struct {
	Operations *memory.OperationRepository
	Demands    *memory.DemandRepository
	Buffers    map[string]*entities.Buffer
	Resources  map[string]*entities.Resource
}

// Loader reads a planning model from CSV files. Buffers and resources are
// created implicitly on first reference.
type Loader struct{}

// NewLoader creates a new CSV loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadModel loads the model from a scenario directory containing
// operations.csv, suboperations.csv, flows.csv, loads.csv and demands.csv.
// The sub-operation, flow, load and demand files are optional. Row-level
// problems are accumulated rather than failing at the first one.
func (l *Loader) LoadModel(dir string) (*Model, error) {
	m := &Model{
		Operations: memory.NewOperationRepository(64),
		Demands:    memory.NewDemandRepository(16),
		Buffers:    make(map[string]*entities.Buffer),
		Resources:  make(map[string]*entities.Resource),
	}

	var result *multierror.Error

	if err := l.loadOperations(filepath.Join(dir, "operations.csv"), m); err != nil {
		return nil, err
	}
	result = multierror.Append(result,
		l.loadSubOperations(filepath.Join(dir, "suboperations.csv"), m),
		l.loadFlows(filepath.Join(dir, "flows.csv"), m),
		l.loadLoads(filepath.Join(dir, "loads.csv"), m),
		l.loadDemands(filepath.Join(dir, "demands.csv"), m),
	)
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return m, nil
}

// readRecords opens a CSV file and validates its header. A missing file
// yields no records when optional is set.
func readRecords(filename string, header []string, optional bool) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filename)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("%s must have a header row", filename)
	}
	if !headerMatches(records[0], header) {
		return nil, errors.Errorf("%s header mismatch. Expected: %v, Got: %v", filename, header, records[0])
	}
	return records[1:], nil
}

func headerMatches(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func (l *Loader) loadOperations(filename string, m *Model) error {
	header := []string{"name", "kind", "duration_hours", "size_minimum", "size_multiple", "hidden"}
	records, err := readRecords(filename, header, false)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for i, rec := range records {
		op, err := buildOperation(rec)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "operations.csv row %d", i+2))
			continue
		}
		if err := m.Operations.SaveOperation(op); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "operations.csv row %d", i+2))
		}
	}
	return result.ErrorOrNil()
}

func buildOperation(rec []string) (plan.Operation, error) {
	name := rec[0]
	hours, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid duration for operation %s", name)
	}
	duration := time.Duration(hours * float64(time.Hour))

	var op plan.Operation
	switch rec[1] {
	case "fixed_time", "":
		op = entities.NewOperationFixedTime(name, duration)
	case "routing":
		op = entities.NewOperationRouting(name)
	case "alternate":
		op = entities.NewOperationAlternate(name)
	case "effective":
		op = entities.NewOperationEffective(name)
	default:
		return nil, errors.Errorf("unknown operation kind '%s' for operation %s", rec[1], name)
	}

	base := baseOf(op)
	if rec[3] != "" {
		min, err := decimal.NewFromString(rec[3])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid size_minimum for operation %s", name)
		}
		base.SetSizeMinimum(min)
	}
	if rec[4] != "" {
		mult, err := decimal.NewFromString(rec[4])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid size_multiple for operation %s", name)
		}
		base.SetSizeMultiple(mult)
	}
	if rec[5] != "" {
		hidden, err := strconv.ParseBool(rec[5])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid hidden flag for operation %s", name)
		}
		base.SetHidden(hidden)
	}
	return op, nil
}

// baseOf exposes the shared definition embedded in every concrete kind.
func baseOf(op plan.Operation) *entities.Operation {
	switch o := op.(type) {
	case *entities.OperationFixedTime:
		return &o.Operation
	case *entities.OperationRouting:
		return &o.Operation
	case *entities.OperationAlternate:
		return &o.Operation
	case *entities.OperationEffective:
		return &o.Operation
	default:
		return nil
	}
}

func (l *Loader) loadSubOperations(filename string, m *Model) error {
	header := []string{"parent", "child", "effective_from", "effective_to"}
	records, err := readRecords(filename, header, true)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for i, rec := range records {
		parent := m.Operations.FindOperation(rec[0])
		child := m.Operations.FindOperation(rec[1])
		if parent == nil || child == nil {
			result = multierror.Append(result,
				errors.Errorf("suboperations.csv row %d: unknown operation in %s -> %s", i+2, rec[0], rec[1]))
			continue
		}
		switch p := parent.(type) {
		case *entities.OperationRouting:
			p.AddSubOperation(child)
		case *entities.OperationAlternate:
			p.AddSubOperation(child)
		case *entities.OperationEffective:
			from, to, err := parseWindow(rec[2], rec[3])
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "suboperations.csv row %d", i+2))
				continue
			}
			p.AddSubOperation(child, from, to)
		default:
			result = multierror.Append(result,
				errors.Errorf("suboperations.csv row %d: operation %s can't have sub-operations", i+2, rec[0]))
		}
	}
	return result.ErrorOrNil()
}

func parseWindow(from, to string) (time.Time, time.Time, error) {
	var f, t time.Time
	var err error
	if from != "" {
		if f, err = time.Parse(time.RFC3339, from); err != nil {
			return f, t, errors.Wrap(err, "invalid effective_from")
		}
	}
	if to != "" {
		if t, err = time.Parse(time.RFC3339, to); err != nil {
			return f, t, errors.Wrap(err, "invalid effective_to")
		}
	}
	return f, t, nil
}

func (l *Loader) loadFlows(filename string, m *Model) error {
	header := []string{"operation", "buffer", "quantity_per", "type"}
	records, err := readRecords(filename, header, true)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for i, rec := range records {
		op := m.Operations.FindOperation(rec[0])
		if op == nil {
			result = multierror.Append(result, errors.Errorf("flows.csv row %d: unknown operation %s", i+2, rec[0]))
			continue
		}
		qty, err := decimal.NewFromString(rec[2])
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "flows.csv row %d", i+2))
			continue
		}
		typ := entities.FlowEnd
		switch rec[3] {
		case "start":
			typ = entities.FlowStart
		case "end", "":
		default:
			result = multierror.Append(result, errors.Errorf("flows.csv row %d: unknown flow type '%s'", i+2, rec[3]))
			continue
		}
		buffer, ok := m.Buffers[rec[1]]
		if !ok {
			buffer = entities.NewBuffer(rec[1], decimal.Zero)
			m.Buffers[rec[1]] = buffer
		}
		baseOf(op).AddFlow(entities.NewFlow(buffer, qty, typ))
	}
	return result.ErrorOrNil()
}

func (l *Loader) loadLoads(filename string, m *Model) error {
	header := []string{"operation", "resource", "usage_per"}
	records, err := readRecords(filename, header, true)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for i, rec := range records {
		op := m.Operations.FindOperation(rec[0])
		if op == nil {
			result = multierror.Append(result, errors.Errorf("loads.csv row %d: unknown operation %s", i+2, rec[0]))
			continue
		}
		usage, err := decimal.NewFromString(rec[2])
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "loads.csv row %d", i+2))
			continue
		}
		resource, ok := m.Resources[rec[1]]
		if !ok {
			resource = entities.NewResource(rec[1], decimal.Zero)
			m.Resources[rec[1]] = resource
		}
		baseOf(op).AddLoad(entities.NewLoad(resource, usage))
	}
	return result.ErrorOrNil()
}

func (l *Loader) loadDemands(filename string, m *Model) error {
	header := []string{"name", "operation", "quantity", "due"}
	records, err := readRecords(filename, header, true)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for i, rec := range records {
		op := m.Operations.FindOperation(rec[1])
		if op == nil {
			result = multierror.Append(result, errors.Errorf("demands.csv row %d: unknown operation %s", i+2, rec[1]))
			continue
		}
		qty, err := decimal.NewFromString(rec[2])
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "demands.csv row %d", i+2))
			continue
		}
		due, err := time.Parse(time.RFC3339, rec[3])
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "demands.csv row %d: invalid due date", i+2))
			continue
		}
		if err := m.Demands.SaveDemand(entities.NewDemand(rec[0], qty, due, op)); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "demands.csv row %d", i+2))
		}
	}
	return result.ErrorOrNil()
}

// Summary describes the loaded model for logging.
func (m *Model) Summary() string {
	return fmt.Sprintf("%d operations, %d demands, %d buffers, %d resources",
		len(m.Operations.GetAllOperations()), len(m.Demands.GetAllDemands()), len(m.Buffers), len(m.Resources))
}
