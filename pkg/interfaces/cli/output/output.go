package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vsinha/opplan/pkg/domain/plan"
	"github.com/vsinha/opplan/pkg/infrastructure/repositories/csv"
)

// Config holds configuration for report generation.
type Config struct {
	Format  string // "text" or "json"
	Verbose bool
}

// Report is the flattened view of the planned model.
type Report struct {
	Plans     []PlanRow     `json:"plans"`
	Buffers   []BufferRow   `json:"buffers"`
	Resources []ResourceRow `json:"resources"`
}

// PlanRow describes one registered operation plan.
type PlanRow struct {
	ID        uint64    `json:"id"`
	Operation string    `json:"operation"`
	OwnerID   uint64    `json:"owner_id,omitempty"`
	Quantity  string    `json:"quantity"`
	Start     time.Time `json:"start,omitempty"`
	End       time.Time `json:"end,omitempty"`
	Locked    bool      `json:"locked,omitempty"`
	Demand    string    `json:"demand,omitempty"`
}

// BufferRow describes the planned movements of one buffer.
type BufferRow struct {
	Name      string `json:"name"`
	OnHand    string `json:"on_hand"`
	Movements int    `json:"movements"`
	Balance   string `json:"balance"`
}

// ResourceRow describes the planned usage of one resource.
type ResourceRow struct {
	Name     string `json:"name"`
	Capacity string `json:"capacity"`
	Loads    int    `json:"loads"`
	Usage    string `json:"usage"`
}

// BuildReport flattens the registered plans and the model's buffers and
// resources into a report.
func BuildReport(model *csv.Model) *Report {
	r := &Report{}

	for _, p := range plan.RegisteredPlans() {
		row := PlanRow{
			ID:        p.ID(),
			Operation: p.Operation().Name(),
			Quantity:  p.Quantity().String(),
			Start:     p.Start(),
			End:       p.End(),
			Locked:    p.Locked(),
		}
		if o := p.Owner(); o != nil {
			row.OwnerID = o.ID()
		}
		if d := p.Demand(); d != nil {
			row.Demand = d.Name()
		}
		r.Plans = append(r.Plans, row)
	}

	for _, name := range sortedKeys(model.Buffers) {
		b := model.Buffers[name]
		r.Buffers = append(r.Buffers, BufferRow{
			Name:      b.Name(),
			OnHand:    b.OnHand().String(),
			Movements: len(b.FlowPlans()),
			Balance:   b.PlannedBalance().String(),
		})
	}

	for _, name := range sortedKeys(model.Resources) {
		res := model.Resources[name]
		r.Resources = append(r.Resources, ResourceRow{
			Name:     res.Name(),
			Capacity: res.Capacity().String(),
			Loads:    len(res.LoadPlans()),
			Usage:    res.PlannedUsage().String(),
		})
	}

	return r
}

// Generate writes the report in the configured format.
func Generate(r *Report, config Config, out io.Writer) error {
	switch config.Format {
	case "text", "":
		return generateText(r, config, out)
	case "json":
		return generateJSON(r, out)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

func generateText(r *Report, config Config, out io.Writer) error {
	fmt.Fprintf(out, "Plan Summary\n")
	fmt.Fprintf(out, "============\n\n")
	fmt.Fprintf(out, "Operation plans: %d\n", len(r.Plans))
	fmt.Fprintf(out, "Buffers: %d\n", len(r.Buffers))
	fmt.Fprintf(out, "Resources: %d\n\n", len(r.Resources))

	if len(r.Plans) > 0 {
		fmt.Fprintf(out, "%-6s %-20s %-8s %-10s %-22s %-22s %-8s %-12s\n",
			"ID", "Operation", "Owner", "Qty", "Start", "End", "Locked", "Demand")
		for _, p := range r.Plans {
			owner := ""
			if p.OwnerID != 0 {
				owner = fmt.Sprintf("%d", p.OwnerID)
			}
			fmt.Fprintf(out, "%-6d %-20s %-8s %-10s %-22s %-22s %-8t %-12s\n",
				p.ID, p.Operation, owner, p.Quantity, formatDate(p.Start), formatDate(p.End), p.Locked, p.Demand)
		}
		fmt.Fprintln(out)
	}

	if config.Verbose {
		if len(r.Buffers) > 0 {
			fmt.Fprintf(out, "Material profile:\n")
			for _, b := range r.Buffers {
				fmt.Fprintf(out, "  %-20s on-hand %-10s movements %-4d balance %s\n",
					b.Name, b.OnHand, b.Movements, b.Balance)
			}
			fmt.Fprintln(out)
		}
		if len(r.Resources) > 0 {
			fmt.Fprintf(out, "Capacity profile:\n")
			for _, res := range r.Resources {
				fmt.Fprintf(out, "  %-20s capacity %-10s loads %-4d usage %s\n",
					res.Name, res.Capacity, res.Loads, res.Usage)
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}

func generateJSON(r *Report, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func sortedKeys[M map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
