package pricing

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Request and response message types of the calculation protocol.
const (
	TypeCalculateTotal = "CALCULATE_TOTAL_PRICE"
	TypeReport         = "GENERATE_PRICE_REPORT"
	TypeValidate       = "VALIDATE_PRICE_DATA"
	TypeOptimize       = "OPTIMIZE_PRICE_STRUCTURE"

	TypeTotalCalculated    = "TOTAL_PRICE_CALCULATED"
	TypeReportGenerated    = "PRICE_REPORT_GENERATED"
	TypeDataValidated      = "PRICE_DATA_VALIDATED"
	TypeStructureOptimized = "PRICE_STRUCTURE_OPTIMIZED"
	TypeError              = "ERROR"
)

type Request struct {
	Type string    `json:"type"`
	Data PriceData `json:"data"`
}

type Response struct {
	Type   string `json:"type"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MetricType returns t when it is a known request type and "unknown"
// otherwise, keeping the metric label set bounded.
func MetricType(t string) string {
	switch t {
	case TypeCalculateTotal, TypeReport, TypeValidate, TypeOptimize:
		return t
	}
	return "unknown"
}

// Dispatcher routes calculation requests by message type.
type Dispatcher struct {
	calc  *Calculator
	limit int
}

func NewDispatcher(calc *Calculator, limit int) *Dispatcher {
	if limit <= 0 {
		limit = 4
	}
	return &Dispatcher{calc: calc, limit: limit}
}

func (d *Dispatcher) Handle(req Request) Response {
	switch req.Type {
	case TypeCalculateTotal:
		return Response{Type: TypeTotalCalculated, Result: d.calc.Total(req.Data)}
	case TypeReport:
		return Response{Type: TypeReportGenerated, Result: d.calc.Report(req.Data)}
	case TypeValidate:
		return Response{Type: TypeDataValidated, Result: d.calc.Validate(req.Data)}
	case TypeOptimize:
		return Response{Type: TypeStructureOptimized, Result: d.calc.Optimize(req.Data)}
	default:
		return Response{Type: TypeError, Error: "Unknown message type"}
	}
}

// Batch handles requests concurrently and returns responses in request order.
// It stops early only when ctx is cancelled.
func (d *Dispatcher) Batch(ctx context.Context, reqs []Request) ([]Response, error) {
	out := make([]Response, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = d.Handle(req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
