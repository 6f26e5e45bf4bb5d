package profitability

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"campos/internal/core/types"
)

// IncomeSource sums harvest income (quantity_kg * price_per_kg, missing price = 0)
// per field over harvests dated in year.
type IncomeSource interface {
	IncomeByField(ctx context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error)
}

// LaborSource sums actual labor value per field for plannings of year.
type LaborSource interface {
	LaborByField(ctx context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error)
}

// InputSource sums input usage cost per field over usages dated in year.
type InputSource interface {
	InputsByField(ctx context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error)
}

// OtherCostSource sums ledger costs dated in year whose type is neither labor nor input.
type OtherCostSource interface {
	OtherCostsByField(ctx context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error)
}

// Sources bundles the four metric sources.
type Sources struct {
	Income IncomeSource
	Labor  LaborSource
	Inputs InputSource
	Other  OtherCostSource
}

// Aggregator computes Metrics per field from the four sources.
type Aggregator struct {
	sources  Sources
	parallel bool
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithParallelSources queries the four sources concurrently.
// The sources must then be safe for concurrent use, which rules out a shared transaction.
func WithParallelSources(enabled bool) AggregatorOption {
	return func(a *Aggregator) {
		a.parallel = enabled
	}
}

// NewAggregator creates a new Aggregator.
func NewAggregator(sources Sources, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{sources: sources}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ComputeMetrics returns the metrics of a single field.
func (a *Aggregator) ComputeMetrics(ctx context.Context, companyID, fieldID int64, year int) (Metrics, error) {
	all, err := a.ComputeAll(ctx, companyID, year, []int64{fieldID})
	if err != nil {
		return Metrics{}, err
	}
	return all[fieldID], nil
}

// ComputeAll returns metrics for every id in fieldIDs, one query per source.
// Every requested id is present in the result; ids without rows map to zero Metrics.
// The first source failure aborts the whole computation.
func (a *Aggregator) ComputeAll(ctx context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]Metrics, error) {
	result := make(map[int64]Metrics, len(fieldIDs))
	if len(fieldIDs) == 0 {
		return result, nil
	}

	var income, labor, inputs, other map[int64]types.Money

	queries := []func(ctx context.Context) error{
		func(ctx context.Context) (err error) {
			income, err = a.sources.Income.IncomeByField(ctx, companyID, year, fieldIDs)
			return wrapSource("income", err)
		},
		func(ctx context.Context) (err error) {
			labor, err = a.sources.Labor.LaborByField(ctx, companyID, year, fieldIDs)
			return wrapSource("labor", err)
		},
		func(ctx context.Context) (err error) {
			inputs, err = a.sources.Inputs.InputsByField(ctx, companyID, year, fieldIDs)
			return wrapSource("inputs", err)
		},
		func(ctx context.Context) (err error) {
			other, err = a.sources.Other.OtherCostsByField(ctx, companyID, year, fieldIDs)
			return wrapSource("other costs", err)
		},
	}

	if err := a.run(ctx, queries); err != nil {
		return nil, err
	}

	// Missing keys read as decimal zero.
	for _, id := range fieldIDs {
		result[id] = Metrics{
			Income: income[id],
			Labor:  labor[id],
			Inputs: inputs[id],
			Other:  other[id],
		}
	}
	return result, nil
}

func (a *Aggregator) run(ctx context.Context, queries []func(ctx context.Context) error) error {
	if !a.parallel {
		for _, q := range queries {
			if err := q(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, q := range queries {
		g.Go(func() error { return q(gctx) })
	}
	return g.Wait()
}

func wrapSource(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s source: %w", name, err)
}
