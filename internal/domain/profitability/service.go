package profitability

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"campos/internal/core/apperror"
	"campos/internal/core/tx"
	"campos/pkg/logger"
)

var tracer = otel.Tracer("campos/profitability")

const (
	MinYear = 1900
	MaxYear = 9999

	DefaultMaxFields = 500
)

// Service generates profitability reports.
type Service struct {
	resolver   *Resolver
	aggregator *Aggregator
	txm        tx.ReadOnlyManager
	maxFields  int
	parallel   bool
}

// ServiceConfig tunes a Service.
type ServiceConfig struct {
	// ParallelSources runs the four source queries concurrently outside a transaction.
	// Sequential mode reads everything inside one snapshot.
	ParallelSources bool
	MaxFields       int
}

// NewService creates a new profitability service.
// txm may be nil, in which case sequential reads run without a snapshot.
func NewService(repo FieldRepository, sources Sources, txm tx.ReadOnlyManager, cfg ServiceConfig) *Service {
	maxFields := cfg.MaxFields
	if maxFields <= 0 {
		maxFields = DefaultMaxFields
	}
	return &Service{
		resolver:   NewResolver(repo),
		aggregator: NewAggregator(sources, WithParallelSources(cfg.ParallelSources)),
		txm:        txm,
		maxFields:  maxFields,
		parallel:   cfg.ParallelSources,
	}
}

// GenerateReport resolves the fields in scope, aggregates their metrics and ranks them.
// Invalid input is rejected before any read; any read failure aborts the whole report.
func (s *Service) GenerateReport(ctx context.Context, q Query) (report *Report, err error) {
	ctx, span := tracer.Start(ctx, "profitability.GenerateReport",
		trace.WithAttributes(
			attribute.Int64("company.id", q.CompanyID),
			attribute.Int("report.year", q.Year),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	q, err = s.normalize(q)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	var rows []FieldMetrics

	load := func(ctx context.Context) error {
		var loadErr error
		rows, loadErr = s.load(ctx, q)
		return loadErr
	}
	if s.txm != nil && !s.parallel {
		err = s.txm.Snapshot(ctx, load)
	} else {
		err = load(ctx)
	}
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		logger.Warn(ctx, "profitability report aborted",
			"company_id", q.CompanyID,
			"year", q.Year,
			"error", err,
		)
		return nil, apperror.NewDatabase(fmt.Errorf("generate profitability report: %w", err))
	}

	r := BuildReport(rows)
	r.CompanyID = q.CompanyID
	r.Year = q.Year

	span.SetAttributes(attribute.Int("report.fields", len(r.ByField)))
	logger.Info(ctx, "profitability report generated",
		"company_id", q.CompanyID,
		"year", q.Year,
		"fields", len(r.ByField),
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
	return &r, nil
}

func (s *Service) load(ctx context.Context, q Query) ([]FieldMetrics, error) {
	fields, err := s.resolver.ResolveFields(ctx, q.CompanyID, q.Year, q.FieldIDs)
	if err != nil {
		return nil, err
	}

	if q.FieldIDs != nil {
		if unknown := unknownIDs(q.FieldIDs, fields); len(unknown) > 0 {
			return nil, apperror.NewValidation("unknown field ids").
				WithDetail("unknown_field_ids", unknown)
		}
	}

	ids := make([]int64, len(fields))
	for i, f := range fields {
		ids[i] = f.ID
	}

	metrics, err := s.aggregator.ComputeAll(ctx, q.CompanyID, q.Year, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]FieldMetrics, len(fields))
	for i, f := range fields {
		rows[i] = FieldMetrics{Field: f, Metrics: metrics[f.ID]}
	}
	return rows, nil
}

// normalize validates q and de-duplicates its field ids keeping first occurrence order.
func (s *Service) normalize(q Query) (Query, error) {
	if q.CompanyID <= 0 {
		return q, apperror.NewUnauthorized("company scope is required")
	}
	if q.Year < MinYear || q.Year > MaxYear {
		return q, apperror.NewValidation(fmt.Sprintf("year must be between %d and %d", MinYear, MaxYear)).
			WithDetail("year", q.Year)
	}
	if q.FieldIDs == nil {
		return q, nil
	}

	seen := make(map[int64]struct{}, len(q.FieldIDs))
	ids := make([]int64, 0, len(q.FieldIDs))
	for _, id := range q.FieldIDs {
		if id <= 0 {
			return q, apperror.NewValidation("field ids must be positive").WithDetail("field_id", id)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) > s.maxFields {
		return q, apperror.NewValidation(fmt.Sprintf("at most %d field ids may be requested", s.maxFields)).
			WithDetail("count", len(ids))
	}
	q.FieldIDs = ids
	return q, nil
}

func unknownIDs(requested []int64, resolved []ResolvedField) []int64 {
	known := make(map[int64]struct{}, len(resolved))
	for _, f := range resolved {
		known[f.ID] = struct{}{}
	}
	var unknown []int64
	for _, id := range requested {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	slices.Sort(unknown)
	return unknown
}
