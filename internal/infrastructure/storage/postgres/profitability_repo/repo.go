// Package profitability_repo provides the PostgreSQL field repository and metric sources
// for profitability reports. Every query is scoped by company id.
package profitability_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"campos/internal/core/types"
	"campos/internal/domain/profitability"
	"campos/internal/infrastructure/storage/postgres"
)

var (
	_ profitability.FieldRepository = (*Repo)(nil)
	_ profitability.IncomeSource    = (*Repo)(nil)
	_ profitability.LaborSource     = (*Repo)(nil)
	_ profitability.InputSource     = (*Repo)(nil)
	_ profitability.OtherCostSource = (*Repo)(nil)
)

// Cost types already accounted for by labor plannings and input usages.
var excludedCostTypes = []string{"labor", "input"}

// Repo reads fields, plantings and the four financial sources.
// It runs on the transaction in ctx when there is one, otherwise on the pool.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// New creates a new profitability repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Sources returns r wired as every metric source.
func (r *Repo) Sources() profitability.Sources {
	return profitability.Sources{Income: r, Labor: r, Inputs: r, Other: r}
}

type fieldRow struct {
	ID           int64    `db:"id"`
	CompanyID    int64    `db:"company_id"`
	Name         string   `db:"name"`
	AreaHectares *float64 `db:"area_hectares"`
}

type plantingRow struct {
	PlantingID  int64  `db:"planting_id"`
	FieldID     int64  `db:"field_id"`
	Season      string `db:"season"`
	CropID      *int64 `db:"crop_id"`
	CropName    string `db:"crop_name"`
	CropVariety string `db:"crop_variety"`
	SpeciesName string `db:"species_name"`
	VarietyName string `db:"variety_name"`
}

// sumRow carries a NUMERIC sum as text so no precision is lost on the way to decimal.
type sumRow struct {
	FieldID int64  `db:"field_id"`
	Total   string `db:"total"`
}

// yearRange returns [Jan 1 of year, Jan 1 of year+1) so date filters can use indexes.
func yearRange(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

func (r *Repo) fieldsQuery(companyID int64, fieldIDs []int64) squirrel.SelectBuilder {
	q := r.builder.
		Select("f.id", "f.company_id", "f.name", "f.area_hectares::float8 AS area_hectares").
		From("fields f").
		Where(squirrel.Eq{"f.company_id": companyID}).
		OrderBy("f.id")
	if fieldIDs != nil {
		q = q.Where(squirrel.Eq{"f.id": fieldIDs})
	}
	return q
}

func (r *Repo) plantingsQuery(companyID int64, fieldIDs []int64) squirrel.SelectBuilder {
	q := r.builder.
		Select(
			"p.id AS planting_id",
			"p.field_id",
			"COALESCE(p.season, '') AS season",
			"p.crop_id",
			"COALESCE(c.name, '') AS crop_name",
			"COALESCE(c.variety, '') AS crop_variety",
			"COALESCE(s.name, '') AS species_name",
			"COALESCE(v.name, '') AS variety_name",
		).
		From("plantings p").
		Join("fields f ON f.id = p.field_id").
		LeftJoin("crops c ON c.id = p.crop_id").
		LeftJoin("species s ON s.id = c.species_id").
		LeftJoin("varieties v ON v.id = c.variety_id").
		Where(squirrel.Eq{"f.company_id": companyID}).
		OrderBy("p.field_id", "p.id")
	if fieldIDs != nil {
		q = q.Where(squirrel.Eq{"p.field_id": fieldIDs})
	}
	return q
}

func (r *Repo) incomeQuery(companyID int64, year int, fieldIDs []int64) squirrel.SelectBuilder {
	from, to := yearRange(year)
	return r.builder.
		Select("p.field_id", "COALESCE(SUM(h.quantity_kg * COALESCE(h.price_per_kg, 0)), 0)::text AS total").
		From("harvests h").
		Join("plantings p ON p.id = h.planting_id").
		Join("fields f ON f.id = p.field_id").
		Where(squirrel.Eq{"f.company_id": companyID}).
		Where(squirrel.GtOrEq{"h.harvest_date": from}).
		Where(squirrel.Lt{"h.harvest_date": to}).
		Where(squirrel.Eq{"p.field_id": fieldIDs}).
		GroupBy("p.field_id")
}

func (r *Repo) laborQuery(companyID int64, year int, fieldIDs []int64) squirrel.SelectBuilder {
	return r.builder.
		Select("lp.field_id", "COALESCE(SUM(lp.total_value_actual), 0)::text AS total").
		From("labor_plannings lp").
		Join("fields f ON f.id = lp.field_id").
		Where(squirrel.Eq{"f.company_id": companyID}).
		Where(squirrel.Eq{"lp.year": year}).
		Where(squirrel.Eq{"lp.field_id": fieldIDs}).
		GroupBy("lp.field_id")
}

func (r *Repo) inputsQuery(companyID int64, year int, fieldIDs []int64) squirrel.SelectBuilder {
	from, to := yearRange(year)
	return r.builder.
		Select("iu.field_id", "COALESCE(SUM(iu.total_cost), 0)::text AS total").
		From("input_usages iu").
		Join("fields f ON f.id = iu.field_id").
		Where(squirrel.Eq{"f.company_id": companyID}).
		Where(squirrel.GtOrEq{"iu.usage_date": from}).
		Where(squirrel.Lt{"iu.usage_date": to}).
		Where(squirrel.Eq{"iu.field_id": fieldIDs}).
		GroupBy("iu.field_id")
}

func (r *Repo) otherCostsQuery(companyID int64, year int, fieldIDs []int64) squirrel.SelectBuilder {
	from, to := yearRange(year)
	return r.builder.
		Select("c.field_id", "COALESCE(SUM(c.amount), 0)::text AS total").
		From("costs c").
		Join("fields f ON f.id = c.field_id").
		Where(squirrel.Eq{"f.company_id": companyID}).
		Where(squirrel.GtOrEq{"c.cost_date": from}).
		Where(squirrel.Lt{"c.cost_date": to}).
		Where(squirrel.NotEq{"c.type": excludedCostTypes}).
		Where(squirrel.Eq{"c.field_id": fieldIDs}).
		GroupBy("c.field_id")
}

// ListFields implements profitability.FieldRepository.
func (r *Repo) ListFields(ctx context.Context, companyID int64, fieldIDs []int64) ([]profitability.Field, error) {
	sql, args, err := r.fieldsQuery(companyID, fieldIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build fields query: %w", err)
	}

	var rows []fieldRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select fields: %w", err)
	}

	fields := make([]profitability.Field, len(rows))
	for i, row := range rows {
		fields[i] = profitability.Field{
			ID:           row.ID,
			CompanyID:    row.CompanyID,
			Name:         row.Name,
			AreaHectares: row.AreaHectares,
		}
	}
	return fields, nil
}

// ListPlantings implements profitability.FieldRepository.
func (r *Repo) ListPlantings(ctx context.Context, companyID int64, fieldIDs []int64) ([]profitability.PlantingCrop, error) {
	sql, args, err := r.plantingsQuery(companyID, fieldIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build plantings query: %w", err)
	}

	var rows []plantingRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select plantings: %w", err)
	}

	plantings := make([]profitability.PlantingCrop, len(rows))
	for i, row := range rows {
		plantings[i] = profitability.PlantingCrop(row)
	}
	return plantings, nil
}

// IncomeByField implements profitability.IncomeSource.
func (r *Repo) IncomeByField(ctx context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error) {
	return r.sumByField(ctx, "income", r.incomeQuery(companyID, year, fieldIDs))
}

// LaborByField implements profitability.LaborSource.
func (r *Repo) LaborByField(ctx context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error) {
	return r.sumByField(ctx, "labor", r.laborQuery(companyID, year, fieldIDs))
}

// InputsByField implements profitability.InputSource.
func (r *Repo) InputsByField(ctx context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error) {
	return r.sumByField(ctx, "inputs", r.inputsQuery(companyID, year, fieldIDs))
}

// OtherCostsByField implements profitability.OtherCostSource.
func (r *Repo) OtherCostsByField(ctx context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error) {
	return r.sumByField(ctx, "other costs", r.otherCostsQuery(companyID, year, fieldIDs))
}

func (r *Repo) sumByField(ctx context.Context, name string, q squirrel.SelectBuilder) (map[int64]types.Money, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", name, err)
	}

	var rows []sumRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("sum %s: %w", name, err)
	}

	out := make(map[int64]types.Money, len(rows))
	for _, row := range rows {
		total, err := types.ParseMoney(row.Total)
		if err != nil {
			return nil, fmt.Errorf("sum %s for field %d: %w", name, row.FieldID, err)
		}
		out[row.FieldID] = total
	}
	return out, nil
}
