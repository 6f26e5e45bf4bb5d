// Package main seeds a demo company whose profitability report is known in advance.
//
// For -year 2024 the report shows "Field F" (Apple (Fuji), 2 ha) with income 2500,
// costs 550, margin 1950 and margin 78%, and an idle field labelled "Sin Cuartel".
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"campos/internal/config"
	"campos/internal/infrastructure/storage/postgres"
	"campos/pkg/logger"
)

func main() {
	var (
		company = flag.String("company", "Demo Agrícola", "company name")
		year    = flag.Int("year", 2024, "year the demo activity is dated in")
	)
	flag.Parse()

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool, cfg.DB.StatementTimeout)

	var companyID int64
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var seedErr error
		companyID, seedErr = seed(ctx, txm.GetQuerier(ctx), *company, *year)
		return seedErr
	})
	if err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Infow("seeding completed",
		"company_id", companyID,
		"year", *year,
		"hint", "go run ./cmd/devtoken -company "+strconv.FormatInt(companyID, 10),
	)
}

func seed(ctx context.Context, q postgres.Querier, companyName string, year int) (int64, error) {
	insert := func(what, sql string, args ...any) (int64, error) {
		var id int64
		if err := q.QueryRow(ctx, sql+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert %s: %w", what, err)
		}
		return id, nil
	}
	on := func(month time.Month, day int) time.Time {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}
	season := fmt.Sprintf("%d-%d", year, year+1)

	companyID, err := insert("company", `INSERT INTO companies (name) VALUES ($1)`, companyName)
	if err != nil {
		return 0, err
	}
	speciesID, err := insert("species", `INSERT INTO species (company_id, name) VALUES ($1, 'Apple')`, companyID)
	if err != nil {
		return 0, err
	}
	varietyID, err := insert("variety", `INSERT INTO varieties (species_id, name) VALUES ($1, 'Fuji')`, speciesID)
	if err != nil {
		return 0, err
	}
	cropID, err := insert("crop",
		`INSERT INTO crops (company_id, species_id, variety_id, name) VALUES ($1, $2, $3, 'Manzano')`,
		companyID, speciesID, varietyID)
	if err != nil {
		return 0, err
	}

	fieldID, err := insert("field", `INSERT INTO fields (company_id, name, area_hectares) VALUES ($1, 'Field F', 2)`, companyID)
	if err != nil {
		return 0, err
	}
	if _, err := insert("idle field", `INSERT INTO fields (company_id, name) VALUES ($1, 'Field G')`, companyID); err != nil {
		return 0, err
	}

	plantingID, err := insert("planting",
		`INSERT INTO plantings (field_id, crop_id, season) VALUES ($1, $2, $3)`,
		fieldID, cropID, season)
	if err != nil {
		return 0, err
	}

	rows := []struct {
		what string
		sql  string
		args []any
	}{
		{"harvest", `INSERT INTO harvests (planting_id, harvest_date, quantity_kg, price_per_kg) VALUES ($1, $2, 1000, 2.5)`,
			[]any{plantingID, on(time.March, 15)}},
		{"unpriced harvest", `INSERT INTO harvests (planting_id, harvest_date, quantity_kg) VALUES ($1, $2, 120)`,
			[]any{plantingID, on(time.March, 20)}},
		{"labor planning", `INSERT INTO labor_plannings (field_id, year, total_value_planned, total_value_actual) VALUES ($1, $2, 350, 300)`,
			[]any{fieldID, year}},
		{"input usage", `INSERT INTO input_usages (field_id, usage_date, quantity, total_cost) VALUES ($1, $2, 10, 200)`,
			[]any{fieldID, on(time.May, 2)}},
		{"other cost", `INSERT INTO costs (field_id, cost_date, type, description, amount) VALUES ($1, $2, 'other', 'Irrigation repair', 50)`,
			[]any{fieldID, on(time.June, 10)}},
		// Already counted through labor_plannings; must not show up as other cost.
		{"labor cost", `INSERT INTO costs (field_id, cost_date, type, description, amount) VALUES ($1, $2, 'labor', 'Pruning crew', 500)`,
			[]any{fieldID, on(time.July, 1)}},
	}
	for _, r := range rows {
		if _, err := insert(r.what, r.sql, r.args...); err != nil {
			return 0, err
		}
	}

	return companyID, nil
}
