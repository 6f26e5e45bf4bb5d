package profitability

import (
	"context"
	"slices"
	"sync"
	"time"

	"campos/internal/core/types"
)

// memStore is an in-memory FieldRepository and Sources backed by raw rows.
type memStore struct {
	mu sync.Mutex

	fields    []Field
	plantings []PlantingCrop
	harvests  []memHarvest
	labor     []memLabor
	inputs    []memInput
	costs     []memCost

	failOn string
	err    error
	calls  []string
}

type memHarvest struct {
	PlantingID int64
	Date       time.Time
	QuantityKg types.Money
	PricePerKg *types.Money
}

type memLabor struct {
	FieldID int64
	Year    int
	Actual  types.Money
}

type memInput struct {
	FieldID int64
	Date    time.Time
	Cost    types.Money
}

type memCost struct {
	FieldID int64
	Date    time.Time
	Type    string
	Amount  types.Money
}

func (s *memStore) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	if s.failOn == call {
		return s.err
	}
	return nil
}

func inScope(ids []int64, id int64) bool {
	return ids == nil || slices.Contains(ids, id)
}

func (s *memStore) fieldOf(id int64) (Field, bool) {
	for _, f := range s.fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func (s *memStore) owned(companyID, fieldID int64, ids []int64) bool {
	f, ok := s.fieldOf(fieldID)
	return ok && f.CompanyID == companyID && inScope(ids, fieldID)
}

func (s *memStore) ListFields(_ context.Context, companyID int64, fieldIDs []int64) ([]Field, error) {
	if err := s.record("fields"); err != nil {
		return nil, err
	}
	var out []Field
	for _, f := range s.fields {
		if f.CompanyID == companyID && inScope(fieldIDs, f.ID) {
			out = append(out, f)
		}
	}
	slices.SortFunc(out, func(a, b Field) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *memStore) ListPlantings(_ context.Context, companyID int64, fieldIDs []int64) ([]PlantingCrop, error) {
	if err := s.record("plantings"); err != nil {
		return nil, err
	}
	var out []PlantingCrop
	for _, p := range s.plantings {
		if s.owned(companyID, p.FieldID, fieldIDs) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b PlantingCrop) int {
		if a.FieldID != b.FieldID {
			return int(a.FieldID - b.FieldID)
		}
		return int(a.PlantingID - b.PlantingID)
	})
	return out, nil
}

func (s *memStore) IncomeByField(_ context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error) {
	if err := s.record("income"); err != nil {
		return nil, err
	}
	out := map[int64]types.Money{}
	for _, h := range s.harvests {
		if h.Date.Year() != year {
			continue
		}
		for _, p := range s.plantings {
			if p.PlantingID != h.PlantingID || !s.owned(companyID, p.FieldID, fieldIDs) {
				continue
			}
			price := types.Zero()
			if h.PricePerKg != nil {
				price = *h.PricePerKg
			}
			out[p.FieldID] = out[p.FieldID].Add(h.QuantityKg.Mul(price))
		}
	}
	return out, nil
}

func (s *memStore) LaborByField(_ context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error) {
	if err := s.record("labor"); err != nil {
		return nil, err
	}
	out := map[int64]types.Money{}
	for _, l := range s.labor {
		if l.Year == year && s.owned(companyID, l.FieldID, fieldIDs) {
			out[l.FieldID] = out[l.FieldID].Add(l.Actual)
		}
	}
	return out, nil
}

func (s *memStore) InputsByField(_ context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error) {
	if err := s.record("inputs"); err != nil {
		return nil, err
	}
	out := map[int64]types.Money{}
	for _, in := range s.inputs {
		if in.Date.Year() == year && s.owned(companyID, in.FieldID, fieldIDs) {
			out[in.FieldID] = out[in.FieldID].Add(in.Cost)
		}
	}
	return out, nil
}

func (s *memStore) OtherCostsByField(_ context.Context, companyID int64, year int, fieldIDs []int64) (map[int64]types.Money, error) {
	if err := s.record("other"); err != nil {
		return nil, err
	}
	out := map[int64]types.Money{}
	for _, c := range s.costs {
		if c.Type == "labor" || c.Type == "input" {
			continue
		}
		if c.Date.Year() == year && s.owned(companyID, c.FieldID, fieldIDs) {
			out[c.FieldID] = out[c.FieldID].Add(c.Amount)
		}
	}
	return out, nil
}

func (s *memStore) sources() Sources {
	return Sources{Income: s, Labor: s, Inputs: s, Other: s}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func money(s string) types.Money { return types.MustMoney(s) }

// scenarioStore holds Field F from the reference walkthrough plus an idle field
// and a field of another company.
func scenarioStore() *memStore {
	return &memStore{
		fields: []Field{
			{ID: 1, CompanyID: 7, Name: "Field F", AreaHectares: ptr(2.0)},
			{ID: 2, CompanyID: 7, Name: "Idle"},
			{ID: 3, CompanyID: 8, Name: "Neighbour", AreaHectares: ptr(5.0)},
		},
		plantings: []PlantingCrop{
			{PlantingID: 10, FieldID: 1, Season: "2024-2025", CropID: ptr(int64(100)), CropName: "Manzano", SpeciesName: "Apple", VarietyName: "Fuji"},
			{PlantingID: 30, FieldID: 3, Season: "2024", CropID: ptr(int64(300)), CropName: "Cherry"},
		},
		harvests: []memHarvest{
			{PlantingID: 10, Date: date(2024, time.March, 3), QuantityKg: money("1000"), PricePerKg: ptr(money("2.5"))},
			{PlantingID: 30, Date: date(2024, time.March, 3), QuantityKg: money("999"), PricePerKg: ptr(money("9"))},
		},
		labor: []memLabor{
			{FieldID: 1, Year: 2024, Actual: money("300")},
			{FieldID: 3, Year: 2024, Actual: money("1")},
		},
		inputs: []memInput{
			{FieldID: 1, Date: date(2024, time.May, 1), Cost: money("200")},
		},
		costs: []memCost{
			{FieldID: 1, Date: date(2024, time.June, 1), Type: "other", Amount: money("50")},
		},
	}
}
