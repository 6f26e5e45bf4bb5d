package profitability

import (
	"context"
	"fmt"
)

// FieldRepository reads fields and their plantings for one company.
// A nil fieldIDs means all fields; ids of other companies are never returned.
type FieldRepository interface {
	// ListFields returns fields ordered by id.
	ListFields(ctx context.Context, companyID int64, fieldIDs []int64) ([]Field, error)
	// ListPlantings returns plantings ordered by field id, then planting id.
	ListPlantings(ctx context.Context, companyID int64, fieldIDs []int64) ([]PlantingCrop, error)
}

// Resolver selects the fields in scope and labels each with its crop for the year.
type Resolver struct {
	repo FieldRepository
}

// NewResolver creates a new Resolver.
func NewResolver(repo FieldRepository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveFields returns one entry per company field, intersected with fieldIDs when non-nil.
// The label comes from the first planting (lowest id) whose season matches year.
func (r *Resolver) ResolveFields(ctx context.Context, companyID int64, year int, fieldIDs []int64) ([]ResolvedField, error) {
	if fieldIDs != nil && len(fieldIDs) == 0 {
		return []ResolvedField{}, nil
	}

	fields, err := r.repo.ListFields(ctx, companyID, fieldIDs)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	if len(fields) == 0 {
		return []ResolvedField{}, nil
	}

	ids := make([]int64, len(fields))
	for i, f := range fields {
		ids[i] = f.ID
	}

	plantings, err := r.repo.ListPlantings(ctx, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("list plantings: %w", err)
	}

	firstMatch := make(map[int64]*PlantingCrop, len(fields))
	for i := range plantings {
		p := &plantings[i]
		if _, seen := firstMatch[p.FieldID]; seen {
			continue
		}
		if SeasonMatchesYear(p.Season, year) {
			firstMatch[p.FieldID] = p
		}
	}

	resolved := make([]ResolvedField, 0, len(fields))
	for _, f := range fields {
		resolved = append(resolved, ResolvedField{
			Field:     f,
			CropLabel: CropLabel(firstMatch[f.ID]),
		})
	}
	return resolved, nil
}
