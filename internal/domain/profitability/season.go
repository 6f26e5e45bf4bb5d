package profitability

import (
	"strconv"
	"strings"
)

// NoCropLabel is shown for fields without a crop planted in the year.
const NoCropLabel = "Sin Cuartel"

// SeasonMatchesYear reports whether a free-text season such as "2024-2025"
// belongs to year. Matching is substring containment of the decimal year.
func SeasonMatchesYear(season string, year int) bool {
	return strings.Contains(season, strconv.Itoa(year))
}

// CropLabel renders "Species (Variety)" for a planting.
// Species name wins over crop name; the Variety entity wins over the crop's free-text variety.
func CropLabel(p *PlantingCrop) string {
	if p == nil || p.CropID == nil {
		return NoCropLabel
	}

	name := firstNonEmpty(p.SpeciesName, p.CropName)
	variety := firstNonEmpty(p.VarietyName, p.CropVariety)

	switch {
	case name == "" && variety == "":
		return NoCropLabel
	case name == "":
		return variety
	case variety == "":
		return name
	default:
		return name + " (" + variety + ")"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
