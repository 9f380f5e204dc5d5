package scoring

import (
	"strings"

	"github.com/philiplawlor/fm-copilot/internal/store"
)

// TechnicianContext bundles all inputs needed to score a single technician
// against a work order.
//
// RequiredSkills nil means the category requirement lookup was unavailable;
// the skills factor falls back to its neutral default. PastPerformance nil
// means no qualifying feedback history exists.
type TechnicianContext struct {
	Technician *store.Technician
	WorkOrder  *store.WorkOrderContext

	RequiredSkills  store.SkillList
	PastPerformance *float64
}

// SkillsMatchFactor returns the fraction of the category's required skills
// the technician covers, matched by case-insensitive substring in either
// direction. 0.5 when the category or its requirements are unknown.
func SkillsMatchFactor(tc *TechnicianContext) float64 {
	if tc.WorkOrder.AssetCategoryID == nil || tc.RequiredSkills == nil {
		return 0.5
	}
	if len(tc.RequiredSkills) == 0 {
		return 0.5
	}

	matched := 0
	for _, required := range tc.RequiredSkills {
		for _, skill := range tc.Technician.Specializations {
			if containsFold(skill, required) || containsFold(required, skill) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(tc.RequiredSkills))
}

// LocationProximityFactor is a crude text-proximity heuristic, not geocoding:
// exact match 1.0, technician already at the site 0.8, any overlapping
// location token 0.6, disjoint 0.3, missing data 0.5.
func LocationProximityFactor(tc *TechnicianContext) float64 {
	techLoc := strings.ToLower(tc.Technician.CurrentLocation)
	assetLoc := strings.ToLower(tc.WorkOrder.AssetLocation)
	if techLoc == "" || assetLoc == "" {
		return 0.5
	}

	if techLoc == assetLoc {
		return 1.0
	}

	if site := strings.ToLower(tc.WorkOrder.SiteName); site != "" && strings.Contains(techLoc, site) {
		return 0.8
	}

	for _, techWord := range strings.Fields(techLoc) {
		for _, assetWord := range strings.Fields(assetLoc) {
			if strings.Contains(assetWord, techWord) || strings.Contains(techWord, assetWord) {
				return 0.6
			}
		}
	}
	return 0.3
}

// WorkloadFactor rewards headroom: fewer open assignments score higher.
// Exact step table, no interpolation.
func WorkloadFactor(currentWorkload int) float64 {
	switch {
	case currentWorkload == 0:
		return 1.0
	case currentWorkload <= 2:
		return 0.8
	case currentWorkload <= 4:
		return 0.6
	case currentWorkload <= 6:
		return 0.4
	default:
		return 0.2
	}
}

// AvailabilityFactor re-checks the availability flag even though unavailable
// technicians are filtered out upstream.
func AvailabilityFactor(available bool) float64 {
	if available {
		return 1.0
	}
	return 0.0
}

// PastPerformanceFactor maps the trailing feedback average onto [0,1],
// defaulting to 0.5 when no history exists.
func PastPerformanceFactor(tc *TechnicianContext) float64 {
	if tc.PastPerformance == nil {
		return 0.5
	}
	return clamp(*tc.PastPerformance, 0, 1)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
