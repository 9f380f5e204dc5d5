package scoring

import (
	"strings"

	"github.com/philiplawlor/fm-copilot/internal/store"
)

// Fixed trade term groups for specialty matching. A category that names one
// of a group's terms pairs with a vendor whose specialty words hit the same
// group.
var (
	hvacTerms       = []string{"hvac", "heating", "ventilation", "air conditioning"}
	electricalTerms = []string{"electrical", "electric", "power"}
	plumbingTerms   = []string{"plumbing", "pipe", "water"}
)

// SpecialtyMatchFactor scores how well a vendor's free-text specialty covers
// the work order's asset category: direct substring 1.0, same trade group
// 0.8, unrelated 0.3, missing data 0.5.
func SpecialtyMatchFactor(v *store.Vendor, wo *store.WorkOrderContext) float64 {
	specialty := strings.ToLower(v.Specialty)
	category := strings.ToLower(wo.CategoryName)
	if specialty == "" || category == "" {
		return 0.5
	}

	if strings.Contains(specialty, category) {
		return 1.0
	}

	specialtyWords := strings.Fields(specialty)
	for _, group := range [][]string{hvacTerms, electricalTerms, plumbingTerms} {
		if categoryNamesGroup(category, group) && wordsHitGroup(specialtyWords, group) {
			return 0.8
		}
	}
	return 0.3
}

func categoryNamesGroup(category string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(category, term) {
			return true
		}
	}
	return false
}

func wordsHitGroup(words, terms []string) bool {
	for _, word := range words {
		for _, term := range terms {
			if word == term {
				return true
			}
		}
	}
	return false
}

// CostRatingFactor uses the vendor rating as a value-for-money proxy; there
// is no real pricing data. Unrated vendors count as a middling 3.0.
func CostRatingFactor(v *store.Vendor) float64 {
	rating := v.AverageRating
	if rating == 0 {
		rating = 3.0
	}
	return rating / 5.0
}

// ResponseTimeFactor keys off the free-text SLA description. Missing SLA is
// neutral 0.5; an SLA that matches no known phrasing scores a low 0.2.
func ResponseTimeFactor(v *store.Vendor) float64 {
	if v.ServiceLevelAgreement == "" {
		return 0.5
	}
	sla := strings.ToLower(v.ServiceLevelAgreement)

	switch {
	case strings.Contains(sla, "immediate") || strings.Contains(sla, "1 hour"):
		return 1.0
	case strings.Contains(sla, "2 hour") || strings.Contains(sla, "2hr"):
		return 0.8
	case strings.Contains(sla, "4 hour") || strings.Contains(sla, "4hr"):
		return 0.6
	case strings.Contains(sla, "24 hour") || strings.Contains(sla, "same day"):
		return 0.4
	default:
		return 0.2
	}
}

// ReliabilityFactor normalizes the 0-5 vendor rating to [0,1].
func ReliabilityFactor(v *store.Vendor) float64 {
	return clamp(v.AverageRating/5.0, 0, 1)
}

// EstimateVendorCost derives a synthetic hourly rate from the vendor rating:
// base 150, with up to +50% for the lowest-rated vendors.
func EstimateVendorCost(v *store.Vendor) float64 {
	const baseCost = 150.0
	return baseCost * (1 + (5-v.AverageRating)*0.1)
}

// EstimateResponseHours mirrors the SLA keyword ladder as hour counts.
func EstimateResponseHours(v *store.Vendor) int {
	if v.ServiceLevelAgreement == "" {
		return 4
	}
	sla := strings.ToLower(v.ServiceLevelAgreement)

	switch {
	case strings.Contains(sla, "immediate") || strings.Contains(sla, "1 hour"):
		return 1
	case strings.Contains(sla, "2 hour") || strings.Contains(sla, "2hr"):
		return 2
	case strings.Contains(sla, "4 hour") || strings.Contains(sla, "4hr"):
		return 4
	case strings.Contains(sla, "24 hour") || strings.Contains(sla, "same day"):
		return 8
	default:
		return 4
	}
}
