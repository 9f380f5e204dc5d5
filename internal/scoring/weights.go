package scoring

import (
	"fmt"
	"math"
)

// TechnicianWeights defines the relative importance of the five technician
// factors. Weights must sum to 1.0 (±0.001 tolerance).
type TechnicianWeights struct {
	SkillsMatch       float64
	LocationProximity float64
	Workload          float64
	Availability      float64
	PastPerformance   float64
}

// DefaultTechnicianWeights returns the production weight distribution.
func DefaultTechnicianWeights() TechnicianWeights {
	return TechnicianWeights{
		SkillsMatch:       0.3,
		LocationProximity: 0.2,
		Workload:          0.2,
		Availability:      0.1,
		PastPerformance:   0.2,
	}
}

func (w TechnicianWeights) Sum() float64 {
	return w.SkillsMatch + w.LocationProximity + w.Workload + w.Availability + w.PastPerformance
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w TechnicianWeights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("technician weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range []float64{w.SkillsMatch, w.LocationProximity, w.Workload, w.Availability, w.PastPerformance} {
		if v < 0 {
			return fmt.Errorf("negative technician weight: %f", v)
		}
	}
	return nil
}

// VendorWeights defines the relative importance of the four vendor factors.
// The shape deliberately differs from TechnicianWeights; do not harmonize
// them, rebalancing silently changes recommendation outcomes.
type VendorWeights struct {
	SpecialtyMatch float64
	CostRating     float64
	ResponseTime   float64
	Reliability    float64
}

// DefaultVendorWeights returns the production weight distribution.
func DefaultVendorWeights() VendorWeights {
	return VendorWeights{
		SpecialtyMatch: 0.3,
		CostRating:     0.2,
		ResponseTime:   0.2,
		Reliability:    0.3,
	}
}

func (w VendorWeights) Sum() float64 {
	return w.SpecialtyMatch + w.CostRating + w.ResponseTime + w.Reliability
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w VendorWeights) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("vendor weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range []float64{w.SpecialtyMatch, w.CostRating, w.ResponseTime, w.Reliability} {
		if v < 0 {
			return fmt.Errorf("negative vendor weight: %f", v)
		}
	}
	return nil
}
