package scoring

import (
	"math"
	"strings"

	"github.com/philiplawlor/fm-copilot/internal/store"
)

// reasoningThreshold is the factor value above which a factor earns a clause
// in the human-readable reasoning string.
const reasoningThreshold = 0.7

// TechnicianFactors is the named factor set for a scored technician.
type TechnicianFactors struct {
	SkillsMatch       float64 `json:"skills_match"`
	LocationProximity float64 `json:"location_proximity"`
	Workload          float64 `json:"workload"`
	Availability      float64 `json:"availability"`
	PastPerformance   float64 `json:"past_performance"`
}

// VendorFactors is the named factor set for a scored vendor.
type VendorFactors struct {
	SpecialtyMatch float64 `json:"specialty_match"`
	CostRating     float64 `json:"cost_rating"`
	ResponseTime   float64 `json:"response_time"`
	Reliability    float64 `json:"reliability"`
}

type ScoredTechnician struct {
	TechnicianID    int64             `json:"technician_id"`
	ConfidenceScore float64           `json:"confidence_score"`
	Factors         TechnicianFactors `json:"factors"`
	Reasoning       string            `json:"reasoning"`
}

type ScoredVendor struct {
	VendorID               int64         `json:"vendor_id"`
	ConfidenceScore        float64       `json:"confidence_score"`
	Factors                VendorFactors `json:"factors"`
	EstimatedCost          float64       `json:"estimated_cost"`
	EstimatedResponseHours int           `json:"estimated_response_time_hours"`
	Reasoning              string        `json:"reasoning"`
}

// Scorer combines factor values into weighted confidence scores for both
// candidate kinds.
type Scorer struct {
	techWeights   TechnicianWeights
	vendorWeights VendorWeights
}

// NewScorer creates a Scorer after validating both weight sets.
func NewScorer(tw TechnicianWeights, vw VendorWeights) (*Scorer, error) {
	if err := tw.Validate(); err != nil {
		return nil, err
	}
	if err := vw.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{techWeights: tw, vendorWeights: vw}, nil
}

// ScoreTechnician computes the full factor set and weighted confidence score
// for one technician-work order pair.
func (s *Scorer) ScoreTechnician(tc *TechnicianContext) ScoredTechnician {
	factors := TechnicianFactors{
		SkillsMatch:       SkillsMatchFactor(tc),
		LocationProximity: LocationProximityFactor(tc),
		Workload:          WorkloadFactor(tc.Technician.CurrentWorkload),
		Availability:      AvailabilityFactor(tc.Technician.IsAvailable),
		PastPerformance:   PastPerformanceFactor(tc),
	}

	score := factors.SkillsMatch*s.techWeights.SkillsMatch +
		factors.LocationProximity*s.techWeights.LocationProximity +
		factors.Workload*s.techWeights.Workload +
		factors.Availability*s.techWeights.Availability +
		factors.PastPerformance*s.techWeights.PastPerformance

	return ScoredTechnician{
		TechnicianID: tc.Technician.ID,
		// Clamped so a reweighting can never push a score above 1.0.
		ConfidenceScore: math.Min(score, 1.0),
		Factors:         factors,
		Reasoning:       technicianReasoning(factors),
	}
}

// ScoreVendor computes the full factor set, weighted confidence score, and
// cost/response estimates for one vendor-work order pair.
func (s *Scorer) ScoreVendor(v *store.Vendor, wo *store.WorkOrderContext) ScoredVendor {
	factors := VendorFactors{
		SpecialtyMatch: SpecialtyMatchFactor(v, wo),
		CostRating:     CostRatingFactor(v),
		ResponseTime:   ResponseTimeFactor(v),
		Reliability:    ReliabilityFactor(v),
	}

	score := factors.SpecialtyMatch*s.vendorWeights.SpecialtyMatch +
		factors.CostRating*s.vendorWeights.CostRating +
		factors.ResponseTime*s.vendorWeights.ResponseTime +
		factors.Reliability*s.vendorWeights.Reliability

	return ScoredVendor{
		VendorID:               v.ID,
		ConfidenceScore:        math.Min(score, 1.0),
		Factors:                factors,
		EstimatedCost:          EstimateVendorCost(v),
		EstimatedResponseHours: EstimateResponseHours(v),
		Reasoning:              vendorReasoning(factors),
	}
}

func technicianReasoning(f TechnicianFactors) string {
	var reasons []string
	if f.SkillsMatch > reasoningThreshold {
		reasons = append(reasons, "Strong skills match")
	}
	if f.LocationProximity > reasoningThreshold {
		reasons = append(reasons, "Close to work site")
	}
	if f.Workload > reasoningThreshold {
		reasons = append(reasons, "Low current workload")
	}
	if f.PastPerformance > reasoningThreshold {
		reasons = append(reasons, "Good past performance")
	}
	if len(reasons) == 0 {
		return "Available technician"
	}
	return strings.Join(reasons, ", ")
}

func vendorReasoning(f VendorFactors) string {
	var reasons []string
	if f.SpecialtyMatch > reasoningThreshold {
		reasons = append(reasons, "Specialty matches")
	}
	if f.Reliability > reasoningThreshold {
		reasons = append(reasons, "High reliability")
	}
	if f.ResponseTime > reasoningThreshold {
		reasons = append(reasons, "Fast response time")
	}
	if f.CostRating > reasoningThreshold {
		reasons = append(reasons, "Good value")
	}
	if len(reasons) == 0 {
		return "Available vendor"
	}
	return strings.Join(reasons, ", ")
}
