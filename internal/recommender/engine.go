// Package recommender turns a work order plus candidate snapshots into a
// ranked dispatch recommendation.
package recommender

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/philiplawlor/fm-copilot/internal/metrics"
	"github.com/philiplawlor/fm-copilot/internal/scoring"
	"github.com/philiplawlor/fm-copilot/internal/store"
)

var (
	// ErrWorkOrderNotFound means the work order does not exist or belongs to
	// another organization.
	ErrWorkOrderNotFound = errors.New("work order not found")

	// ErrNoCandidates means scoring ran but produced nothing to recommend.
	ErrNoCandidates = errors.New("no suitable technicians or vendors available for assignment")
)

const (
	// maxRecommendations caps each ranked list in the response.
	maxRecommendations = 5

	// strongMatchThreshold is the confidence above which a candidate wins
	// outright without comparing pools.
	strongMatchThreshold = 0.7
)

// Snapshot is the read-side view the engine needs. Satisfied by store.Store.
type Snapshot interface {
	GetWorkOrderContext(ctx context.Context, workOrderID, orgID int64) (*store.WorkOrderContext, error)
	ListAvailableTechnicians(ctx context.Context, orgID int64) ([]*store.Technician, error)
	ListActiveVendors(ctx context.Context, orgID int64) ([]*store.Vendor, error)
	GetRequiredSkills(ctx context.Context, categoryID int64) (store.SkillList, error)
	GetFeedbackScore(ctx context.Context, technicianID int64, windowDays int) (*float64, error)
}

// AssigneeType discriminates the recommended assignment.
type AssigneeType string

const (
	AssigneeTechnician AssigneeType = "technician"
	AssigneeVendor     AssigneeType = "vendor"
)

// Assignment is the single actionable pick at the head of a recommendation.
type Assignment struct {
	Type            AssigneeType `json:"type"`
	ID              int64        `json:"id"`
	ConfidenceScore float64      `json:"confidence_score"`
	Reasoning       string       `json:"reasoning"`
}

// RankedCandidates holds both candidate lists, each sorted by descending
// confidence and truncated to maxRecommendations.
type RankedCandidates struct {
	Technicians []scoring.ScoredTechnician `json:"technicians"`
	Vendors     []scoring.ScoredVendor     `json:"vendors"`
}

// Recommendation is the complete engine output for one work order.
type Recommendation struct {
	WorkOrderID     int64            `json:"work_order_id"`
	Recommendations RankedCandidates `json:"recommendations"`
	Recommended     Assignment       `json:"recommended_assignment"`
}

// Engine scores candidates and applies the assignment decision policy.
type Engine struct {
	snapshot Snapshot
	scorer   *scoring.Scorer
	logger   *slog.Logger
}

func NewEngine(snapshot Snapshot, scorer *scoring.Scorer, logger *slog.Logger) *Engine {
	return &Engine{snapshot: snapshot, scorer: scorer, logger: logger}
}

// Recommend produces ranked technician and vendor candidates for the work
// order and the single recommended assignment. Auxiliary lookup failures
// (required skills, feedback history) degrade to neutral factor defaults
// rather than failing the request; only a missing work order or a failed
// candidate listing is fatal.
func (e *Engine) Recommend(ctx context.Context, workOrderID, orgID int64) (*Recommendation, error) {
	wo, err := e.snapshot.GetWorkOrderContext(ctx, workOrderID, orgID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, ErrWorkOrderNotFound
	}

	techs, err := e.snapshot.ListAvailableTechnicians(ctx, orgID)
	if err != nil {
		return nil, err
	}
	vendors, err := e.snapshot.ListActiveVendors(ctx, orgID)
	if err != nil {
		return nil, err
	}

	scoredTechs := e.scoreTechnicians(ctx, wo, techs)
	scoredVendors := e.scoreVendors(wo, vendors)

	sort.SliceStable(scoredTechs, func(i, j int) bool {
		return scoredTechs[i].ConfidenceScore > scoredTechs[j].ConfidenceScore
	})
	sort.SliceStable(scoredVendors, func(i, j int) bool {
		return scoredVendors[i].ConfidenceScore > scoredVendors[j].ConfidenceScore
	})

	assignment, err := decideAssignment(scoredTechs, scoredVendors)
	if err != nil {
		return nil, err
	}

	if len(scoredTechs) > maxRecommendations {
		scoredTechs = scoredTechs[:maxRecommendations]
	}
	if len(scoredVendors) > maxRecommendations {
		scoredVendors = scoredVendors[:maxRecommendations]
	}

	metrics.RecommendedAssignments.WithLabelValues(string(assignment.Type)).Inc()

	return &Recommendation{
		WorkOrderID: workOrderID,
		Recommendations: RankedCandidates{
			Technicians: scoredTechs,
			Vendors:     scoredVendors,
		},
		Recommended: assignment,
	}, nil
}

func (e *Engine) scoreTechnicians(ctx context.Context, wo *store.WorkOrderContext, techs []*store.Technician) []scoring.ScoredTechnician {
	if len(techs) == 0 {
		return nil
	}

	// One requirements lookup serves every technician.
	var required store.SkillList
	if wo.AssetCategoryID != nil {
		categoryID := *wo.AssetCategoryID
		required = withDefault(e.logger, "required_skills", nil, func() (store.SkillList, error) {
			return e.snapshot.GetRequiredSkills(ctx, categoryID)
		})
	}

	// Feedback lookups are independent per technician; fan them out. Results
	// land by index so snapshot order is preserved.
	perf := make([]*float64, len(techs))
	var wg sync.WaitGroup
	for i := range techs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			technicianID := techs[i].ID
			perf[i] = withDefault(e.logger, "past_performance", nil, func() (*float64, error) {
				return e.snapshot.GetFeedbackScore(ctx, technicianID, store.FeedbackWindowDays)
			})
		}(i)
	}
	wg.Wait()

	scored := make([]scoring.ScoredTechnician, 0, len(techs))
	for i := range techs {
		scored = append(scored, e.scorer.ScoreTechnician(&scoring.TechnicianContext{
			Technician:      techs[i],
			WorkOrder:       wo,
			RequiredSkills:  required,
			PastPerformance: perf[i],
		}))
	}
	return scored
}

func (e *Engine) scoreVendors(wo *store.WorkOrderContext, vendors []*store.Vendor) []scoring.ScoredVendor {
	if len(vendors) == 0 {
		return nil
	}
	scored := make([]scoring.ScoredVendor, 0, len(vendors))
	for _, v := range vendors {
		scored = append(scored, e.scorer.ScoreVendor(v, wo))
	}
	return scored
}

// decideAssignment applies the assignment policy in order: a strong
// technician beats a strong vendor, ties between weak pools go to the
// technician.
func decideAssignment(techs []scoring.ScoredTechnician, vendors []scoring.ScoredVendor) (Assignment, error) {
	switch {
	case len(techs) > 0 && techs[0].ConfidenceScore > strongMatchThreshold:
		return technicianAssignment(techs[0]), nil
	case len(vendors) > 0 && vendors[0].ConfidenceScore > strongMatchThreshold:
		return vendorAssignment(vendors[0]), nil
	case len(techs) > 0 && (len(vendors) == 0 || techs[0].ConfidenceScore >= vendors[0].ConfidenceScore):
		return technicianAssignment(techs[0]), nil
	case len(vendors) > 0:
		return vendorAssignment(vendors[0]), nil
	default:
		return Assignment{}, ErrNoCandidates
	}
}

func technicianAssignment(t scoring.ScoredTechnician) Assignment {
	return Assignment{
		Type:            AssigneeTechnician,
		ID:              t.TechnicianID,
		ConfidenceScore: t.ConfidenceScore,
		Reasoning:       t.Reasoning,
	}
}

func vendorAssignment(v scoring.ScoredVendor) Assignment {
	return Assignment{
		Type:            AssigneeVendor,
		ID:              v.VendorID,
		ConfidenceScore: v.ConfidenceScore,
		Reasoning:       v.Reasoning,
	}
}

// withDefault runs an auxiliary lookup and absorbs its failure into a
// fallback value, logging and counting the degradation.
func withDefault[T any](logger *slog.Logger, factor string, fallback T, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		metrics.DegradedFactorLookups.WithLabelValues(factor).Inc()
		if logger != nil {
			logger.Warn("factor lookup degraded", "factor", factor, "error", err)
		}
		return fallback
	}
	return v
}
