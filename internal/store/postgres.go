package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// GetWorkOrderContext returns the dispatch view of a work order, or nil when
// the order does not exist for the organization.
func (s *PostgresStore) GetWorkOrderContext(ctx context.Context, workOrderID, orgID int64) (*WorkOrderContext, error) {
	wc := &WorkOrderContext{}
	err := s.pool.QueryRow(ctx, `
		SELECT wo.id, wo.organization_id,
		       a.asset_category_id,
		       COALESCE(ac.name, ''),
		       COALESCE(a.location_description, ''),
		       COALESCE(s.name, '')
		FROM work_orders wo
		LEFT JOIN assets a ON wo.asset_id = a.id
		LEFT JOIN asset_categories ac ON a.asset_category_id = ac.id
		LEFT JOIN sites s ON wo.site_id = s.id
		WHERE wo.id = $1 AND wo.organization_id = $2`,
		workOrderID, orgID,
	).Scan(&wc.WorkOrderID, &wc.OrganizationID, &wc.AssetCategoryID,
		&wc.CategoryName, &wc.AssetLocation, &wc.SiteName)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wc, nil
}

// ListAvailableTechnicians returns the organization's available technicians
// with their live workload counts, least-loaded first. The ordering is the
// deterministic snapshot order ties fall back to during ranking.
func (s *PostgresStore) ListAvailableTechnicians(ctx context.Context, orgID int64) ([]*Technician, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.id,
		       u.first_name || ' ' || u.last_name,
		       t.specializations,
		       COALESCE(t.current_location, ''),
		       (SELECT COUNT(*) FROM work_orders wo2
		        WHERE wo2.assigned_technician_id = t.id
		        AND wo2.status IN ('assigned', 'in_progress')) AS current_workload,
		       t.is_available
		FROM technicians t
		JOIN users u ON t.user_id = u.id
		WHERE t.organization_id = $1 AND t.is_available = TRUE
		ORDER BY current_workload ASC, t.id ASC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var techs []*Technician
	for rows.Next() {
		t := &Technician{}
		var rawSkills []byte
		if err := rows.Scan(&t.ID, &t.Name, &rawSkills, &t.CurrentLocation,
			&t.CurrentWorkload, &t.IsAvailable); err != nil {
			return nil, err
		}
		t.Specializations = ParseSkillList(rawSkills)
		techs = append(techs, t)
	}
	return techs, rows.Err()
}

// ListActiveVendors returns the organization's active vendors, best rated
// first.
func (s *PostgresStore) ListActiveVendors(ctx context.Context, orgID int64) ([]*Vendor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.id, v.name,
		       COALESCE(v.specialty, ''),
		       COALESCE(v.average_rating, 0),
		       COALESCE(v.service_level_agreement, ''),
		       v.is_active
		FROM vendors v
		WHERE v.organization_id = $1 AND v.is_active = TRUE
		ORDER BY v.average_rating DESC NULLS LAST, v.id ASC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []*Vendor
	for rows.Next() {
		v := &Vendor{}
		if err := rows.Scan(&v.ID, &v.Name, &v.Specialty, &v.AverageRating,
			&v.ServiceLevelAgreement, &v.IsActive); err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// GetRequiredSkills returns the skill requirements for an asset category, or
// nil when the category has none recorded.
func (s *PostgresStore) GetRequiredSkills(ctx context.Context, categoryID int64) (SkillList, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT required_skills FROM asset_categories WHERE id = $1`, categoryID,
	).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseSkillList(raw), nil
}

// GetFeedbackScore averages user feedback over the technician's completed
// work orders in the trailing window: positive=1.0, negative=0.0, else 0.5.
// Returns nil when no qualifying orders exist.
func (s *PostgresStore) GetFeedbackScore(ctx context.Context, technicianID int64, windowDays int) (*float64, error) {
	var score *float64
	err := s.pool.QueryRow(ctx, `
		SELECT AVG(CASE
			WHEN wof.user_feedback = 'positive' THEN 1.0
			WHEN wof.user_feedback = 'negative' THEN 0.0
			ELSE 0.5
		END)
		FROM work_orders wo
		LEFT JOIN work_order_feedback wof ON wo.id = wof.work_order_id
		WHERE wo.assigned_technician_id = $1
		AND wo.status = 'completed'
		AND wo.completed_at >= now() - make_interval(days => $2)`,
		technicianID, windowDays,
	).Scan(&score)
	if err != nil {
		return nil, err
	}
	return score, nil
}

func (s *PostgresStore) GetDispatchStats(ctx context.Context, orgID int64) (*DispatchStats, error) {
	stats := &DispatchStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'open' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'assigned' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'in_progress' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - created_at)) / 3600.0)
				FILTER (WHERE status = 'completed' AND completed_at IS NOT NULL), 0)
		FROM work_orders WHERE organization_id = $1`, orgID,
	).Scan(&stats.TotalOpen, &stats.TotalAssigned, &stats.TotalInProgress,
		&stats.TotalCompleted, &stats.AvgCompletionHours)
	return stats, err
}
