package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const workOrderColumns = `id, organization_id, title, description, status, priority,
	asset_id, site_id, assigned_technician_id, assigned_vendor_id,
	source, external_id,
	created_at, updated_at, completed_at`

func (s *PostgresStore) CreateWorkOrder(ctx context.Context, wo *WorkOrder) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO work_orders (organization_id, title, description, status, priority,
			asset_id, site_id, source, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		wo.OrganizationID, wo.Title, wo.Description, wo.Status, wo.Priority,
		wo.AssetID, wo.SiteID, wo.Source, wo.ExternalID,
	).Scan(&wo.ID, &wo.CreatedAt, &wo.UpdatedAt)
}

func (s *PostgresStore) GetWorkOrder(ctx context.Context, id, orgID int64) (*WorkOrder, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+workOrderColumns+`
		FROM work_orders WHERE id = $1 AND organization_id = $2`, id, orgID)
	wo, err := scanWorkOrder(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return wo, err
}

func (s *PostgresStore) ListWorkOrders(ctx context.Context, orgID int64, filter WorkOrderFilter) ([]*WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE organization_id = $1`
	args := []interface{}{orgID}
	n := 1

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.SiteID != nil {
		n++
		query += fmt.Sprintf(" AND site_id = $%d", n)
		args = append(args, *filter.SiteID)
	}
	if filter.AssignedTechnicianID != nil {
		n++
		query += fmt.Sprintf(" AND assigned_technician_id = $%d", n)
		args = append(args, *filter.AssignedTechnicianID)
	}
	if filter.AssignedVendorID != nil {
		n++
		query += fmt.Sprintf(" AND assigned_vendor_id = $%d", n)
		args = append(args, *filter.AssignedVendorID)
	}
	if filter.Source != "" {
		n++
		query += fmt.Sprintf(" AND source = $%d", n)
		args = append(args, filter.Source)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, wo)
	}
	return orders, rows.Err()
}

// AssignWorkOrder records the chosen assignee and moves the order to
// assigned. Exactly one of technicianID/vendorID is expected; the other is
// cleared. Returns nil when the order does not exist for the organization.
func (s *PostgresStore) AssignWorkOrder(ctx context.Context, id, orgID int64, technicianID, vendorID *int64) (*WorkOrder, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE work_orders SET
			assigned_technician_id = $3,
			assigned_vendor_id = $4,
			status = 'assigned',
			updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+workOrderColumns,
		id, orgID, technicianID, vendorID)
	wo, err := scanWorkOrder(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return wo, err
}

func (s *PostgresStore) CompleteWorkOrder(ctx context.Context, id, orgID int64) (*WorkOrder, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE work_orders SET
			status = 'completed',
			completed_at = now(),
			updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+workOrderColumns,
		id, orgID)
	wo, err := scanWorkOrder(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return wo, err
}

// ImportWorkOrder upserts an order fetched from an external CMMS, keyed by
// (organization, source, external id).
func (s *PostgresStore) ImportWorkOrder(ctx context.Context, wo *WorkOrder) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO work_orders (organization_id, title, description, status, priority,
			source, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (organization_id, source, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			updated_at = now()
		RETURNING id, created_at, updated_at`,
		wo.OrganizationID, wo.Title, wo.Description, wo.Status, wo.Priority,
		wo.Source, wo.ExternalID,
	).Scan(&wo.ID, &wo.CreatedAt, &wo.UpdatedAt)
}

func (s *PostgresStore) CreateFeedback(ctx context.Context, fb *WorkOrderFeedback) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO work_order_feedback (work_order_id, user_id, user_feedback, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		fb.WorkOrderID, fb.UserID, fb.Feedback, fb.Comment,
	).Scan(&fb.ID, &fb.CreatedAt)
}

func scanWorkOrder(row pgx.Row) (*WorkOrder, error) {
	wo := &WorkOrder{}
	var description, priority, source, externalID sql.NullString
	if err := row.Scan(
		&wo.ID, &wo.OrganizationID, &wo.Title, &description, &wo.Status, &priority,
		&wo.AssetID, &wo.SiteID, &wo.AssignedTechnicianID, &wo.AssignedVendorID,
		&source, &externalID,
		&wo.CreatedAt, &wo.UpdatedAt, &wo.CompletedAt,
	); err != nil {
		return nil, err
	}
	wo.Description = description.String
	wo.Priority = priority.String
	wo.Source = source.String
	wo.ExternalID = externalID.String
	return wo, nil
}
