package store

import (
	"context"
	"time"
)

type WorkOrderStatus string

const (
	StatusOpen       WorkOrderStatus = "open"
	StatusAssigned   WorkOrderStatus = "assigned"
	StatusInProgress WorkOrderStatus = "in_progress"
	StatusCompleted  WorkOrderStatus = "completed"
	StatusCancelled  WorkOrderStatus = "cancelled"
)

// FeedbackWindowDays is the trailing window used when averaging technician
// feedback for the past-performance factor.
const FeedbackWindowDays = 90

type WorkOrder struct {
	ID             int64           `json:"id"`
	OrganizationID int64           `json:"organization_id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Status         WorkOrderStatus `json:"status"`
	Priority       string          `json:"priority,omitempty"`

	AssetID *int64 `json:"asset_id,omitempty"`
	SiteID  *int64 `json:"site_id,omitempty"`

	AssignedTechnicianID *int64 `json:"assigned_technician_id,omitempty"`
	AssignedVendorID     *int64 `json:"assigned_vendor_id,omitempty"`

	// Provenance for orders imported from an external CMMS.
	Source     string `json:"source,omitempty"`
	ExternalID string `json:"external_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// WorkOrderContext is the read-only view of a work order consumed by the
// dispatch engine: the order plus its asset category, asset location and site.
// Empty strings and nil ids mean the joined row was absent.
type WorkOrderContext struct {
	WorkOrderID     int64  `json:"work_order_id"`
	OrganizationID  int64  `json:"organization_id"`
	AssetCategoryID *int64 `json:"asset_category_id,omitempty"`
	CategoryName    string `json:"category_name,omitempty"`
	AssetLocation   string `json:"asset_location,omitempty"`
	SiteName        string `json:"site_name,omitempty"`
}

type Technician struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Specializations SkillList `json:"specializations"`
	CurrentLocation string    `json:"current_location,omitempty"`

	// Count of currently assigned/in-progress work orders.
	CurrentWorkload int  `json:"current_workload"`
	IsAvailable     bool `json:"is_available"`
}

type Vendor struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Specialty     string  `json:"specialty,omitempty"`
	AverageRating float64 `json:"average_rating"`

	// Free-text SLA description, e.g. "2 hour response".
	ServiceLevelAgreement string `json:"service_level_agreement,omitempty"`
	IsActive              bool   `json:"is_active"`
}

type WorkOrderFeedback struct {
	ID          int64     `json:"id"`
	WorkOrderID int64     `json:"work_order_id"`
	UserID      int64     `json:"user_id"`
	Feedback    string    `json:"feedback"` // positive, negative, neutral
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type WorkOrderFilter struct {
	Status               *WorkOrderStatus
	SiteID               *int64
	AssignedTechnicianID *int64
	AssignedVendorID     *int64
	Source               string
	Limit                int
	Offset               int
}

type DispatchStats struct {
	TotalOpen          int     `json:"total_open"`
	TotalAssigned      int     `json:"total_assigned"`
	TotalInProgress    int     `json:"total_in_progress"`
	TotalCompleted     int     `json:"total_completed"`
	AvgCompletionHours float64 `json:"avg_completion_hours"`
}

type Store interface {
	// Snapshot reads consumed by the dispatch engine.
	GetWorkOrderContext(ctx context.Context, workOrderID, orgID int64) (*WorkOrderContext, error)
	ListAvailableTechnicians(ctx context.Context, orgID int64) ([]*Technician, error)
	ListActiveVendors(ctx context.Context, orgID int64) ([]*Vendor, error)
	GetRequiredSkills(ctx context.Context, categoryID int64) (SkillList, error)
	GetFeedbackScore(ctx context.Context, technicianID int64, windowDays int) (*float64, error)

	// Work orders.
	CreateWorkOrder(ctx context.Context, wo *WorkOrder) error
	GetWorkOrder(ctx context.Context, id, orgID int64) (*WorkOrder, error)
	ListWorkOrders(ctx context.Context, orgID int64, filter WorkOrderFilter) ([]*WorkOrder, error)
	AssignWorkOrder(ctx context.Context, id, orgID int64, technicianID, vendorID *int64) (*WorkOrder, error)
	CompleteWorkOrder(ctx context.Context, id, orgID int64) (*WorkOrder, error)
	ImportWorkOrder(ctx context.Context, wo *WorkOrder) error

	CreateFeedback(ctx context.Context, fb *WorkOrderFeedback) error

	GetDispatchStats(ctx context.Context, orgID int64) (*DispatchStats, error)

	Close() error
}
