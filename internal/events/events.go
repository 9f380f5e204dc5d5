package events

import "time"

type RecommendationProducedEvent struct {
	EventID         string    `json:"event_id"`
	WorkOrderID     int64     `json:"work_order_id"`
	OrganizationID  int64     `json:"organization_id"`
	AssigneeType    string    `json:"assignee_type"`
	AssigneeID      int64     `json:"assignee_id"`
	ConfidenceScore float64   `json:"confidence_score"`
	Reasoning       string    `json:"reasoning"`
	Timestamp       time.Time `json:"timestamp"`
}

type WorkOrderAssignedEvent struct {
	EventID        string    `json:"event_id"`
	WorkOrderID    int64     `json:"work_order_id"`
	OrganizationID int64     `json:"organization_id"`
	TechnicianID   *int64    `json:"technician_id,omitempty"`
	VendorID       *int64    `json:"vendor_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type WorkOrderCompletedEvent struct {
	EventID        string    `json:"event_id"`
	WorkOrderID    int64     `json:"work_order_id"`
	OrganizationID int64     `json:"organization_id"`
	Timestamp      time.Time `json:"timestamp"`
}

type IntegrationSyncedEvent struct {
	EventID     string    `json:"event_id"`
	SyncRunID   string    `json:"sync_run_id"`
	Integration string    `json:"integration"`
	Fetched     int       `json:"fetched"`
	Imported    int       `json:"imported"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
