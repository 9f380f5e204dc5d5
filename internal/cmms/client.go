// Package cmms pulls work orders from external maintenance platforms into the
// local store so the recommendation engine sees one unified backlog.
package cmms

import "context"

// ExternalWorkOrder is the provider-neutral shape a connector maps its
// upstream records into.
type ExternalWorkOrder struct {
	ExternalID  string `json:"external_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Location    string `json:"location"`
}

// Integration is one external CMMS connector.
type Integration interface {
	Name() string
	FetchWorkOrders(ctx context.Context) ([]ExternalWorkOrder, error)
}
