package cmms

import "context"

// SyncResult is the outcome of one integration's fetch within a sync pass.
type SyncResult struct {
	Integration string
	Orders      []ExternalWorkOrder
	Err         error
}

// Manager holds the registered integrations and fans sync passes over them.
type Manager struct {
	integrations []Integration
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Register(i Integration) {
	m.integrations = append(m.integrations, i)
}

func (m *Manager) Integrations() []Integration {
	return m.integrations
}

// SyncAll fetches from every integration and returns one result per
// integration in registration order. A failing integration records its error
// and does not block the others.
func (m *Manager) SyncAll(ctx context.Context) []SyncResult {
	results := make([]SyncResult, 0, len(m.integrations))
	for _, integration := range m.integrations {
		orders, err := integration.FetchWorkOrders(ctx)
		results = append(results, SyncResult{
			Integration: integration.Name(),
			Orders:      orders,
			Err:         err,
		})
	}
	return results
}
