package cmms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FiixClient pulls open work orders from a Fiix tenant.
type FiixClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewFiixClient(baseURL, apiKey string) *FiixClient {
	return &FiixClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *FiixClient) Name() string { return "fiix" }

func (c *FiixClient) doReq(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fiix %s %s: %d %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

type fiixWorkOrder struct {
	ID          int64  `json:"id"`
	Summary     string `json:"strDescription"`
	Notes       string `json:"strNotes"`
	Priority    string `json:"strPriority"`
	Status      string `json:"strWorkOrderStatus"`
	LocationStr string `json:"strLocation"`
}

func (c *FiixClient) FetchWorkOrders(ctx context.Context) ([]ExternalWorkOrder, error) {
	data, err := c.doReq(ctx, "GET", "/api/workorders?status=open")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Data []fiixWorkOrder `json:"data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	orders := make([]ExternalWorkOrder, 0, len(payload.Data))
	for _, wo := range payload.Data {
		orders = append(orders, ExternalWorkOrder{
			ExternalID:  fmt.Sprintf("%d", wo.ID),
			Title:       wo.Summary,
			Description: wo.Notes,
			Priority:    wo.Priority,
			Status:      wo.Status,
			Location:    wo.LocationStr,
		})
	}
	return orders, nil
}
