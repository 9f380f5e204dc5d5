package cmms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UpKeepClient pulls open work orders from an UpKeep account.
type UpKeepClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewUpKeepClient(baseURL, token string) *UpKeepClient {
	return &UpKeepClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *UpKeepClient) Name() string { return "upkeep" }

func (c *UpKeepClient) doReq(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
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
		return nil, fmt.Errorf("upkeep %s %s: %d %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

type upkeepWorkOrder struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Location    string `json:"locationName"`
}

func (c *UpKeepClient) FetchWorkOrders(ctx context.Context) ([]ExternalWorkOrder, error) {
	data, err := c.doReq(ctx, "GET", "/api/v2/work-orders?status=open")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Data []upkeepWorkOrder `json:"data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	orders := make([]ExternalWorkOrder, 0, len(payload.Data))
	for _, wo := range payload.Data {
		orders = append(orders, ExternalWorkOrder{
			ExternalID:  wo.ID,
			Title:       wo.Title,
			Description: wo.Description,
			Priority:    wo.Priority,
			Status:      wo.Status,
			Location:    wo.Location,
		})
	}
	return orders, nil
}
