// seed_demo.go — standalone script to post demo work orders via the API.
//
// Usage:
//
//	go run scripts/seed_demo.go -api http://localhost:8700 -org 1
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
)

type workOrder struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	AssetID     *int64 `json:"asset_id,omitempty"`
	SiteID      *int64 `json:"site_id,omitempty"`
}

var demoOrders = []workOrder{
	{Title: "HVAC unit not cooling", Description: "Rooftop unit 3 blowing warm air on floor 2", Priority: "high"},
	{Title: "Flickering lights in lobby", Description: "Ballast likely failing in the main entrance fixtures", Priority: "medium"},
	{Title: "Leaking pipe under break room sink", Description: "Slow drip, bucket in place", Priority: "high"},
	{Title: "Replace air filters", Description: "Quarterly filter swap for AHU 1 and 2", Priority: "low"},
	{Title: "Door closer sticking", Description: "East stairwell door slams shut", Priority: "low"},
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "API base URL")
	orgID := flag.Int64("org", 1, "X-Organization-ID header value")
	dryRun := flag.Bool("dry-run", false, "print work orders without posting")
	flag.Parse()

	for _, wo := range demoOrders {
		if *dryRun {
			fmt.Printf("would create: %s [%s]\n", wo.Title, wo.Priority)
			continue
		}

		body, err := json.Marshal(wo)
		if err != nil {
			log.Fatalf("marshal: %v", err)
		}
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/work-orders", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Organization-ID", fmt.Sprintf("%d", *orgID))

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Fatalf("post %q: %v", wo.Title, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			log.Fatalf("post %q: status %d", wo.Title, resp.StatusCode)
		}
		fmt.Printf("created: %s\n", wo.Title)
	}
}
