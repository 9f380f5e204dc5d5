//go:build integration

package store

import (
	"context"
	"os"
	"testing"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		// Truncate in dependency order
		_, _ = s.pool.Exec(ctx, "TRUNCATE work_order_feedback CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE work_orders CASCADE")
		s.Close()
	})

	return s
}

func TestCreateAndGetWorkOrder(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	wo := &WorkOrder{
		OrganizationID: 1,
		Title:          "Integration Test Work Order",
		Description:    "Verify create and get round-trip",
		Status:         StatusOpen,
		Priority:       "medium",
	}

	if err := s.CreateWorkOrder(ctx, wo); err != nil {
		t.Fatalf("CreateWorkOrder failed: %v", err)
	}
	if wo.ID == 0 {
		t.Fatal("expected non-zero work order ID after create")
	}

	got, err := s.GetWorkOrder(ctx, wo.ID, 1)
	if err != nil {
		t.Fatalf("GetWorkOrder failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected work order, got nil")
	}
	if got.Title != wo.Title {
		t.Errorf("title round-trip: got %q, want %q", got.Title, wo.Title)
	}
	if got.Status != StatusOpen {
		t.Errorf("status: got %q, want open", got.Status)
	}

	// Wrong org sees nothing.
	other, err := s.GetWorkOrder(ctx, wo.ID, 2)
	if err != nil {
		t.Fatalf("GetWorkOrder (wrong org) failed: %v", err)
	}
	if other != nil {
		t.Error("expected nil for other organization")
	}
}

func TestImportWorkOrderUpsert(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	wo := &WorkOrder{
		OrganizationID: 1,
		Title:          "Imported order",
		Status:         StatusOpen,
		Source:         "fiix",
		ExternalID:     "ext-1",
	}
	if err := s.ImportWorkOrder(ctx, wo); err != nil {
		t.Fatalf("ImportWorkOrder failed: %v", err)
	}
	firstID := wo.ID

	// Re-importing the same external order updates, not duplicates.
	again := &WorkOrder{
		OrganizationID: 1,
		Title:          "Imported order (updated)",
		Status:         StatusOpen,
		Source:         "fiix",
		ExternalID:     "ext-1",
	}
	if err := s.ImportWorkOrder(ctx, again); err != nil {
		t.Fatalf("ImportWorkOrder (again) failed: %v", err)
	}
	if again.ID != firstID {
		t.Errorf("expected upsert to keep id %d, got %d", firstID, again.ID)
	}

	got, err := s.GetWorkOrder(ctx, firstID, 1)
	if err != nil {
		t.Fatalf("GetWorkOrder failed: %v", err)
	}
	if got.Title != "Imported order (updated)" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
}

func TestAssignAndCompleteWorkOrder(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	wo := &WorkOrder{OrganizationID: 1, Title: "Lifecycle", Status: StatusOpen, Priority: "low"}
	if err := s.CreateWorkOrder(ctx, wo); err != nil {
		t.Fatalf("CreateWorkOrder failed: %v", err)
	}

	techID := int64(1)
	assigned, err := s.AssignWorkOrder(ctx, wo.ID, 1, &techID, nil)
	if err != nil {
		t.Fatalf("AssignWorkOrder failed: %v", err)
	}
	if assigned == nil || assigned.Status != StatusAssigned {
		t.Fatalf("expected assigned work order, got %+v", assigned)
	}

	completed, err := s.CompleteWorkOrder(ctx, wo.ID, 1)
	if err != nil {
		t.Fatalf("CompleteWorkOrder failed: %v", err)
	}
	if completed == nil || completed.Status != StatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("expected completed work order with timestamp, got %+v", completed)
	}
}
