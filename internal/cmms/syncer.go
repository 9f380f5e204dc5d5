package cmms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/philiplawlor/fm-copilot/internal/events"
	"github.com/philiplawlor/fm-copilot/internal/metrics"
	"github.com/philiplawlor/fm-copilot/internal/store"
)

// Importer is the store slice the syncer writes through.
type Importer interface {
	ImportWorkOrder(ctx context.Context, wo *store.WorkOrder) error
}

// Syncer runs periodic CMMS sync passes and imports the fetched work orders.
// The events client may be nil; publishing is then skipped.
type Syncer struct {
	manager *Manager
	store   Importer
	events  events.Client
	logger  *slog.Logger

	orgID int64
}

func NewSyncer(manager *Manager, st Importer, ev events.Client, orgID int64, logger *slog.Logger) *Syncer {
	return &Syncer{
		manager: manager,
		store:   st,
		events:  ev,
		logger:  logger,
		orgID:   orgID,
	}
}

// Start parses the standard 5-field cron schedule (minute hour day-of-month
// month day-of-week) and runs sync passes on it until ctx is cancelled. An
// empty schedule disables the syncer.
func (s *Syncer) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		s.logger.Info("cmms sync disabled, no schedule configured")
		return nil
	}
	if len(s.manager.Integrations()) == 0 {
		s.logger.Info("cmms sync disabled, no integrations configured")
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}

	s.logger.Info("cmms sync scheduled", "schedule", schedule, "integrations", len(s.manager.Integrations()))

	go func() {
		for {
			now := time.Now()
			wait := sched.Next(now).Sub(now)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			s.RunOnce(ctx)
		}
	}()
	return nil
}

// RunOnce performs one sync pass over all integrations and returns the
// per-integration results with import counts applied.
func (s *Syncer) RunOnce(ctx context.Context) []SyncResult {
	runID := uuid.NewString()
	results := s.manager.SyncAll(ctx)

	for _, res := range results {
		if res.Err != nil {
			metrics.CMMSSyncRuns.WithLabelValues(res.Integration, "error").Inc()
			s.logger.Error("cmms sync failed", "integration", res.Integration, "error", res.Err)
			s.publishSynced(runID, res.Integration, 0, 0, res.Err)
			continue
		}

		imported := 0
		for _, ext := range res.Orders {
			wo := externalToWorkOrder(ext, res.Integration, s.orgID)
			if err := s.store.ImportWorkOrder(ctx, wo); err != nil {
				s.logger.Error("work order import failed",
					"integration", res.Integration, "external_id", ext.ExternalID, "error", err)
				continue
			}
			imported++
		}

		metrics.CMMSSyncRuns.WithLabelValues(res.Integration, "ok").Inc()
		s.logger.Info("cmms sync complete",
			"integration", res.Integration, "fetched", len(res.Orders), "imported", imported)
		s.publishSynced(runID, res.Integration, len(res.Orders), imported, nil)
	}
	return results
}

func (s *Syncer) publishSynced(runID, integration string, fetched, imported int, syncErr error) {
	if s.events == nil {
		return
	}
	evt := events.IntegrationSyncedEvent{
		EventID:     uuid.NewString(),
		SyncRunID:   runID,
		Integration: integration,
		Fetched:     fetched,
		Imported:    imported,
		Timestamp:   time.Now().UTC(),
	}
	if syncErr != nil {
		evt.Error = syncErr.Error()
	}
	if err := s.events.Publish(events.SubjectIntegrationSynced(integration), evt); err != nil {
		s.logger.Warn("failed to publish sync event", "integration", integration, "error", err)
	}
}

func externalToWorkOrder(ext ExternalWorkOrder, source string, orgID int64) *store.WorkOrder {
	return &store.WorkOrder{
		OrganizationID: orgID,
		Title:          ext.Title,
		Description:    ext.Description,
		Status:         store.StatusOpen,
		Priority:       ext.Priority,
		Source:         source,
		ExternalID:     ext.ExternalID,
	}
}
