package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pulse-platform/production-service/pkg/logging"
	"github.com/pulse-platform/production-service/pkg/metrics"

	"github.com/pulse-platform/production-service/internal/domain"
)

// ReminderService periodically sweeps for approved batches that were
// never scheduled and raises reminder events for them. The sweep is
// read-only on the batch tables.
type ReminderService struct {
	batches   domain.BatchRepository
	catalog   domain.CatalogRepository
	publisher domain.EventPublisher
	config    ReminderConfig
	metrics   *metrics.Metrics
	logger    *logging.Logger
	mu        sync.RWMutex
	running   bool
	stopChan  chan struct{}
}

// ReminderConfig configuration for the reminder sweep
type ReminderConfig struct {
	// SweepInterval is how often to look for unscheduled batches
	SweepInterval time.Duration `json:"sweepInterval"`

	// ThresholdDays is how many days a batch may sit unscheduled after
	// approval before a reminder is raised. Overridden per sweep by the
	// configuration table when set there.
	ThresholdDays int `json:"thresholdDays"`
}

// DefaultReminderConfig returns default configuration
func DefaultReminderConfig() ReminderConfig {
	return ReminderConfig{
		SweepInterval: 1 * time.Hour,
		ThresholdDays: domain.DefaultReminderThresholdDays,
	}
}

// NewReminderService creates a new ReminderService
func NewReminderService(
	batches domain.BatchRepository,
	catalog domain.CatalogRepository,
	publisher domain.EventPublisher,
	config ReminderConfig,
	m *metrics.Metrics,
	logger *logging.Logger,
) *ReminderService {
	return &ReminderService{
		batches:   batches,
		catalog:   catalog,
		publisher: publisher,
		config:    config,
		metrics:   m,
		logger:    logger.WithComponent("reminder_service"),
		stopChan:  make(chan struct{}),
	}
}

// Start begins the periodic reminder sweep
func (s *ReminderService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("reminder service is already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go s.run(ctx)
	return nil
}

// Stop stops the reminder sweep
func (s *ReminderService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		close(s.stopChan)
		s.running = false
	}
}

// IsRunning returns whether the sweep is running
func (s *ReminderService) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *ReminderService) run(ctx context.Context) {
	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.WithError(err).Error("Reminder sweep failed")
			}
		}
	}
}

// Sweep runs one reminder pass: it finds approved batches with no
// scheduled date older than the threshold and raises one reminder
// event per batch. Publish failures are logged per batch and do not
// stop the sweep.
func (s *ReminderService) Sweep(ctx context.Context) error {
	start := time.Now()
	s.logger.SweepStart(ctx, "unscheduled_batches")

	threshold := s.config.ThresholdDays
	config, err := s.catalog.Config(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load production config, using configured threshold")
	} else {
		if !config.EffectiveReminderEnabled() {
			s.logger.Info("Reminder sweep disabled by configuration")
			return nil
		}
		threshold = config.EffectiveReminderThresholdDays()
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -threshold)
	batches, err := s.batches.FindApprovedUnscheduled(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to find unscheduled batches: %w", err)
	}

	acted := 0
	for _, batch := range batches {
		if batch.ApprovalDate == nil {
			continue
		}
		ageDays := int(time.Since(*batch.ApprovalDate).Hours() / 24)
		event := domain.NewBatchNotScheduledEvent(batch.ID, batch.BatchNumber, *batch.ApprovalDate, ageDays)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.WithError(err).Warn("Failed to publish reminder", "batchNumber", batch.BatchNumber)
			continue
		}
		s.metrics.RecordReminderIssued()
		acted++
	}

	s.logger.SweepComplete(ctx, "unscheduled_batches", time.Since(start), len(batches), acted)
	return nil
}
