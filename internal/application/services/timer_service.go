package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// TimerService manages the single countdown timer shown on the board.
// The first read creates a default inactive record; every later call
// operates on that same record.
type TimerService struct {
	repo   ports.TimerRepository
	events ports.EventPublisher
	logger *logger.Logger
}

// NewTimerService creates a new timer service
func NewTimerService(repo ports.TimerRepository, events ports.EventPublisher, logger *logger.Logger) *TimerService {
	return &TimerService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// Get returns the timer, creating a default inactive one on first access
func (s *TimerService) Get(ctx context.Context) (*entities.Timer, error) {
	timer, err := s.repo.GetFirst(ctx)
	if err == nil {
		return timer, nil
	}
	if !errors.Is(err, entities.ErrTimerNotFound) {
		return nil, fmt.Errorf("failed to load timer: %w", err)
	}

	timer = &entities.Timer{
		ID:         uuid.New(),
		TargetDate: time.Now().UTC(),
		IsActive:   false,
	}
	if err := s.repo.Create(ctx, timer); err != nil {
		return nil, fmt.Errorf("failed to create timer: %w", err)
	}

	s.logger.Info("Default timer created", "timer_id", timer.ID)
	return timer, nil
}

// Set updates the timer's target date and active flag
func (s *TimerService) Set(ctx context.Context, req ports.SetTimerRequest) (*entities.Timer, error) {
	existing, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	diff := ports.FieldDiff{}
	if req.TargetDate != nil && !req.TargetDate.Equal(existing.TargetDate) {
		diff["target_date"] = *req.TargetDate
	}
	if req.IsActive != nil && *req.IsActive != existing.IsActive {
		diff["is_active"] = *req.IsActive
	}

	if len(diff) == 0 {
		return existing, nil
	}

	updated, err := s.repo.UpdateFields(ctx, existing.ID, diff)
	if err != nil {
		return nil, fmt.Errorf("failed to update timer: %w", err)
	}

	s.logger.Info("Timer updated", "timer_id", existing.ID, "fields", len(diff))
	s.events.Publish(ports.ChangeEvent{
		Event:      ports.EventUpdate,
		Channel:    ports.ChannelFor(entities.CollectionTimers),
		DocumentID: existing.ID.String(),
	})

	return updated, nil
}
