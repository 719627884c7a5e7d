package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// TimelineService manages milestones on the project journey timeline
type TimelineService struct {
	repo   ports.TimelineEventRepository
	events ports.EventPublisher
	logger *logger.Logger
}

// NewTimelineService creates a new timeline service
func NewTimelineService(repo ports.TimelineEventRepository, events ports.EventPublisher, logger *logger.Logger) *TimelineService {
	return &TimelineService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// Create adds a milestone to the timeline
func (s *TimelineService) Create(ctx context.Context, req ports.CreateTimelineEventRequest) (*entities.TimelineEvent, error) {
	event := &entities.TimelineEvent{
		ID:          uuid.New(),
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
		Status:      req.Status,
		Tags:        pq.StringArray(req.Tags),
	}
	if event.Tags == nil {
		event.Tags = pq.StringArray{}
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create timeline event: %w", err)
	}

	s.logger.Info("Timeline event created", "event_id", event.ID, "title", event.Title)
	s.publish(ports.EventCreate, event.ID)

	return event, nil
}

// Get retrieves a milestone by id
func (s *TimelineService) Get(ctx context.Context, id uuid.UUID) (*entities.TimelineEvent, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the changed fields of a partial request. A nil Tags
// slice means the tags were not submitted; an empty one clears them.
func (s *TimelineService) Update(ctx context.Context, id uuid.UUID, req ports.UpdateTimelineEventRequest) (*entities.TimelineEvent, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	diff := ports.FieldDiff{}
	if req.Title != nil && *req.Title != existing.Title {
		diff["title"] = *req.Title
	}
	if req.Date != nil && *req.Date != existing.Date {
		diff["date"] = *req.Date
	}
	if req.Description != nil && *req.Description != existing.Description {
		diff["description"] = *req.Description
	}
	if req.Status != nil && *req.Status != existing.Status {
		diff["status"] = *req.Status
	}
	if req.Tags != nil && !equalTags(req.Tags, existing.Tags) {
		diff["tags"] = pq.StringArray(req.Tags)
	}

	if len(diff) == 0 {
		return existing, nil
	}

	updated, err := s.repo.UpdateFields(ctx, id, diff)
	if err != nil {
		return nil, fmt.Errorf("failed to update timeline event: %w", err)
	}

	s.logger.Info("Timeline event updated", "event_id", id, "fields", len(diff))
	s.publish(ports.EventUpdate, id)

	return updated, nil
}

// Delete removes a milestone
func (s *TimelineService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Timeline event deleted", "event_id", id)
	s.publish(ports.EventDelete, id)

	return nil
}

// List returns milestones newest first
func (s *TimelineService) List(ctx context.Context, filter ports.TimelineEventFilter) ([]*entities.TimelineEvent, error) {
	return s.repo.List(ctx, filter)
}

func (s *TimelineService) publish(event string, id uuid.UUID) {
	s.events.Publish(ports.ChangeEvent{
		Event:      event,
		Channel:    ports.ChannelFor(entities.CollectionTimelineEvents),
		DocumentID: id.String(),
	})
}

func equalTags(a []string, b pq.StringArray) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
