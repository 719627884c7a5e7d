package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// WorkItemService manages kanban cards. Updates are submitted as partial
// requests; the service diffs them against the stored record and writes
// only fields that actually changed. An unchanged submit performs no
// write and publishes no event.
type WorkItemService struct {
	repo    ports.WorkItemRepository
	objects ports.ObjectStore
	events  ports.EventPublisher
	bucket  string
	logger  *logger.Logger
}

// NewWorkItemService creates a new work item service
func NewWorkItemService(repo ports.WorkItemRepository, objects ports.ObjectStore, events ports.EventPublisher, bucket string, logger *logger.Logger) *WorkItemService {
	return &WorkItemService{
		repo:    repo,
		objects: objects,
		events:  events,
		bucket:  bucket,
		logger:  logger,
	}
}

// Create adds a card to the board. The id is always server-assigned.
func (s *WorkItemService) Create(ctx context.Context, req ports.CreateWorkItemRequest) (*entities.WorkItem, error) {
	item := &entities.WorkItem{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Assignee:    req.Assignee,
		Difficulty:  req.Difficulty,
		Status:      req.Status,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create work item: %w", err)
	}

	s.logger.Info("Work item created", "work_item_id", item.ID, "name", item.Name)
	s.publish(ports.EventCreate, item.ID)

	return item, nil
}

// Get retrieves a card by id
func (s *WorkItemService) Get(ctx context.Context, id uuid.UUID) (*entities.WorkItem, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the changed fields of a partial request. Fields absent
// from the request or equal to the stored value are left untouched.
func (s *WorkItemService) Update(ctx context.Context, id uuid.UUID, req ports.UpdateWorkItemRequest) (*entities.WorkItem, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	diff := ports.FieldDiff{}
	if req.Name != nil && *req.Name != existing.Name {
		diff["name"] = *req.Name
	}
	if req.Description != nil && *req.Description != existing.Description {
		diff["description"] = *req.Description
	}
	if req.Assignee != nil && *req.Assignee != existing.Assignee {
		diff["assignee"] = *req.Assignee
	}
	if req.Difficulty != nil && *req.Difficulty != existing.Difficulty {
		diff["difficulty"] = *req.Difficulty
	}
	if req.Status != nil && *req.Status != existing.Status {
		diff["status"] = *req.Status
	}

	if len(diff) == 0 {
		return existing, nil
	}

	updated, err := s.repo.UpdateFields(ctx, id, diff)
	if err != nil {
		return nil, fmt.Errorf("failed to update work item: %w", err)
	}

	s.logger.Info("Work item updated", "work_item_id", id, "fields", len(diff))
	s.publish(ports.EventUpdate, id)

	return updated, nil
}

// Delete removes a card and best-effort deletes its stored image. A
// failed image delete is logged and does not fail the operation.
func (s *WorkItemService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete work item: %w", err)
	}

	if existing.HasImage() {
		if err := s.objects.Delete(ctx, s.bucket, *existing.ImageID); err != nil {
			s.logger.Warn("Failed to delete work item image",
				"work_item_id", id, "image_id", *existing.ImageID, "error", err)
		}
	}

	s.logger.Info("Work item deleted", "work_item_id", id)
	s.publish(ports.EventDelete, id)

	return nil
}

// List returns cards newest first
func (s *WorkItemService) List(ctx context.Context, filter ports.WorkItemFilter) ([]*entities.WorkItem, error) {
	return s.repo.List(ctx, filter)
}

// Board returns all cards grouped into status columns
func (s *WorkItemService) Board(ctx context.Context) (*entities.Board, error) {
	items, err := s.repo.List(ctx, ports.WorkItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list work items: %w", err)
	}

	return entities.GroupByStatus(items), nil
}

// ReplaceImage uploads a new image for the card and best-effort deletes
// the previous one once the reference has switched over.
func (s *WorkItemService) ReplaceImage(ctx context.Context, id uuid.UUID, upload ports.FileUpload) (*entities.WorkItem, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	objectID, err := s.objects.Put(ctx, s.bucket, upload.FileName, upload.Size, upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	updated, err := s.repo.UpdateFields(ctx, id, ports.FieldDiff{"image_id": objectID})
	if err != nil {
		// The document still references the old image; remove the orphan.
		if delErr := s.objects.Delete(ctx, s.bucket, objectID); delErr != nil {
			s.logger.Warn("Failed to clean up orphaned image", "image_id", objectID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to update work item image: %w", err)
	}

	if existing.HasImage() {
		if err := s.objects.Delete(ctx, s.bucket, *existing.ImageID); err != nil {
			s.logger.Warn("Failed to delete replaced image",
				"work_item_id", id, "image_id", *existing.ImageID, "error", err)
		}
	}

	s.logger.Info("Work item image replaced", "work_item_id", id, "image_id", objectID)
	s.publish(ports.EventUpdate, id)

	return updated, nil
}

// RemoveImage clears the card's image reference and best-effort deletes
// the stored object.
func (s *WorkItemService) RemoveImage(ctx context.Context, id uuid.UUID) (*entities.WorkItem, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !existing.HasImage() {
		return existing, nil
	}

	oldImageID := *existing.ImageID
	updated, err := s.repo.UpdateFields(ctx, id, ports.FieldDiff{"image_id": nil})
	if err != nil {
		return nil, fmt.Errorf("failed to clear work item image: %w", err)
	}

	if err := s.objects.Delete(ctx, s.bucket, oldImageID); err != nil {
		s.logger.Warn("Failed to delete removed image",
			"work_item_id", id, "image_id", oldImageID, "error", err)
	}

	s.logger.Info("Work item image removed", "work_item_id", id)
	s.publish(ports.EventUpdate, id)

	return updated, nil
}

func (s *WorkItemService) publish(event string, id uuid.UUID) {
	s.events.Publish(ports.ChangeEvent{
		Event:      event,
		Channel:    ports.ChannelFor(entities.CollectionWorkItems),
		DocumentID: id.String(),
	})
}
