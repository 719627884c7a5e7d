package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// ResourceService manages shared files. Every resource wraps exactly one
// stored object; creating one without a file is rejected. On update a new
// file is an optional replacement, and a failed replacement upload is
// logged and skipped so the text field changes still go through.
type ResourceService struct {
	repo    ports.ResourceRepository
	objects ports.ObjectStore
	events  ports.EventPublisher
	bucket  string
	logger  *logger.Logger
}

// NewResourceService creates a new resource service
func NewResourceService(repo ports.ResourceRepository, objects ports.ObjectStore, events ports.EventPublisher, bucket string, logger *logger.Logger) *ResourceService {
	return &ResourceService{
		repo:    repo,
		objects: objects,
		events:  events,
		bucket:  bucket,
		logger:  logger,
	}
}

// Create uploads the file first, then the record referencing it
func (s *ResourceService) Create(ctx context.Context, req ports.CreateResourceRequest) (*entities.Resource, error) {
	if req.File == nil {
		return nil, entities.ErrFileRequired
	}

	objectID, err := s.objects.Put(ctx, s.bucket, req.File.FileName, req.File.Size, req.File.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	resource := &entities.Resource{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		FileID:      objectID,
		FileName:    req.File.FileName,
		FileSize:    strconv.FormatInt(req.File.Size, 10),
		UploadedBy:  req.UploadedBy,
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		if delErr := s.objects.Delete(ctx, s.bucket, objectID); delErr != nil {
			s.logger.Warn("Failed to clean up orphaned file", "object_id", objectID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	s.logger.Info("Resource created", "resource_id", resource.ID, "name", resource.Name, "file_id", objectID)
	s.publish(ports.EventCreate, resource.ID)

	return resource, nil
}

// Get retrieves a resource by id
func (s *ResourceService) Get(ctx context.Context, id uuid.UUID) (*entities.Resource, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the changed fields of a partial request, optionally
// replacing the stored file. A failed replacement upload does not block
// the rest of the update.
func (s *ResourceService) Update(ctx context.Context, id uuid.UUID, req ports.UpdateResourceRequest) (*entities.Resource, error) {
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
	if req.URL != nil && (existing.URL == nil || *req.URL != *existing.URL) {
		diff["url"] = *req.URL
	}

	oldFileID := ""
	if req.File != nil {
		objectID, err := s.objects.Put(ctx, s.bucket, req.File.FileName, req.File.Size, req.File.Reader)
		if err != nil {
			s.logger.Warn("Failed to store replacement file, keeping existing",
				"resource_id", id, "error", err)
		} else {
			oldFileID = existing.FileID
			diff["file_id"] = objectID
			diff["file_name"] = req.File.FileName
			diff["file_size"] = strconv.FormatInt(req.File.Size, 10)
		}
	}

	if len(diff) == 0 {
		return existing, nil
	}

	updated, err := s.repo.UpdateFields(ctx, id, diff)
	if err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}

	if oldFileID != "" {
		if err := s.objects.Delete(ctx, s.bucket, oldFileID); err != nil {
			s.logger.Warn("Failed to delete replaced file",
				"resource_id", id, "object_id", oldFileID, "error", err)
		}
	}

	s.logger.Info("Resource updated", "resource_id", id, "fields", len(diff))
	s.publish(ports.EventUpdate, id)

	return updated, nil
}

// Delete removes a resource and best-effort deletes its stored file
func (s *ResourceService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}

	if existing.FileID != "" {
		if err := s.objects.Delete(ctx, s.bucket, existing.FileID); err != nil {
			s.logger.Warn("Failed to delete resource file",
				"resource_id", id, "object_id", existing.FileID, "error", err)
		}
	}

	s.logger.Info("Resource deleted", "resource_id", id)
	s.publish(ports.EventDelete, id)

	return nil
}

// List returns resources newest first
func (s *ResourceService) List(ctx context.Context, filter ports.ResourceFilter) ([]*entities.Resource, error) {
	return s.repo.List(ctx, filter)
}

func (s *ResourceService) publish(event string, id uuid.UUID) {
	s.events.Publish(ports.ChangeEvent{
		Event:      event,
		Channel:    ports.ChannelFor(entities.CollectionResources),
		DocumentID: id.String(),
	})
}
