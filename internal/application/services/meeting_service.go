package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// MeetingService manages scheduled meetings and their file attachments.
// Attachments are stored objects referenced by an ordered id list on the
// meeting record; the list order is the upload order.
type MeetingService struct {
	repo    ports.MeetingRepository
	objects ports.ObjectStore
	events  ports.EventPublisher
	bucket  string
	logger  *logger.Logger
}

// NewMeetingService creates a new meeting service
func NewMeetingService(repo ports.MeetingRepository, objects ports.ObjectStore, events ports.EventPublisher, bucket string, logger *logger.Logger) *MeetingService {
	return &MeetingService{
		repo:    repo,
		objects: objects,
		events:  events,
		bucket:  bucket,
		logger:  logger,
	}
}

// Create schedules a meeting
func (s *MeetingService) Create(ctx context.Context, req ports.CreateMeetingRequest) (*entities.Meeting, error) {
	meeting := &entities.Meeting{
		ID:               uuid.New(),
		Date:             req.Date,
		Agenda:           req.Agenda,
		MeetLink:         req.MeetLink,
		PostMeetingNotes: req.PostMeetingNotes,
		Attachments:      []string{},
	}

	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	s.logger.Info("Meeting created", "meeting_id", meeting.ID, "date", meeting.Date)
	s.publish(ports.EventCreate, meeting.ID)

	return meeting, nil
}

// Get retrieves a meeting by id
func (s *MeetingService) Get(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the changed fields of a partial request. Attachments are
// managed through AddAttachment and RemoveAttachment, never here.
func (s *MeetingService) Update(ctx context.Context, id uuid.UUID, req ports.UpdateMeetingRequest) (*entities.Meeting, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	diff := ports.FieldDiff{}
	if req.Date != nil && !req.Date.Equal(existing.Date) {
		diff["date"] = *req.Date
	}
	if req.Agenda != nil && *req.Agenda != existing.Agenda {
		diff["agenda"] = *req.Agenda
	}
	if req.MeetLink != nil && *req.MeetLink != existing.MeetLink {
		diff["meet_link"] = *req.MeetLink
	}
	if req.PostMeetingNotes != nil && *req.PostMeetingNotes != existing.PostMeetingNotes {
		diff["post_meeting_notes"] = *req.PostMeetingNotes
	}

	if len(diff) == 0 {
		return existing, nil
	}

	updated, err := s.repo.UpdateFields(ctx, id, diff)
	if err != nil {
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}

	s.logger.Info("Meeting updated", "meeting_id", id, "fields", len(diff))
	s.publish(ports.EventUpdate, id)

	return updated, nil
}

// Delete removes a meeting and best-effort deletes its attachments
func (s *MeetingService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	for _, objectID := range existing.Attachments {
		if err := s.objects.Delete(ctx, s.bucket, objectID); err != nil {
			s.logger.Warn("Failed to delete meeting attachment",
				"meeting_id", id, "object_id", objectID, "error", err)
		}
	}

	s.logger.Info("Meeting deleted", "meeting_id", id)
	s.publish(ports.EventDelete, id)

	return nil
}

// List returns meetings newest first
func (s *MeetingService) List(ctx context.Context, filter ports.MeetingFilter) ([]*entities.Meeting, error) {
	return s.repo.List(ctx, filter)
}

// AddAttachment uploads a file and appends its object id to the meeting's
// attachment list.
func (s *MeetingService) AddAttachment(ctx context.Context, id uuid.UUID, upload ports.FileUpload) (*entities.Meeting, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	objectID, err := s.objects.Put(ctx, s.bucket, upload.FileName, upload.Size, upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	ids := append(append([]string{}, existing.Attachments...), objectID)
	updated, err := s.repo.UpdateFields(ctx, id, ports.FieldDiff{
		"attachments": entities.JoinAttachmentIDs(ids),
	})
	if err != nil {
		if delErr := s.objects.Delete(ctx, s.bucket, objectID); delErr != nil {
			s.logger.Warn("Failed to clean up orphaned attachment", "object_id", objectID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to attach file to meeting: %w", err)
	}

	s.logger.Info("Meeting attachment added", "meeting_id", id, "object_id", objectID)
	s.publish(ports.EventUpdate, id)

	return updated, nil
}

// RemoveAttachment drops an object id from the meeting's attachment list
// and best-effort deletes the stored object.
func (s *MeetingService) RemoveAttachment(ctx context.Context, id uuid.UUID, objectID string) (*entities.Meeting, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(existing.Attachments))
	found := false
	for _, attachmentID := range existing.Attachments {
		if attachmentID == objectID {
			found = true
			continue
		}
		ids = append(ids, attachmentID)
	}

	if !found {
		return existing, nil
	}

	updated, err := s.repo.UpdateFields(ctx, id, ports.FieldDiff{
		"attachments": entities.JoinAttachmentIDs(ids),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detach file from meeting: %w", err)
	}

	if err := s.objects.Delete(ctx, s.bucket, objectID); err != nil {
		s.logger.Warn("Failed to delete removed attachment",
			"meeting_id", id, "object_id", objectID, "error", err)
	}

	s.logger.Info("Meeting attachment removed", "meeting_id", id, "object_id", objectID)
	s.publish(ports.EventUpdate, id)

	return updated, nil
}

func (s *MeetingService) publish(event string, id uuid.UUID) {
	s.events.Publish(ports.ChangeEvent{
		Event:      event,
		Channel:    ports.ChannelFor(entities.CollectionMeetings),
		DocumentID: id.String(),
	})
}
