package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/ports"
)

// In-memory doubles for the service tests. They track update calls so the
// tests can assert that an unchanged submit performs no write.

type fakeWorkItemRepo struct {
	items       map[uuid.UUID]*entities.WorkItem
	updateCalls []ports.FieldDiff
}

func newFakeWorkItemRepo() *fakeWorkItemRepo {
	return &fakeWorkItemRepo{items: make(map[uuid.UUID]*entities.WorkItem)}
}

func (f *fakeWorkItemRepo) Create(ctx context.Context, item *entities.WorkItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeWorkItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.WorkItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, entities.ErrWorkItemNotFound
	}
	clone := *item
	return &clone, nil
}

func (f *fakeWorkItemRepo) UpdateFields(ctx context.Context, id uuid.UUID, diff ports.FieldDiff) (*entities.WorkItem, error) {
	f.updateCalls = append(f.updateCalls, diff)
	item, ok := f.items[id]
	if !ok {
		return nil, entities.ErrWorkItemNotFound
	}
	for col, val := range diff {
		switch col {
		case "name":
			item.Name = val.(string)
		case "description":
			item.Description = val.(string)
		case "assignee":
			item.Assignee = val.(string)
		case "difficulty":
			item.Difficulty = val.(entities.Difficulty)
		case "status":
			item.Status = val.(entities.Status)
		case "image_id":
			if val == nil {
				item.ImageID = nil
			} else {
				s := val.(string)
				item.ImageID = &s
			}
		}
	}
	item.UpdatedAt = time.Now()
	clone := *item
	return &clone, nil
}

func (f *fakeWorkItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return entities.ErrWorkItemNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeWorkItemRepo) List(ctx context.Context, filter ports.WorkItemFilter) ([]*entities.WorkItem, error) {
	items := []*entities.WorkItem{}
	for _, item := range f.items {
		clone := *item
		items = append(items, &clone)
	}
	return items, nil
}

func (f *fakeWorkItemRepo) Count(ctx context.Context, filter ports.WorkItemFilter) (int64, error) {
	return int64(len(f.items)), nil
}

type fakeMeetingRepo struct {
	meetings    map[uuid.UUID]*entities.Meeting
	updateCalls []ports.FieldDiff
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{meetings: make(map[uuid.UUID]*entities.Meeting)}
}

func (f *fakeMeetingRepo) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting.ID == uuid.Nil {
		meeting.ID = uuid.New()
	}
	clone := *meeting
	clone.Attachments = append([]string{}, meeting.Attachments...)
	f.meetings[meeting.ID] = &clone
	return nil
}

func (f *fakeMeetingRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	meeting, ok := f.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	clone := *meeting
	clone.Attachments = append([]string{}, meeting.Attachments...)
	return &clone, nil
}

func (f *fakeMeetingRepo) UpdateFields(ctx context.Context, id uuid.UUID, diff ports.FieldDiff) (*entities.Meeting, error) {
	f.updateCalls = append(f.updateCalls, diff)
	meeting, ok := f.meetings[id]
	if !ok {
		return nil, entities.ErrMeetingNotFound
	}
	for col, val := range diff {
		switch col {
		case "date":
			meeting.Date = val.(time.Time)
		case "agenda":
			meeting.Agenda = val.(string)
		case "meet_link":
			meeting.MeetLink = val.(string)
		case "post_meeting_notes":
			meeting.PostMeetingNotes = val.(string)
		case "attachments":
			meeting.Attachments = entities.ParseAttachmentIDs(val.(string))
		}
	}
	clone := *meeting
	clone.Attachments = append([]string{}, meeting.Attachments...)
	return &clone, nil
}

func (f *fakeMeetingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.meetings[id]; !ok {
		return entities.ErrMeetingNotFound
	}
	delete(f.meetings, id)
	return nil
}

func (f *fakeMeetingRepo) List(ctx context.Context, filter ports.MeetingFilter) ([]*entities.Meeting, error) {
	meetings := []*entities.Meeting{}
	for _, meeting := range f.meetings {
		clone := *meeting
		meetings = append(meetings, &clone)
	}
	return meetings, nil
}

type fakeResourceRepo struct {
	resources   map[uuid.UUID]*entities.Resource
	updateCalls []ports.FieldDiff
	failCreate  bool
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{resources: make(map[uuid.UUID]*entities.Resource)}
}

func (f *fakeResourceRepo) Create(ctx context.Context, resource *entities.Resource) error {
	if f.failCreate {
		return errors.New("insert failed")
	}
	if resource.ID == uuid.Nil {
		resource.ID = uuid.New()
	}
	clone := *resource
	f.resources[resource.ID] = &clone
	return nil
}

func (f *fakeResourceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Resource, error) {
	resource, ok := f.resources[id]
	if !ok {
		return nil, entities.ErrResourceNotFound
	}
	clone := *resource
	return &clone, nil
}

func (f *fakeResourceRepo) UpdateFields(ctx context.Context, id uuid.UUID, diff ports.FieldDiff) (*entities.Resource, error) {
	f.updateCalls = append(f.updateCalls, diff)
	resource, ok := f.resources[id]
	if !ok {
		return nil, entities.ErrResourceNotFound
	}
	for col, val := range diff {
		switch col {
		case "name":
			resource.Name = val.(string)
		case "description":
			resource.Description = val.(string)
		case "url":
			s := val.(string)
			resource.URL = &s
		case "file_id":
			resource.FileID = val.(string)
		case "file_name":
			resource.FileName = val.(string)
		case "file_size":
			resource.FileSize = val.(string)
		}
	}
	clone := *resource
	return &clone, nil
}

func (f *fakeResourceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.resources[id]; !ok {
		return entities.ErrResourceNotFound
	}
	delete(f.resources, id)
	return nil
}

func (f *fakeResourceRepo) List(ctx context.Context, filter ports.ResourceFilter) ([]*entities.Resource, error) {
	resources := []*entities.Resource{}
	for _, resource := range f.resources {
		clone := *resource
		resources = append(resources, &clone)
	}
	return resources, nil
}

type fakeTimerRepo struct {
	timer       *entities.Timer
	updateCalls []ports.FieldDiff
}

func (f *fakeTimerRepo) Create(ctx context.Context, timer *entities.Timer) error {
	clone := *timer
	f.timer = &clone
	return nil
}

func (f *fakeTimerRepo) GetFirst(ctx context.Context) (*entities.Timer, error) {
	if f.timer == nil {
		return nil, entities.ErrTimerNotFound
	}
	clone := *f.timer
	return &clone, nil
}

func (f *fakeTimerRepo) UpdateFields(ctx context.Context, id uuid.UUID, diff ports.FieldDiff) (*entities.Timer, error) {
	f.updateCalls = append(f.updateCalls, diff)
	if f.timer == nil || f.timer.ID != id {
		return nil, entities.ErrTimerNotFound
	}
	for col, val := range diff {
		switch col {
		case "target_date":
			f.timer.TargetDate = val.(time.Time)
		case "is_active":
			f.timer.IsActive = val.(bool)
		}
	}
	clone := *f.timer
	return &clone, nil
}

// fakeObjectStore keeps objects in memory. Individual operations can be
// forced to fail to exercise the best-effort paths.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	names   map[string]string
	putErr  error
	delErr  error
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects: make(map[string][]byte),
		names:   make(map[string]string),
	}
}

func (f *fakeObjectStore) Put(ctx context.Context, bucket, fileName string, size int64, r io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	f.objects[id] = data
	f.names[id] = fileName
	return id, nil
}

func (f *fakeObjectStore) Open(ctx context.Context, bucket, objectID string) (io.ReadCloser, *ports.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectID]
	if !ok {
		return nil, nil, entities.ErrObjectNotFound
	}
	info := &ports.ObjectInfo{ID: objectID, FileName: f.names[objectID], Size: int64(len(data))}
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func (f *fakeObjectStore) URL(bucket, objectID string) string {
	return fmt.Sprintf("/api/v1/files/%s/%s/view", bucket, objectID)
}

func (f *fakeObjectStore) Delete(ctx context.Context, bucket, objectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, objectID)
	if f.delErr != nil {
		return f.delErr
	}
	if _, ok := f.objects[objectID]; !ok {
		return entities.ErrObjectNotFound
	}
	delete(f.objects, objectID)
	delete(f.names, objectID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []ports.ChangeEvent
}

func (f *fakePublisher) Publish(event ports.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakePublisher) all() []ports.ChangeEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.ChangeEvent{}, f.events...)
}
