package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

type fakeTimelineRepo struct {
	events      map[uuid.UUID]*entities.TimelineEvent
	updateCalls []ports.FieldDiff
}

func newFakeTimelineRepo() *fakeTimelineRepo {
	return &fakeTimelineRepo{events: make(map[uuid.UUID]*entities.TimelineEvent)}
}

func (f *fakeTimelineRepo) Create(ctx context.Context, event *entities.TimelineEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	clone := *event
	clone.Tags = append(pq.StringArray{}, event.Tags...)
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeTimelineRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.TimelineEvent, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, entities.ErrTimelineEventNotFound
	}
	clone := *event
	clone.Tags = append(pq.StringArray{}, event.Tags...)
	return &clone, nil
}

func (f *fakeTimelineRepo) UpdateFields(ctx context.Context, id uuid.UUID, diff ports.FieldDiff) (*entities.TimelineEvent, error) {
	f.updateCalls = append(f.updateCalls, diff)
	event, ok := f.events[id]
	if !ok {
		return nil, entities.ErrTimelineEventNotFound
	}
	for col, val := range diff {
		switch col {
		case "title":
			event.Title = val.(string)
		case "date":
			event.Date = val.(string)
		case "description":
			event.Description = val.(string)
		case "status":
			event.Status = val.(entities.TimelineStatus)
		case "tags":
			event.Tags = val.(pq.StringArray)
		}
	}
	event.UpdatedAt = time.Now()
	clone := *event
	return &clone, nil
}

func (f *fakeTimelineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.events[id]; !ok {
		return entities.ErrTimelineEventNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeTimelineRepo) List(ctx context.Context, filter ports.TimelineEventFilter) ([]*entities.TimelineEvent, error) {
	events := []*entities.TimelineEvent{}
	for _, event := range f.events {
		clone := *event
		events = append(events, &clone)
	}
	return events, nil
}

func newTimelineFixture() (*TimelineService, *fakeTimelineRepo, *fakePublisher) {
	repo := newFakeTimelineRepo()
	pub := &fakePublisher{}
	svc := NewTimelineService(repo, pub, logger.NewNop())
	return svc, repo, pub
}

func TestTimelineCreateDefaultsTags(t *testing.T) {
	svc, _, pub := newTimelineFixture()

	event, err := svc.Create(context.Background(), ports.CreateTimelineEventRequest{
		Title:  "Kickoff",
		Date:   "2025-01-15",
		Status: entities.TimelineStatusCompleted,
	})

	require.NoError(t, err)
	assert.NotNil(t, event.Tags)
	assert.Empty(t, event.Tags)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, "collections.timeline_events.documents", events[0].Channel)
}

func TestTimelineUpdateNilTagsLeavesTagsAlone(t *testing.T) {
	svc, repo, _ := newTimelineFixture()

	event, err := svc.Create(context.Background(), ports.CreateTimelineEventRequest{
		Title:  "Beta launch",
		Date:   "2025-03-01",
		Status: entities.TimelineStatusRequired,
		Tags:   []string{"launch", "beta"},
	})
	require.NoError(t, err)
	repo.updateCalls = nil

	newTitle := "Beta launch (public)"
	got, err := svc.Update(context.Background(), event.ID, ports.UpdateTimelineEventRequest{
		Title: &newTitle,
	})

	require.NoError(t, err)
	assert.Equal(t, pq.StringArray{"launch", "beta"}, got.Tags)
	require.Len(t, repo.updateCalls, 1)
	assert.NotContains(t, repo.updateCalls[0], "tags")
}

func TestTimelineUpdateEmptyTagsClears(t *testing.T) {
	svc, repo, _ := newTimelineFixture()

	event, err := svc.Create(context.Background(), ports.CreateTimelineEventRequest{
		Title:  "Beta launch",
		Date:   "2025-03-01",
		Status: entities.TimelineStatusRequired,
		Tags:   []string{"launch"},
	})
	require.NoError(t, err)
	repo.updateCalls = nil

	got, err := svc.Update(context.Background(), event.ID, ports.UpdateTimelineEventRequest{
		Tags: []string{},
	})

	require.NoError(t, err)
	assert.Empty(t, got.Tags)
	require.Len(t, repo.updateCalls, 1)
	assert.Contains(t, repo.updateCalls[0], "tags")
}

func TestTimelineUpdateSameTagsWritesNothing(t *testing.T) {
	svc, repo, pub := newTimelineFixture()

	event, err := svc.Create(context.Background(), ports.CreateTimelineEventRequest{
		Title:  "Beta launch",
		Date:   "2025-03-01",
		Status: entities.TimelineStatusRequired,
		Tags:   []string{"launch", "beta"},
	})
	require.NoError(t, err)
	repo.updateCalls = nil
	pub.events = nil

	_, err = svc.Update(context.Background(), event.ID, ports.UpdateTimelineEventRequest{
		Tags: []string{"launch", "beta"},
	})

	require.NoError(t, err)
	assert.Empty(t, repo.updateCalls)
	assert.Empty(t, pub.all())
}
