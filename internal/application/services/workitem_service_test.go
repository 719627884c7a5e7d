package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

func newWorkItemFixture() (*WorkItemService, *fakeWorkItemRepo, *fakeObjectStore, *fakePublisher) {
	repo := newFakeWorkItemRepo()
	store := newFakeObjectStore()
	pub := &fakePublisher{}
	svc := NewWorkItemService(repo, store, pub, "attachments", logger.NewNop())
	return svc, repo, store, pub
}

func TestWorkItemCreateAssignsServerID(t *testing.T) {
	svc, _, _, pub := newWorkItemFixture()

	item, err := svc.Create(context.Background(), ports.CreateWorkItemRequest{
		Name:       "Wire login flow",
		Assignee:   "sara",
		Difficulty: entities.DifficultyHard,
		Status:     entities.StatusTodo,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, item.ID)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, ports.EventCreate, events[0].Event)
	assert.Equal(t, "collections.work_items.documents", events[0].Channel)
	assert.Equal(t, item.ID.String(), events[0].DocumentID)
}

func TestWorkItemUpdateUnchangedSubmitWritesNothing(t *testing.T) {
	svc, repo, _, pub := newWorkItemFixture()

	item, err := svc.Create(context.Background(), ports.CreateWorkItemRequest{
		Name:       "Wire login flow",
		Assignee:   "sara",
		Difficulty: entities.DifficultyHard,
		Status:     entities.StatusTodo,
	})
	require.NoError(t, err)
	pub.events = nil

	// Resubmit the exact same values.
	name := item.Name
	assignee := item.Assignee
	got, err := svc.Update(context.Background(), item.ID, ports.UpdateWorkItemRequest{
		Name:     &name,
		Assignee: &assignee,
	})

	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Empty(t, repo.updateCalls, "no write should happen for an unchanged submit")
	assert.Empty(t, pub.all(), "no event should be published for an unchanged submit")
}

func TestWorkItemUpdateWritesOnlyChangedFields(t *testing.T) {
	svc, repo, _, pub := newWorkItemFixture()

	item, err := svc.Create(context.Background(), ports.CreateWorkItemRequest{
		Name:       "Wire login flow",
		Assignee:   "sara",
		Difficulty: entities.DifficultyHard,
		Status:     entities.StatusTodo,
	})
	require.NoError(t, err)
	pub.events = nil

	sameName := item.Name
	newStatus := entities.StatusInProgress
	got, err := svc.Update(context.Background(), item.ID, ports.UpdateWorkItemRequest{
		Name:   &sameName,
		Status: &newStatus,
	})

	require.NoError(t, err)
	assert.Equal(t, entities.StatusInProgress, got.Status)

	require.Len(t, repo.updateCalls, 1)
	diff := repo.updateCalls[0]
	assert.Len(t, diff, 1, "only the changed column should be in the diff")
	assert.Equal(t, newStatus, diff["status"])

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, ports.EventUpdate, events[0].Event)
}

func TestWorkItemDeleteRemovesImageBestEffort(t *testing.T) {
	svc, _, store, pub := newWorkItemFixture()

	item, err := svc.Create(context.Background(), ports.CreateWorkItemRequest{
		Name:       "Card with image",
		Assignee:   "sara",
		Difficulty: entities.DifficultyEasy,
		Status:     entities.StatusTodo,
	})
	require.NoError(t, err)

	item, err = svc.ReplaceImage(context.Background(), item.ID, ports.FileUpload{
		FileName: "shot.png",
		Size:     4,
		Reader:   strings.NewReader("data"),
	})
	require.NoError(t, err)
	require.NotNil(t, item.ImageID)
	imageID := *item.ImageID
	pub.events = nil

	// Make the object delete fail; the document delete must still succeed.
	store.delErr = errors.New("storage offline")

	err = svc.Delete(context.Background(), item.ID)

	require.NoError(t, err)
	assert.Contains(t, store.deleted, imageID, "the image delete should have been attempted")

	_, err = svc.Get(context.Background(), item.ID)
	assert.ErrorIs(t, err, entities.ErrWorkItemNotFound)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, ports.EventDelete, events[0].Event)
}

func TestWorkItemReplaceImageDeletesOld(t *testing.T) {
	svc, _, store, _ := newWorkItemFixture()

	item, err := svc.Create(context.Background(), ports.CreateWorkItemRequest{
		Name:       "Card",
		Assignee:   "sara",
		Difficulty: entities.DifficultyEasy,
		Status:     entities.StatusTodo,
	})
	require.NoError(t, err)

	item, err = svc.ReplaceImage(context.Background(), item.ID, ports.FileUpload{
		FileName: "v1.png", Size: 2, Reader: strings.NewReader("v1"),
	})
	require.NoError(t, err)
	firstID := *item.ImageID

	item, err = svc.ReplaceImage(context.Background(), item.ID, ports.FileUpload{
		FileName: "v2.png", Size: 2, Reader: strings.NewReader("v2"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, firstID, *item.ImageID)
	assert.Contains(t, store.deleted, firstID)
}

func TestWorkItemRemoveImageWithoutImageIsNoop(t *testing.T) {
	svc, repo, _, _ := newWorkItemFixture()

	item, err := svc.Create(context.Background(), ports.CreateWorkItemRequest{
		Name:       "Bare card",
		Assignee:   "sara",
		Difficulty: entities.DifficultyEasy,
		Status:     entities.StatusTodo,
	})
	require.NoError(t, err)

	got, err := svc.RemoveImage(context.Background(), item.ID)

	require.NoError(t, err)
	assert.Nil(t, got.ImageID)
	assert.Empty(t, repo.updateCalls)
}

func TestWorkItemBoardGroupsColumns(t *testing.T) {
	svc, _, _, _ := newWorkItemFixture()

	for _, status := range []entities.Status{entities.StatusTodo, entities.StatusDone, entities.StatusDone} {
		_, err := svc.Create(context.Background(), ports.CreateWorkItemRequest{
			Name:       "card",
			Assignee:   "sara",
			Difficulty: entities.DifficultyEasy,
			Status:     status,
		})
		require.NoError(t, err)
	}

	board, err := svc.Board(context.Background())

	require.NoError(t, err)
	assert.Len(t, board.Todo, 1)
	assert.Empty(t, board.InProgress)
	assert.Len(t, board.Done, 2)
}
