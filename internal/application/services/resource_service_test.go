package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

func newResourceFixture() (*ResourceService, *fakeResourceRepo, *fakeObjectStore, *fakePublisher) {
	repo := newFakeResourceRepo()
	store := newFakeObjectStore()
	pub := &fakePublisher{}
	svc := NewResourceService(repo, store, pub, "attachments", logger.NewNop())
	return svc, repo, store, pub
}

func createResource(t *testing.T, svc *ResourceService) *entities.Resource {
	t.Helper()
	resource, err := svc.Create(context.Background(), ports.CreateResourceRequest{
		Name:       "API handbook",
		UploadedBy: "sara",
		File: &ports.FileUpload{
			FileName: "handbook.pdf",
			Size:     8,
			Reader:   strings.NewReader("handbook"),
		},
	})
	require.NoError(t, err)
	return resource
}

func TestResourceCreateRequiresFile(t *testing.T) {
	svc, _, _, pub := newResourceFixture()

	_, err := svc.Create(context.Background(), ports.CreateResourceRequest{
		Name:       "No file",
		UploadedBy: "sara",
	})

	assert.ErrorIs(t, err, entities.ErrFileRequired)
	assert.Empty(t, pub.all())
}

func TestResourceCreateRecordsFileMetadata(t *testing.T) {
	svc, _, store, _ := newResourceFixture()

	resource := createResource(t, svc)

	assert.NotEmpty(t, resource.FileID)
	assert.Equal(t, "handbook.pdf", resource.FileName)
	assert.Equal(t, "8", resource.FileSize)

	rc, info, err := store.Open(context.Background(), "attachments", resource.FileID)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "handbook.pdf", info.FileName)
}

func TestResourceCreateOversizeRejectedBeforeRecord(t *testing.T) {
	svc, repo, store, pub := newResourceFixture()
	store.putErr = entities.ErrObjectTooLarge

	_, err := svc.Create(context.Background(), ports.CreateResourceRequest{
		Name:       "Huge dump",
		UploadedBy: "sara",
		File: &ports.FileUpload{
			FileName: "dump.bin",
			Size:     1 << 40,
			Reader:   strings.NewReader(""),
		},
	})

	assert.ErrorIs(t, err, entities.ErrObjectTooLarge)
	assert.Empty(t, repo.resources, "no record should exist after a rejected upload")
	assert.Empty(t, pub.all())
}

func TestResourceCreateCleansUpFileOnInsertFailure(t *testing.T) {
	svc, repo, store, _ := newResourceFixture()
	repo.failCreate = true

	_, err := svc.Create(context.Background(), ports.CreateResourceRequest{
		Name:       "Doomed",
		UploadedBy: "sara",
		File: &ports.FileUpload{
			FileName: "doc.pdf", Size: 3, Reader: strings.NewReader("doc"),
		},
	})

	require.Error(t, err)
	assert.Len(t, store.deleted, 1, "the orphaned object should be deleted")
}

func TestResourceUpdateFailedReplacementKeepsFieldDiff(t *testing.T) {
	svc, repo, store, _ := newResourceFixture()
	resource := createResource(t, svc)
	repo.updateCalls = nil

	store.putErr = errors.New("storage offline")

	newName := "Renamed handbook"
	got, err := svc.Update(context.Background(), resource.ID, ports.UpdateResourceRequest{
		Name: &newName,
		File: &ports.FileUpload{
			FileName: "v2.pdf", Size: 2, Reader: strings.NewReader("v2"),
		},
	})

	require.NoError(t, err, "a failed replacement upload must not sink the update")
	assert.Equal(t, newName, got.Name)
	assert.Equal(t, resource.FileID, got.FileID, "the original file reference should survive")

	require.Len(t, repo.updateCalls, 1)
	diff := repo.updateCalls[0]
	assert.Contains(t, diff, "name")
	assert.NotContains(t, diff, "file_id")
}

func TestResourceUpdateReplacementSwapsFile(t *testing.T) {
	svc, _, store, _ := newResourceFixture()
	resource := createResource(t, svc)
	oldFileID := resource.FileID

	got, err := svc.Update(context.Background(), resource.ID, ports.UpdateResourceRequest{
		File: &ports.FileUpload{
			FileName: "v2.pdf", Size: 2, Reader: strings.NewReader("v2"),
		},
	})

	require.NoError(t, err)
	assert.NotEqual(t, oldFileID, got.FileID)
	assert.Equal(t, "v2.pdf", got.FileName)
	assert.Equal(t, "2", got.FileSize)
	assert.Contains(t, store.deleted, oldFileID)
}

func TestResourceDeleteRemovesFileBestEffort(t *testing.T) {
	svc, _, store, pub := newResourceFixture()
	resource := createResource(t, svc)
	pub.events = nil

	store.delErr = errors.New("storage offline")

	require.NoError(t, svc.Delete(context.Background(), resource.ID))

	assert.Contains(t, store.deleted, resource.FileID)
	_, err := svc.Get(context.Background(), resource.ID)
	assert.ErrorIs(t, err, entities.ErrResourceNotFound)

	events := pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, ports.EventDelete, events[0].Event)
	assert.Equal(t, "collections.resources.documents", events[0].Channel)
}
