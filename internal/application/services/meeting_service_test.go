package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

func newMeetingFixture() (*MeetingService, *fakeMeetingRepo, *fakeObjectStore, *fakePublisher) {
	repo := newFakeMeetingRepo()
	store := newFakeObjectStore()
	pub := &fakePublisher{}
	svc := NewMeetingService(repo, store, pub, "attachments", logger.NewNop())
	return svc, repo, store, pub
}

func createMeeting(t *testing.T, svc *MeetingService) *entities.Meeting {
	t.Helper()
	meeting, err := svc.Create(context.Background(), ports.CreateMeetingRequest{
		Date:     time.Now().Add(24 * time.Hour),
		Agenda:   "Plan the next sprint and review blockers",
		MeetLink: "https://meet.example.com/sprint",
	})
	require.NoError(t, err)
	return meeting
}

func TestMeetingAttachmentsKeepUploadOrder(t *testing.T) {
	svc, _, _, _ := newMeetingFixture()
	meeting := createMeeting(t, svc)

	for _, name := range []string{"first.pdf", "second.pdf", "third.pdf"} {
		var err error
		meeting, err = svc.AddAttachment(context.Background(), meeting.ID, ports.FileUpload{
			FileName: name, Size: 1, Reader: strings.NewReader("x"),
		})
		require.NoError(t, err)
	}

	require.Len(t, meeting.Attachments, 3)

	// Remove the middle one; the remaining order must be preserved.
	removed := meeting.Attachments[1]
	first, third := meeting.Attachments[0], meeting.Attachments[2]

	meeting, err := svc.RemoveAttachment(context.Background(), meeting.ID, removed)
	require.NoError(t, err)
	assert.Equal(t, []string{first, third}, meeting.Attachments)
}

func TestMeetingRemoveUnknownAttachmentIsNoop(t *testing.T) {
	svc, repo, _, pub := newMeetingFixture()
	meeting := createMeeting(t, svc)
	pub.events = nil
	repo.updateCalls = nil

	got, err := svc.RemoveAttachment(context.Background(), meeting.ID, "no-such-object")

	require.NoError(t, err)
	assert.Equal(t, meeting.Attachments, got.Attachments)
	assert.Empty(t, repo.updateCalls)
	assert.Empty(t, pub.all())
}

func TestMeetingUpdateDiffsAgainstStored(t *testing.T) {
	svc, repo, _, _ := newMeetingFixture()
	meeting := createMeeting(t, svc)
	repo.updateCalls = nil

	sameAgenda := meeting.Agenda
	newNotes := "Decisions captured in the shared doc"
	got, err := svc.Update(context.Background(), meeting.ID, ports.UpdateMeetingRequest{
		Agenda:           &sameAgenda,
		PostMeetingNotes: &newNotes,
	})

	require.NoError(t, err)
	assert.Equal(t, newNotes, got.PostMeetingNotes)
	require.Len(t, repo.updateCalls, 1)
	assert.Len(t, repo.updateCalls[0], 1)
	assert.Equal(t, newNotes, repo.updateCalls[0]["post_meeting_notes"])
}

func TestMeetingDeleteCleansUpAttachments(t *testing.T) {
	svc, _, store, _ := newMeetingFixture()
	meeting := createMeeting(t, svc)

	meeting, err := svc.AddAttachment(context.Background(), meeting.ID, ports.FileUpload{
		FileName: "deck.pdf", Size: 4, Reader: strings.NewReader("deck"),
	})
	require.NoError(t, err)
	objectID := meeting.Attachments[0]

	require.NoError(t, svc.Delete(context.Background(), meeting.ID))

	assert.Contains(t, store.deleted, objectID)
	_, err = svc.Get(context.Background(), meeting.ID)
	assert.ErrorIs(t, err, entities.ErrMeetingNotFound)
}
