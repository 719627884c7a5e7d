package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAttachmentIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"single id", "abc123", []string{"abc123"}},
		{"comma joined", "a,b,c", []string{"a", "b", "c"}},
		{"padded segments", " a , b ,c ", []string{"a", "b", "c"}},
		{"empty segments dropped", "a,,b,", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAttachmentIDs(tt.raw))
		})
	}
}

func TestJoinAttachmentIDsRoundTrip(t *testing.T) {
	ids := []string{"one", "two", "three"}
	assert.Equal(t, ids, ParseAttachmentIDs(JoinAttachmentIDs(ids)))
	assert.Equal(t, "", JoinAttachmentIDs(nil))
}

func TestGroupByStatus(t *testing.T) {
	items := []*WorkItem{
		{Name: "a", Status: StatusTodo},
		{Name: "b", Status: StatusDone},
		{Name: "c", Status: StatusInProgress},
		{Name: "d", Status: StatusTodo},
	}

	board := GroupByStatus(items)

	assert.Len(t, board.Todo, 2)
	assert.Len(t, board.InProgress, 1)
	assert.Len(t, board.Done, 1)
	assert.Equal(t, "a", board.Todo[0].Name)
	assert.Equal(t, "d", board.Todo[1].Name)
}

func TestGroupByStatusEmpty(t *testing.T) {
	board := GroupByStatus(nil)

	// Columns must be non-nil so they serialize as [] rather than null.
	assert.NotNil(t, board.Todo)
	assert.NotNil(t, board.InProgress)
	assert.NotNil(t, board.Done)
	assert.Empty(t, board.Todo)
}

func TestGroupByStatusUnknownGoesToTodo(t *testing.T) {
	board := GroupByStatus([]*WorkItem{{Name: "x", Status: Status("bogus")}})
	assert.Len(t, board.Todo, 1)
}

func TestResourceFileSize(t *testing.T) {
	r := Resource{FileSize: "1048576"}
	assert.Equal(t, uint64(1048576), r.FileSizeBytes())
	assert.Equal(t, "1.0 MB", r.FileSizeLabel())

	malformed := Resource{FileSize: "lots"}
	assert.Equal(t, uint64(0), malformed.FileSizeBytes())
}

func TestTimerRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	active := Timer{TargetDate: now.Add(2 * time.Hour), IsActive: true}
	assert.Equal(t, 2*time.Hour, active.Remaining(now))
	assert.False(t, active.Expired(now))

	passed := Timer{TargetDate: now.Add(-time.Minute), IsActive: true}
	assert.Equal(t, time.Duration(0), passed.Remaining(now))
	assert.True(t, passed.Expired(now))

	inactive := Timer{TargetDate: now.Add(time.Hour), IsActive: false}
	assert.Equal(t, time.Duration(0), inactive.Remaining(now))
	assert.False(t, inactive.Expired(now))
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, StatusTodo.IsValid())
	assert.True(t, StatusInProgress.IsValid())
	assert.True(t, StatusDone.IsValid())
	assert.False(t, Status("archived").IsValid())

	assert.True(t, DifficultyMedium.IsValid())
	assert.False(t, Difficulty("extreme").IsValid())

	assert.True(t, TimelineStatusCompleted.IsValid())
	assert.False(t, TimelineStatus("pending").IsValid())
}

func TestWorkItemHasImage(t *testing.T) {
	empty := ""
	id := "obj-1"

	assert.False(t, (&WorkItem{}).HasImage())
	assert.False(t, (&WorkItem{ImageID: &empty}).HasImage())
	assert.True(t, (&WorkItem{ImageID: &id}).HasImage())
}
