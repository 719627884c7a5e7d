package entities

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Common errors
var (
	ErrWorkItemNotFound      = errors.New("work item not found")
	ErrMeetingNotFound       = errors.New("meeting not found")
	ErrTimelineEventNotFound = errors.New("timeline event not found")
	ErrResourceNotFound      = errors.New("resource not found")
	ErrTimerNotFound         = errors.New("timer not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrObjectNotFound        = errors.New("object not found")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrObjectTooLarge        = errors.New("object exceeds size limit")
	ErrFileRequired          = errors.New("a file is required")
)

// Collection names, used both as table names and realtime channel segments.
const (
	CollectionWorkItems      = "work_items"
	CollectionMeetings       = "meetings"
	CollectionTimelineEvents = "timeline_events"
	CollectionResources      = "resources"
	CollectionTimers         = "timers"
)

// Enums and types
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type TimelineStatus string

const (
	TimelineStatusCompleted TimelineStatus = "completed"
	TimelineStatusRequired  TimelineStatus = "required"
)

// WorkItem represents a kanban card on the project board
type WorkItem struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Assignee    string     `json:"assignee" db:"assignee"`
	Difficulty  Difficulty `json:"difficulty" db:"difficulty"`
	Status      Status     `json:"status" db:"status"`
	ImageID     *string    `json:"image_id" db:"image_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Meeting represents a scheduled team meeting
type Meeting struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Date             time.Time `json:"date" db:"date"`
	Agenda           string    `json:"agenda" db:"agenda"`
	MeetLink         string    `json:"meet_link" db:"meet_link"`
	PostMeetingNotes string    `json:"post_meeting_notes" db:"post_meeting_notes"`
	Attachments      []string  `json:"attachments" db:"-"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// TimelineEvent represents a milestone on the project journey timeline
type TimelineEvent struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Date        string         `json:"date" db:"date"`
	Description string         `json:"description" db:"description"`
	Status      TimelineStatus `json:"status" db:"status"`
	Tags        pq.StringArray `json:"tags" db:"tags"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// Resource represents a shared file with its stored object reference
type Resource struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	URL         *string   `json:"url" db:"url"`
	FileID      string    `json:"file_id" db:"file_id"`
	FileName    string    `json:"file_name" db:"file_name"`
	FileSize    string    `json:"file_size" db:"file_size"`
	UploadedBy  string    `json:"uploaded_by" db:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Timer represents the countdown timer shown on the board. At most one
// record exists; a default inactive one is created on first access.
type Timer struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TargetDate time.Time `json:"target_date" db:"target_date"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// User represents an account holder
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Board is a work-item list grouped by status column.
type Board struct {
	Todo       []*WorkItem `json:"todo"`
	InProgress []*WorkItem `json:"inprogress"`
	Done       []*WorkItem `json:"done"`
}

// GroupByStatus splits items into kanban columns. Items keep the order
// they arrive in; no further ordering inside a column is promised.
func GroupByStatus(items []*WorkItem) *Board {
	board := &Board{
		Todo:       []*WorkItem{},
		InProgress: []*WorkItem{},
		Done:       []*WorkItem{},
	}

	for _, item := range items {
		switch item.Status {
		case StatusInProgress:
			board.InProgress = append(board.InProgress, item)
		case StatusDone:
			board.Done = append(board.Done, item)
		default:
			board.Todo = append(board.Todo, item)
		}
	}

	return board
}

// HasImage reports whether the work item references a stored image.
func (w *WorkItem) HasImage() bool {
	return w.ImageID != nil && *w.ImageID != ""
}

// ParseAttachmentIDs parses a stored attachment reference into an ordered
// list of object ids. Older records stored a single id or a comma-joined
// list, so empty segments and surrounding whitespace are dropped.
func ParseAttachmentIDs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// JoinAttachmentIDs is the inverse of ParseAttachmentIDs.
func JoinAttachmentIDs(ids []string) string {
	return strings.Join(ids, ",")
}

// HasAttachments reports whether the meeting references any stored objects.
func (m *Meeting) HasAttachments() bool {
	return len(m.Attachments) > 0
}

// IsUpcoming reports whether the meeting is scheduled in the future.
func (m *Meeting) IsUpcoming() bool {
	return m.Date.After(time.Now())
}

// IsCompleted reports whether the timeline milestone is done.
func (e *TimelineEvent) IsCompleted() bool {
	return e.Status == TimelineStatusCompleted
}

// FileSizeBytes returns the stored decimal-string size as bytes.
// Malformed values degrade to zero rather than failing the read.
func (r *Resource) FileSizeBytes() uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(r.FileSize), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// FileSizeLabel returns a human-readable size such as "4.2 MB".
func (r *Resource) FileSizeLabel() string {
	return humanize.Bytes(r.FileSizeBytes())
}

// Remaining returns the time left until the target date, zero when the
// timer is inactive or the target has passed.
func (t *Timer) Remaining(now time.Time) time.Duration {
	if !t.IsActive || !t.TargetDate.After(now) {
		return 0
	}
	return t.TargetDate.Sub(now)
}

// Expired reports whether an active timer's target has passed.
func (t *Timer) Expired(now time.Time) bool {
	return t.IsActive && !t.TargetDate.After(now)
}

// Utility methods
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

func (ts TimelineStatus) IsValid() bool {
	switch ts {
	case TimelineStatusCompleted, TimelineStatusRequired:
		return true
	default:
		return false
	}
}
