package ports

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/collabrixo/core/internal/domain/entities"
)

// FieldDiff is the set of columns an update actually changes. Services
// compute it by comparing submitted values against the stored record;
// repositories write exactly these fields plus a refreshed updated_at.
// An empty diff means no write happens at all.
type FieldDiff map[string]interface{}

// WorkItemRepository defines the interface for work item data operations
type WorkItemRepository interface {
	Create(ctx context.Context, item *entities.WorkItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.WorkItem, error)
	UpdateFields(ctx context.Context, id uuid.UUID, diff FieldDiff) (*entities.WorkItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter WorkItemFilter) ([]*entities.WorkItem, error)
	Count(ctx context.Context, filter WorkItemFilter) (int64, error)
}

// MeetingRepository defines the interface for meeting data operations
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	UpdateFields(ctx context.Context, id uuid.UUID, diff FieldDiff) (*entities.Meeting, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter MeetingFilter) ([]*entities.Meeting, error)
}

// TimelineEventRepository defines the interface for timeline data operations
type TimelineEventRepository interface {
	Create(ctx context.Context, event *entities.TimelineEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TimelineEvent, error)
	UpdateFields(ctx context.Context, id uuid.UUID, diff FieldDiff) (*entities.TimelineEvent, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TimelineEventFilter) ([]*entities.TimelineEvent, error)
}

// ResourceRepository defines the interface for resource data operations
type ResourceRepository interface {
	Create(ctx context.Context, resource *entities.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Resource, error)
	UpdateFields(ctx context.Context, id uuid.UUID, diff FieldDiff) (*entities.Resource, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ResourceFilter) ([]*entities.Resource, error)
}

// TimerRepository defines the interface for the countdown timer record
type TimerRepository interface {
	Create(ctx context.Context, timer *entities.Timer) error
	GetFirst(ctx context.Context) (*entities.Timer, error)
	UpdateFields(ctx context.Context, id uuid.UUID, diff FieldDiff) (*entities.Timer, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthRepository defines the interface for refresh token persistence
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredTokens(ctx context.Context) error
}

// ObjectStore defines the interface for binary attachment storage.
// Objects are opaque blobs addressed by server-assigned ids and referenced
// from documents; deleting a referencing document best-effort deletes the
// object but never depends on that succeeding.
type ObjectStore interface {
	Put(ctx context.Context, bucket, fileName string, size int64, r io.Reader) (string, error)
	Open(ctx context.Context, bucket, objectID string) (io.ReadCloser, *ObjectInfo, error)
	URL(bucket, objectID string) string
	Delete(ctx context.Context, bucket, objectID string) error
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
}

// EventPublisher delivers change notifications to realtime subscribers.
// Delivery is fire-and-forget; a publish never fails the mutation it
// reports on.
type EventPublisher interface {
	Publish(event ChangeEvent)
}

// Change event kinds
const (
	EventCreate = "create"
	EventUpdate = "update"
	EventDelete = "delete"
)

// ChannelFor returns the realtime channel name for a collection, e.g.
// "collections.work_items.documents".
func ChannelFor(collection string) string {
	return "collections." + collection + ".documents"
}

// ChangeEvent is the payload broadcast on a collection channel after a
// successful mutation. Subscribers are expected to re-fetch the list; the
// event deliberately carries no document body.
type ChangeEvent struct {
	Event      string    `json:"event"`
	Channel    string    `json:"channel"`
	DocumentID string    `json:"document_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Filter types for repository queries
type WorkItemFilter struct {
	Status   *entities.Status
	Assignee *string
	Limit    int
	Offset   int
}

type MeetingFilter struct {
	After  *time.Time
	Before *time.Time
	Limit  int
	Offset int
}

type TimelineEventFilter struct {
	Status *entities.TimelineStatus
	Tag    *string
	Limit  int
	Offset int
}

type ResourceFilter struct {
	UploadedBy *string
	Limit      int
	Offset     int
}

// RefreshToken represents a refresh token record
type RefreshToken struct {
	ID        int        `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash string     `json:"token_hash" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

// IsExpired checks if the refresh token is expired
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsRevoked checks if the refresh token is revoked
func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// IsValid checks if the refresh token is valid
func (rt *RefreshToken) IsValid() bool {
	return !rt.IsExpired() && !rt.IsRevoked()
}
