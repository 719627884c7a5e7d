package ports

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/collabrixo/core/internal/domain/entities"
)

// AuthService interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// WorkItemService interface for kanban card operations
type WorkItemService interface {
	Create(ctx context.Context, req CreateWorkItemRequest) (*entities.WorkItem, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.WorkItem, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateWorkItemRequest) (*entities.WorkItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter WorkItemFilter) ([]*entities.WorkItem, error)
	Board(ctx context.Context) (*entities.Board, error)
	ReplaceImage(ctx context.Context, id uuid.UUID, upload FileUpload) (*entities.WorkItem, error)
	RemoveImage(ctx context.Context, id uuid.UUID) (*entities.WorkItem, error)
}

// MeetingService interface for meeting operations
type MeetingService interface {
	Create(ctx context.Context, req CreateMeetingRequest) (*entities.Meeting, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateMeetingRequest) (*entities.Meeting, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter MeetingFilter) ([]*entities.Meeting, error)
	AddAttachment(ctx context.Context, id uuid.UUID, upload FileUpload) (*entities.Meeting, error)
	RemoveAttachment(ctx context.Context, id uuid.UUID, objectID string) (*entities.Meeting, error)
}

// TimelineService interface for journey timeline operations
type TimelineService interface {
	Create(ctx context.Context, req CreateTimelineEventRequest) (*entities.TimelineEvent, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.TimelineEvent, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateTimelineEventRequest) (*entities.TimelineEvent, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TimelineEventFilter) ([]*entities.TimelineEvent, error)
}

// ResourceService interface for shared file operations
type ResourceService interface {
	Create(ctx context.Context, req CreateResourceRequest) (*entities.Resource, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.Resource, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateResourceRequest) (*entities.Resource, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ResourceFilter) ([]*entities.Resource, error)
}

// TimerService interface for the countdown timer
type TimerService interface {
	Get(ctx context.Context) (*entities.Timer, error)
	Set(ctx context.Context, req SetTimerRequest) (*entities.Timer, error)
}

// FileUpload carries an incoming attachment through a service call.
type FileUpload struct {
	FileName string
	Size     int64
	Reader   io.Reader
}

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	User         *entities.User `json:"user"`
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Work item related types
type CreateWorkItemRequest struct {
	Name        string              `json:"name" validate:"required,min=2,max=50"`
	Description string              `json:"description"`
	Assignee    string              `json:"assignee" validate:"required,min=2"`
	Difficulty  entities.Difficulty `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Status      entities.Status     `json:"status" validate:"required,oneof=todo inprogress done"`
}

type UpdateWorkItemRequest struct {
	Name        *string              `json:"name" validate:"omitempty,min=2,max=50"`
	Description *string              `json:"description"`
	Assignee    *string              `json:"assignee" validate:"omitempty,min=2"`
	Difficulty  *entities.Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Status      *entities.Status     `json:"status" validate:"omitempty,oneof=todo inprogress done"`
}

// Meeting related types
type CreateMeetingRequest struct {
	Date             time.Time `json:"date" validate:"required"`
	Agenda           string    `json:"agenda" validate:"required,min=10"`
	MeetLink         string    `json:"meet_link" validate:"required,url"`
	PostMeetingNotes string    `json:"post_meeting_notes"`
}

type UpdateMeetingRequest struct {
	Date             *time.Time `json:"date"`
	Agenda           *string    `json:"agenda" validate:"omitempty,min=10"`
	MeetLink         *string    `json:"meet_link" validate:"omitempty,url"`
	PostMeetingNotes *string    `json:"post_meeting_notes"`
}

// Timeline related types
type CreateTimelineEventRequest struct {
	Title       string                  `json:"title" validate:"required,min=2,max=100"`
	Date        string                  `json:"date" validate:"required"`
	Description string                  `json:"description"`
	Status      entities.TimelineStatus `json:"status" validate:"required,oneof=completed required"`
	Tags        []string                `json:"tags"`
}

type UpdateTimelineEventRequest struct {
	Title       *string                  `json:"title" validate:"omitempty,min=2,max=100"`
	Date        *string                  `json:"date"`
	Description *string                  `json:"description"`
	Status      *entities.TimelineStatus `json:"status" validate:"omitempty,oneof=completed required"`
	Tags        []string                 `json:"tags"`
}

// Resource related types. Create requires a file; Update treats it as an
// optional replacement whose upload failure must not sink the field diff.
type CreateResourceRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=50"`
	Description string  `json:"description"`
	URL         *string `json:"url" validate:"omitempty,url"`
	UploadedBy  string  `json:"uploaded_by" validate:"required"`
	File        *FileUpload
}

type UpdateResourceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=50"`
	Description *string `json:"description"`
	URL         *string `json:"url" validate:"omitempty,url"`
	File        *FileUpload
}

// Timer related types
type SetTimerRequest struct {
	TargetDate *time.Time `json:"target_date"`
	IsActive   *bool      `json:"is_active"`
}

// Response types for pagination and common structures
type PaginatedResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
