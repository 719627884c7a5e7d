package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/ports"
)

const timelineColumns = "id, title, date, description, status, tags, created_at, updated_at"

// TimelineEventRepositoryImpl implements the TimelineEventRepository interface
type TimelineEventRepositoryImpl struct {
	db *sqlx.DB
}

// NewTimelineEventRepository creates a new timeline event repository
func NewTimelineEventRepository(db *sqlx.DB) ports.TimelineEventRepository {
	return &TimelineEventRepositoryImpl{db: db}
}

func (r *TimelineEventRepositoryImpl) Create(ctx context.Context, event *entities.TimelineEvent) error {
	query := `
		INSERT INTO timeline_events (id, title, date, description, status, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Tags == nil {
		event.Tags = pq.StringArray{}
	}

	err := r.db.QueryRowContext(ctx, query,
		event.ID, event.Title, event.Date, event.Description, event.Status, event.Tags,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create timeline event: %w", err)
	}

	return nil
}

func (r *TimelineEventRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.TimelineEvent, error) {
	query := `SELECT ` + timelineColumns + ` FROM timeline_events WHERE id = $1`

	var event entities.TimelineEvent
	err := r.db.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTimelineEventNotFound
		}
		return nil, fmt.Errorf("get timeline event by id: %w", err)
	}

	return &event, nil
}

func (r *TimelineEventRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, diff ports.FieldDiff) (*entities.TimelineEvent, error) {
	query, args := buildUpdateQuery("timeline_events", id, diff, timelineColumns)

	var event entities.TimelineEvent
	err := r.db.GetContext(ctx, &event, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTimelineEventNotFound
		}
		return nil, fmt.Errorf("update timeline event: %w", err)
	}

	return &event, nil
}

func (r *TimelineEventRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timeline_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timeline event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTimelineEventNotFound
	}

	return nil
}

func (r *TimelineEventRepositoryImpl) List(ctx context.Context, filter ports.TimelineEventFilter) ([]*entities.TimelineEvent, error) {
	query := `SELECT ` + timelineColumns + ` FROM timeline_events`

	conditions := []string{}
	args := []interface{}{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Tag != nil {
		args = append(args, *filter.Tag)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	events := []*entities.TimelineEvent{}
	err := r.db.SelectContext(ctx, &events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list timeline events: %w", err)
	}

	return events, nil
}
