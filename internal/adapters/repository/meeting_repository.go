package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/ports"
)

const meetingColumns = "id, date, agenda, meet_link, post_meeting_notes, attachments, created_at, updated_at"

// meetingRow mirrors the meetings table. Attachments are persisted as a
// comma-joined id list and parsed defensively on the way out, so records
// written under older single-id schemas still read correctly.
type meetingRow struct {
	ID               uuid.UUID `db:"id"`
	Date             time.Time `db:"date"`
	Agenda           string    `db:"agenda"`
	MeetLink         string    `db:"meet_link"`
	PostMeetingNotes string    `db:"post_meeting_notes"`
	Attachments      string    `db:"attachments"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (row *meetingRow) toEntity() *entities.Meeting {
	return &entities.Meeting{
		ID:               row.ID,
		Date:             row.Date,
		Agenda:           row.Agenda,
		MeetLink:         row.MeetLink,
		PostMeetingNotes: row.PostMeetingNotes,
		Attachments:      entities.ParseAttachmentIDs(row.Attachments),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

// MeetingRepositoryImpl implements the MeetingRepository interface
type MeetingRepositoryImpl struct {
	db *sqlx.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *sqlx.DB) ports.MeetingRepository {
	return &MeetingRepositoryImpl{db: db}
}

func (r *MeetingRepositoryImpl) Create(ctx context.Context, meeting *entities.Meeting) error {
	query := `
		INSERT INTO meetings (id, date, agenda, meet_link, post_meeting_notes, attachments)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	if meeting.ID == uuid.Nil {
		meeting.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		meeting.ID, meeting.Date, meeting.Agenda, meeting.MeetLink,
		meeting.PostMeetingNotes, entities.JoinAttachmentIDs(meeting.Attachments),
	).Scan(&meeting.CreatedAt, &meeting.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}

	return nil
}

func (r *MeetingRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`

	var row meetingRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("get meeting by id: %w", err)
	}

	return row.toEntity(), nil
}

func (r *MeetingRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, diff ports.FieldDiff) (*entities.Meeting, error) {
	query, args := buildUpdateQuery("meetings", id, diff, meetingColumns)

	var row meetingRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("update meeting: %w", err)
	}

	return row.toEntity(), nil
}

func (r *MeetingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrMeetingNotFound
	}

	return nil
}

func (r *MeetingRepositoryImpl) List(ctx context.Context, filter ports.MeetingFilter) ([]*entities.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings`

	conditions := []string{}
	args := []interface{}{}
	if filter.After != nil {
		args = append(args, *filter.After)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.Before != nil {
		args = append(args, *filter.Before)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
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

	rows := []meetingRow{}
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}

	meetings := make([]*entities.Meeting, 0, len(rows))
	for i := range rows {
		meetings = append(meetings, rows[i].toEntity())
	}

	return meetings, nil
}
