package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/ports"
)

const timerColumns = "id, target_date, is_active, created_at, updated_at"

// TimerRepositoryImpl implements the TimerRepository interface. The
// timers table holds at most one row in practice; GetFirst returns the
// oldest one so concurrent first-time creates converge on a single record.
type TimerRepositoryImpl struct {
	db *sqlx.DB
}

// NewTimerRepository creates a new timer repository
func NewTimerRepository(db *sqlx.DB) ports.TimerRepository {
	return &TimerRepositoryImpl{db: db}
}

func (r *TimerRepositoryImpl) Create(ctx context.Context, timer *entities.Timer) error {
	query := `
		INSERT INTO timers (id, target_date, is_active)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	if timer.ID == uuid.Nil {
		timer.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		timer.ID, timer.TargetDate, timer.IsActive,
	).Scan(&timer.CreatedAt, &timer.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create timer: %w", err)
	}

	return nil
}

func (r *TimerRepositoryImpl) GetFirst(ctx context.Context) (*entities.Timer, error) {
	query := `SELECT ` + timerColumns + ` FROM timers ORDER BY created_at ASC LIMIT 1`

	var timer entities.Timer
	err := r.db.GetContext(ctx, &timer, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTimerNotFound
		}
		return nil, fmt.Errorf("get timer: %w", err)
	}

	return &timer, nil
}

func (r *TimerRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, diff ports.FieldDiff) (*entities.Timer, error) {
	query, args := buildUpdateQuery("timers", id, diff, timerColumns)

	var timer entities.Timer
	err := r.db.GetContext(ctx, &timer, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTimerNotFound
		}
		return nil, fmt.Errorf("update timer: %w", err)
	}

	return &timer, nil
}
