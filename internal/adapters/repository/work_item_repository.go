package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/collabrixo/core/internal/domain/entities"
	"github.com/collabrixo/core/internal/ports"
)

const workItemColumns = "id, name, description, assignee, difficulty, status, image_id, created_at, updated_at"

// WorkItemRepositoryImpl implements the WorkItemRepository interface
type WorkItemRepositoryImpl struct {
	db *sqlx.DB
}

// NewWorkItemRepository creates a new work item repository
func NewWorkItemRepository(db *sqlx.DB) ports.WorkItemRepository {
	return &WorkItemRepositoryImpl{db: db}
}

func (r *WorkItemRepositoryImpl) Create(ctx context.Context, item *entities.WorkItem) error {
	query := `
		INSERT INTO work_items (id, name, description, assignee, difficulty, status, image_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		item.ID, item.Name, item.Description, item.Assignee,
		item.Difficulty, item.Status, item.ImageID,
	).Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create work item: %w", err)
	}

	return nil
}

func (r *WorkItemRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = $1`

	var item entities.WorkItem
	err := r.db.GetContext(ctx, &item, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrWorkItemNotFound
		}
		return nil, fmt.Errorf("get work item by id: %w", err)
	}

	return &item, nil
}

func (r *WorkItemRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, diff ports.FieldDiff) (*entities.WorkItem, error) {
	query, args := buildUpdateQuery("work_items", id, diff, workItemColumns)

	var item entities.WorkItem
	err := r.db.GetContext(ctx, &item, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrWorkItemNotFound
		}
		return nil, fmt.Errorf("update work item: %w", err)
	}

	return &item, nil
}

func (r *WorkItemRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM work_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete work item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrWorkItemNotFound
	}

	return nil
}

func (r *WorkItemRepositoryImpl) List(ctx context.Context, filter ports.WorkItemFilter) ([]*entities.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items`
	where, args := workItemWhere(filter)
	query += where + ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	items := []*entities.WorkItem{}
	err := r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}

	return items, nil
}

func (r *WorkItemRepositoryImpl) Count(ctx context.Context, filter ports.WorkItemFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM work_items`
	where, args := workItemWhere(filter)
	query += where

	var count int64
	err := r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("count work items: %w", err)
	}

	return count, nil
}

func workItemWhere(filter ports.WorkItemFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Assignee != nil {
		args = append(args, *filter.Assignee)
		conditions = append(conditions, fmt.Sprintf("assignee = $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
