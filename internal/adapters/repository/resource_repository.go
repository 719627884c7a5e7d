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

const resourceColumns = "id, name, description, url, file_id, file_name, file_size, uploaded_by, created_at, updated_at"

// ResourceRepositoryImpl implements the ResourceRepository interface
type ResourceRepositoryImpl struct {
	db *sqlx.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *sqlx.DB) ports.ResourceRepository {
	return &ResourceRepositoryImpl{db: db}
}

func (r *ResourceRepositoryImpl) Create(ctx context.Context, resource *entities.Resource) error {
	query := `
		INSERT INTO resources (id, name, description, url, file_id, file_name, file_size, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	if resource.ID == uuid.Nil {
		resource.ID = uuid.New()
	}

	err := r.db.QueryRowContext(ctx, query,
		resource.ID, resource.Name, resource.Description, resource.URL,
		resource.FileID, resource.FileName, resource.FileSize, resource.UploadedBy,
	).Scan(&resource.CreatedAt, &resource.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	return nil
}

func (r *ResourceRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`

	var resource entities.Resource
	err := r.db.GetContext(ctx, &resource, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrResourceNotFound
		}
		return nil, fmt.Errorf("get resource by id: %w", err)
	}

	return &resource, nil
}

func (r *ResourceRepositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, diff ports.FieldDiff) (*entities.Resource, error) {
	query, args := buildUpdateQuery("resources", id, diff, resourceColumns)

	var resource entities.Resource
	err := r.db.GetContext(ctx, &resource, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrResourceNotFound
		}
		return nil, fmt.Errorf("update resource: %w", err)
	}

	return &resource, nil
}

func (r *ResourceRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrResourceNotFound
	}

	return nil
}

func (r *ResourceRepositoryImpl) List(ctx context.Context, filter ports.ResourceFilter) ([]*entities.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources`
	args := []interface{}{}

	if filter.UploadedBy != nil {
		args = append(args, *filter.UploadedBy)
		query += fmt.Sprintf(" WHERE uploaded_by = $%d", len(args))
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

	resources := []*entities.Resource{}
	err := r.db.SelectContext(ctx, &resources, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	return resources, nil
}
