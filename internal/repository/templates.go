package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourusername/cvstudio-api/internal/model"
)

type TemplateRepo struct {
	pool *pgxpool.Pool
}

func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

const templateColumns = `id, user_id, name, file_type, file_data, storage_url, placeholders, auto_analyzed, created_at, updated_at`

func scanTemplate(row pgx.Row) (*model.Template, error) {
	var t model.Template
	var placeholders []byte
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.FileType, &t.FileData, &t.StorageURL,
		&placeholders, &t.AutoAnalyzed, &t.CreatedAt, &t.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(placeholders) > 0 {
		if err := json.Unmarshal(placeholders, &t.Placeholders); err != nil {
			return nil, fmt.Errorf("decoding placeholders: %w", err)
		}
	}
	return &t, nil
}

// List returns template metadata for the dashboard. File bytes are not
// loaded here; fetch a single template when filling.
func (r *TemplateRepo) List(ctx context.Context, userID uuid.UUID) ([]model.Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, file_type, ''::bytea, storage_url, placeholders, auto_analyzed, created_at, updated_at
		FROM templates
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// FindByID loads one template including its file bytes, scoped to its owner.
func (r *TemplateRepo) FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Template, error) {
	t, err := scanTemplate(r.pool.QueryRow(ctx, `
		SELECT `+templateColumns+`
		FROM templates
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("finding template: %w", err)
	}
	return t, nil
}

// Create stores an uploaded template with its detected placeholders.
func (r *TemplateRepo) Create(ctx context.Context, userID uuid.UUID, name, fileType string, fileData []byte, placeholders []model.DocxPlaceholder, autoAnalyzed bool) (*model.Template, error) {
	ph, err := json.Marshal(placeholders)
	if err != nil {
		return nil, fmt.Errorf("encoding placeholders: %w", err)
	}
	t, err := scanTemplate(r.pool.QueryRow(ctx, `
		INSERT INTO templates (user_id, name, file_type, file_data, storage_url, placeholders, auto_analyzed)
		VALUES ($1, $2, $3, $4, '', $5, $6)
		RETURNING `+templateColumns+`
	`, userID, name, fileType, fileData, ph, autoAnalyzed))
	if err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}
	return t, nil
}

// Delete removes a template, scoped to its owner.
func (r *TemplateRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting template: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
