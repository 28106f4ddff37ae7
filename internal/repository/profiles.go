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

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `id, user_id, name, parsed_data, avatar_url, is_default, created_at, updated_at`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	var parsed []byte
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &parsed, &p.AvatarURL, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(parsed, &p.ParsedData); err != nil {
		return nil, fmt.Errorf("decoding parsed profile data: %w", err)
	}
	return &p, nil
}

// List returns the user's profiles, default first, newest next.
func (r *ProfileRepo) List(ctx context.Context, userID uuid.UUID) ([]model.Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// FindByID loads one profile, scoped to its owner.
func (r *ProfileRepo) FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if err != nil {
		return nil, fmt.Errorf("finding profile: %w", err)
	}
	return p, nil
}

// Create inserts a profile. When isDefault is set, every other profile of
// the user loses its default flag inside the same transaction.
func (r *ProfileRepo) Create(ctx context.Context, userID uuid.UUID, name string, data model.ParsedLinkedIn, avatarURL string, isDefault bool) (*model.Profile, error) {
	parsed, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding profile data: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if isDefault {
		if _, err := tx.Exec(ctx, `UPDATE profiles SET is_default = false WHERE user_id = $1`, userID); err != nil {
			return nil, fmt.Errorf("clearing default flags: %w", err)
		}
	}

	p, err := scanProfile(tx.QueryRow(ctx, `
		INSERT INTO profiles (user_id, name, parsed_data, avatar_url, is_default)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+profileColumns+`
	`, userID, name, parsed, avatarURL, isDefault))
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing profile: %w", err)
	}
	return p, nil
}

// Update replaces a profile's mutable fields, with the same default-flag
// clearing semantics as Create.
func (r *ProfileRepo) Update(ctx context.Context, id, userID uuid.UUID, name string, data model.ParsedLinkedIn, avatarURL string, isDefault bool) (*model.Profile, error) {
	parsed, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding profile data: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if isDefault {
		if _, err := tx.Exec(ctx, `UPDATE profiles SET is_default = false WHERE user_id = $1 AND id <> $2`, userID, id); err != nil {
			return nil, fmt.Errorf("clearing default flags: %w", err)
		}
	}

	p, err := scanProfile(tx.QueryRow(ctx, `
		UPDATE profiles
		SET name = $3, parsed_data = $4, avatar_url = $5, is_default = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+profileColumns+`
	`, id, userID, name, parsed, avatarURL, isDefault))
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing profile: %w", err)
	}
	return p, nil
}

// UpdateParsedData rewrites only the parsed profile payload (used by enrich).
func (r *ProfileRepo) UpdateParsedData(ctx context.Context, id, userID uuid.UUID, data model.ParsedLinkedIn) (*model.Profile, error) {
	parsed, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding profile data: %w", err)
	}
	p, err := scanProfile(r.pool.QueryRow(ctx, `
		UPDATE profiles
		SET parsed_data = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+profileColumns+`
	`, id, userID, parsed))
	if err != nil {
		return nil, fmt.Errorf("updating parsed data: %w", err)
	}
	return p, nil
}

// Delete removes a profile, scoped to its owner.
func (r *ProfileRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting profile: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
