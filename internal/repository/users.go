package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourusername/cvstudio-api/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, firebase_uid, email, name, free_credits, purchased_credits,
       api_key_encrypted, api_provider, api_model, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.FirebaseUID, &u.Email, &u.Name, &u.FreeCredits, &u.PurchasedCredits,
		&u.APIKeyEncrypted, &u.APIProvider, &u.APIModel, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByFirebaseUID looks up a user by their Firebase UID
func (r *UserRepo) FindByFirebaseUID(ctx context.Context, firebaseUID string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE firebase_uid = $1
	`, firebaseUID))
	if err != nil {
		return nil, fmt.Errorf("finding user by firebase uid: %w", err)
	}
	return u, nil
}

// FindByID looks up a user by internal UUID
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("finding user by id: %w", err)
	}
	return u, nil
}

// Create inserts a new user with the starter credit grant
func (r *UserRepo) Create(ctx context.Context, firebaseUID, email, name string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		INSERT INTO users (firebase_uid, email, name, free_credits, purchased_credits)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING `+userColumns+`
	`, firebaseUID, email, name, model.StarterCredits))
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// SpendCredits atomically deducts amount from the user's balance, consuming
// free credits before purchased ones. It returns false without modifying
// anything when the combined balance is insufficient; the conditional UPDATE
// makes concurrent spends safe without an explicit transaction.
func (r *UserRepo) SpendCredits(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("spend amount must be positive, got %d", amount)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET free_credits = GREATEST(free_credits - $2, 0),
		    purchased_credits = purchased_credits - GREATEST($2 - free_credits, 0),
		    updated_at = now()
		WHERE id = $1 AND free_credits + purchased_credits >= $2
	`, id, amount)
	if err != nil {
		return false, fmt.Errorf("spending credits: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AddPurchasedCredits credits a completed purchase.
func (r *UserRepo) AddPurchasedCredits(ctx context.Context, id uuid.UUID, amount int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET purchased_credits = purchased_credits + $2, updated_at = now() WHERE id = $1
	`, id, amount)
	if err != nil {
		return fmt.Errorf("adding purchased credits: %w", err)
	}
	return nil
}

// UpdateAPIKey stores the user's own provider key (already encrypted by the
// handler layer).
func (r *UserRepo) UpdateAPIKey(ctx context.Context, id uuid.UUID, encryptedKey, provider, aiModel string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET api_key_encrypted = $2, api_provider = $3, api_model = $4, updated_at = now()
		WHERE id = $1
	`, id, encryptedKey, provider, aiModel)
	if err != nil {
		return fmt.Errorf("updating api key: %w", err)
	}
	return nil
}
