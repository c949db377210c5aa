package user

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrUserNotFound = errors.New("user not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, passwordHash string, kind Kind) (*User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, kind, payment_method_ref, payment_method_expiry, created_at
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, name, email, passwordHash, kind)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password_hash, kind, payment_method_ref, payment_method_expiry, created_at
		FROM users
		WHERE email = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, name, email, password_hash, kind, payment_method_ref, payment_method_expiry, created_at
		FROM users
		WHERE id = $1
	`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) SavePaymentMethod(ctx context.Context, userID int, ref string, expiresAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET payment_method_ref = $1, payment_method_expiry = $2
		WHERE id = $3
	`, ref, expiresAt, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
