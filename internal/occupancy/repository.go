package occupancy

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrEntryAlreadyClosed = errors.New("gym entry already closed")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEntry(ctx context.Context, userID int, enteredAt time.Time) (*GymEntry, error) {
	entry := &GymEntry{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO gym_entries (user_id, entered_at)
		VALUES ($1, $2)
		RETURNING id, user_id, entered_at, exited_at
	`, userID, enteredAt).StructScan(entry)

	return entry, err
}

// CloseEntry stamps the exit exactly once; the IS NULL guard makes a second
// close a no-op reported as ErrEntryAlreadyClosed.
func (r *repository) CloseEntry(ctx context.Context, entryID int, exitedAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE gym_entries
		SET exited_at = $1
		WHERE id = $2 AND exited_at IS NULL
	`, exitedAt, entryID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEntryAlreadyClosed
	}

	return nil
}

func (r *repository) FindOpenEntryByUser(ctx context.Context, userID int) (*GymEntry, error) {
	entry := &GymEntry{}
	err := r.db.GetContext(ctx, entry, `
		SELECT id, user_id, entered_at, exited_at
		FROM gym_entries
		WHERE user_id = $1 AND exited_at IS NULL
		ORDER BY entered_at DESC
		LIMIT 1
	`, userID)
	return entry, err
}

func (r *repository) FindOpenEntries(ctx context.Context) ([]GymEntry, error) {
	entries := []GymEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, entered_at, exited_at
		FROM gym_entries
		WHERE exited_at IS NULL
		ORDER BY entered_at
	`)
	return entries, err
}

func (r *repository) ListEntriesByUser(ctx context.Context, userID, limit int) ([]GymEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	entries := []GymEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, entered_at, exited_at
		FROM gym_entries
		WHERE user_id = $1
		ORDER BY entered_at DESC
		LIMIT $2
	`, userID, limit)
	return entries, err
}
