package pass

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const passColumns = `id, member_id, title, starts_at, ends_at, next_payment_at, price_cents, active, created_at`

func (r *repository) CreatePass(ctx context.Context, p *Pass) (*Pass, error) {
	created := &Pass{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO passes (member_id, title, starts_at, ends_at, next_payment_at, price_cents, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING `+passColumns+`
	`, p.MemberID, p.Title, p.StartsAt, p.EndsAt, p.NextPaymentAt, p.PriceCents).StructScan(created)

	return created, err
}

func (r *repository) FindByID(ctx context.Context, id int) (*Pass, error) {
	p := &Pass{}
	err := r.db.GetContext(ctx, p, `
		SELECT `+passColumns+`
		FROM passes
		WHERE id = $1
	`, id)
	return p, err
}

func (r *repository) FindActiveByMember(ctx context.Context, memberID int) (*Pass, error) {
	p := &Pass{}
	err := r.db.GetContext(ctx, p, `
		SELECT `+passColumns+`
		FROM passes
		WHERE member_id = $1 AND active = TRUE
	`, memberID)
	return p, err
}

func (r *repository) FindDueForBilling(ctx context.Context, dayStart, dayEnd time.Time) ([]Pass, error) {
	passes := []Pass{}
	err := r.db.SelectContext(ctx, &passes, `
		SELECT `+passColumns+`
		FROM passes
		WHERE active = TRUE
		  AND next_payment_at >= $1
		  AND next_payment_at <= $2
		ORDER BY id
	`, dayStart, dayEnd)
	return passes, err
}

func (r *repository) FindExpired(ctx context.Context, now time.Time) ([]Pass, error) {
	passes := []Pass{}
	err := r.db.SelectContext(ctx, &passes, `
		SELECT `+passColumns+`
		FROM passes
		WHERE active = TRUE
		  AND ends_at < $1
		ORDER BY id
	`, now)
	return passes, err
}

func (r *repository) AdvanceNextPayment(ctx context.Context, passID int, next time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE passes
		SET next_payment_at = $1
		WHERE id = $2
	`, next, passID)
	return err
}

// DeactivateIfActive flips the active flag as a single compare-and-set.
// It reports whether this caller won; a false return means someone else
// (the other sweep, or a concurrent purchase path) already deactivated it.
func (r *repository) DeactivateIfActive(ctx context.Context, passID int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE passes
		SET active = FALSE
		WHERE id = $1 AND active = TRUE
	`, passID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *repository) SaveHistoricalPass(ctx context.Context, p *Pass, archivedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO historical_passes (member_id, title, starts_at, ends_at, price_cents, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.MemberID, p.Title, p.StartsAt, p.EndsAt, p.PriceCents, archivedAt)
	return err
}

func (r *repository) ListHistoricalByMember(ctx context.Context, memberID int) ([]HistoricalPass, error) {
	history := []HistoricalPass{}
	err := r.db.SelectContext(ctx, &history, `
		SELECT id, member_id, title, starts_at, ends_at, price_cents, archived_at
		FROM historical_passes
		WHERE member_id = $1
		ORDER BY archived_at DESC
	`, memberID)
	return history, err
}
