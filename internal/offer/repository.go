package offer

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOffer(ctx context.Context, title string, priceCents int64, durationMonths int) (*Offer, error) {
	offer := &Offer{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO offers (title, price_cents, duration_months, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, title, price_cents, duration_months, active, created_at
	`, title, priceCents, durationMonths).StructScan(offer)

	return offer, err
}

func (r *repository) GetOfferByID(ctx context.Context, id int) (*Offer, error) {
	offer := &Offer{}
	err := r.db.GetContext(ctx, offer, `
		SELECT id, title, price_cents, duration_months, active, created_at
		FROM offers
		WHERE id = $1
	`, id)

	return offer, err
}

func (r *repository) ListActiveOffers(ctx context.Context) ([]Offer, error) {
	offers := []Offer{}
	err := r.db.SelectContext(ctx, &offers, `
		SELECT id, title, price_cents, duration_months, active, created_at
		FROM offers
		WHERE active = TRUE
		ORDER BY price_cents ASC
	`)
	return offers, err
}

func (r *repository) DeactivateOffer(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE offers
		SET active = FALSE
		WHERE id = $1
	`, id)
	return err
}
