package offer

import "time"

// Offer is a purchasable membership term: a price and a duration.
type Offer struct {
	ID             int       `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	PriceCents     int64     `db:"price_cents" json:"price_cents"`
	DurationMonths int       `db:"duration_months" json:"duration_months"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type CreateOfferRequest struct {
	Title          string `json:"title" binding:"required"`
	PriceCents     int64  `json:"price_cents" binding:"required,gt=0"`
	DurationMonths int    `json:"duration_months" binding:"required,min=1,max=36"`
}
