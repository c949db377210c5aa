package pass

import "time"

// Pass is one member's current membership term. At most one pass per member
// is active at any time, enforced both here and by a partial unique index.
type Pass struct {
	ID            int       `db:"id" json:"id"`
	MemberID      int       `db:"member_id" json:"member_id"`
	Title         string    `db:"title" json:"title"`
	StartsAt      time.Time `db:"starts_at" json:"starts_at"`
	EndsAt        time.Time `db:"ends_at" json:"ends_at"`
	NextPaymentAt time.Time `db:"next_payment_at" json:"next_payment_at"`
	PriceCents    int64     `db:"price_cents" json:"price_cents"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// HistoricalPass is the immutable snapshot archived when a pass is
// deactivated, whether by expiry or by a failed charge.
type HistoricalPass struct {
	ID         int       `db:"id" json:"id"`
	MemberID   int       `db:"member_id" json:"member_id"`
	Title      string    `db:"title" json:"title"`
	StartsAt   time.Time `db:"starts_at" json:"starts_at"`
	EndsAt     time.Time `db:"ends_at" json:"ends_at"`
	PriceCents int64     `db:"price_cents" json:"price_cents"`
	ArchivedAt time.Time `db:"archived_at" json:"archived_at"`
}

type PurchaseRequest struct {
	OfferID int `json:"offer_id" binding:"required"`
}
