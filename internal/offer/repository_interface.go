package offer

import "context"

type Repository interface {
	CreateOffer(ctx context.Context, title string, priceCents int64, durationMonths int) (*Offer, error)
	GetOfferByID(ctx context.Context, id int) (*Offer, error)
	ListActiveOffers(ctx context.Context) ([]Offer, error)
	DeactivateOffer(ctx context.Context, id int) error
}
