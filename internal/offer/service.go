package offer

import (
	"context"
	"errors"
)

var ErrOfferNotFound = errors.New("offer not found")

type Service interface {
	CreateOffer(ctx context.Context, req CreateOfferRequest) (*Offer, error)
	GetOfferByID(ctx context.Context, id int) (*Offer, error)
	ListActiveOffers(ctx context.Context) ([]Offer, error)
	DeactivateOffer(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateOffer(ctx context.Context, req CreateOfferRequest) (*Offer, error) {
	return s.repo.CreateOffer(ctx, req.Title, req.PriceCents, req.DurationMonths)
}

func (s *service) GetOfferByID(ctx context.Context, id int) (*Offer, error) {
	offer, err := s.repo.GetOfferByID(ctx, id)
	if err != nil {
		return nil, ErrOfferNotFound
	}
	return offer, nil
}

func (s *service) ListActiveOffers(ctx context.Context) ([]Offer, error) {
	return s.repo.ListActiveOffers(ctx)
}

func (s *service) DeactivateOffer(ctx context.Context, id int) error {
	if _, err := s.repo.GetOfferByID(ctx, id); err != nil {
		return ErrOfferNotFound
	}
	return s.repo.DeactivateOffer(ctx, id)
}
