package pass

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pbgym/internal/calendar"
	"pbgym/internal/logger"
	"pbgym/internal/metrics"
	"pbgym/internal/offer"
	"pbgym/internal/payment"
	"pbgym/internal/user"
)

var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrOfferNotFound    = errors.New("offer not found")
	ErrOfferNotActive   = errors.New("offer is not active")
	ErrActivePassExists = errors.New("member already has an active pass")
	ErrNoPaymentMethod  = errors.New("no usable payment method on file")
	ErrPaymentFailed    = errors.New("payment failed")
)

// Notifier sends member-facing notices about pass lifecycle events. Notice
// failures are logged and never change a sweep's outcome.
type Notifier interface {
	SendPaymentReceipt(ctx context.Context, email, name, passTitle string, amountCents int64) error
	SendPaymentFailureNotice(ctx context.Context, email, name, passTitle string) error
	SendPassExpiryNotice(ctx context.Context, email, name, passTitle string) error
}

type Service interface {
	CreatePass(ctx context.Context, memberID, offerID int) (*Pass, error)
	GetActiveForMember(ctx context.Context, memberID int) (*Pass, error)
	HasActivePass(ctx context.Context, memberID int) (bool, error)
	ListHistoryForMember(ctx context.Context, memberID int) ([]HistoricalPass, error)

	// Batch entry points, driven once daily by the clock. Both take the
	// sweep instant explicitly so they stay independent of any scheduler.
	ChargeForActivePasses(ctx context.Context, now time.Time) error
	DeactivateExpiredPasses(ctx context.Context, now time.Time) error
}

type service struct {
	repo      Repository
	userRepo  user.Repository
	offerRepo offer.Repository
	gateway   payment.Gateway
	notifier  Notifier
	loc       *time.Location
}

func NewService(
	repo Repository,
	userRepo user.Repository,
	offerRepo offer.Repository,
	gateway payment.Gateway,
	notifier Notifier,
	loc *time.Location,
) Service {
	return &service{
		repo:      repo,
		userRepo:  userRepo,
		offerRepo: offerRepo,
		gateway:   gateway,
		notifier:  notifier,
		loc:       loc,
	}
}

// CreatePass purchases a new pass. Preconditions are checked in a fixed
// order and the first failure wins; the first month is charged synchronously
// before anything is persisted, so a declined charge leaves no state behind.
func (s *service) CreatePass(ctx context.Context, memberID, offerID int) (*Pass, error) {
	member, err := s.userRepo.FindByID(ctx, memberID)
	if err != nil || member.Kind != user.KindMember {
		return nil, ErrMemberNotFound
	}

	off, err := s.offerRepo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, ErrOfferNotFound
	}
	if !off.Active {
		return nil, ErrOfferNotActive
	}

	if _, err := s.repo.FindActiveByMember(ctx, memberID); err == nil {
		return nil, ErrActivePassExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := time.Now().In(s.loc)
	if !member.HasUsablePaymentMethod(now) {
		return nil, ErrNoPaymentMethod
	}

	if err := s.gateway.Charge(ctx, *member.PaymentMethodRef, off.PriceCents); err != nil {
		logger.Warnf("Pass purchase charge declined for member %d: %v", memberID, err)
		return nil, ErrPaymentFailed
	}

	created, err := s.repo.CreatePass(ctx, &Pass{
		MemberID:      memberID,
		Title:         off.Title,
		StartsAt:      now,
		EndsAt:        calendar.AddMonthsEndOfDay(now, off.DurationMonths, s.loc),
		NextPaymentAt: calendar.AddMonthsEndOfDay(now, 1, s.loc),
		PriceCents:    off.PriceCents,
	})
	if err != nil {
		// The partial unique index catches the race where another purchase
		// slipped in between the active-pass check and this insert.
		return nil, ErrActivePassExists
	}

	metrics.RecordPassCreated()
	s.notifyReceipt(ctx, member, created)

	return created, nil
}

func (s *service) GetActiveForMember(ctx context.Context, memberID int) (*Pass, error) {
	return s.repo.FindActiveByMember(ctx, memberID)
}

func (s *service) HasActivePass(ctx context.Context, memberID int) (bool, error) {
	_, err := s.repo.FindActiveByMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) ListHistoryForMember(ctx context.Context, memberID int) ([]HistoricalPass, error) {
	return s.repo.ListHistoricalByMember(ctx, memberID)
}

// ChargeForActivePasses bills every active pass whose next payment falls on
// the current day. Passes are processed independently: one failing charge
// deactivates that pass and the run moves on.
func (s *service) ChargeForActivePasses(ctx context.Context, now time.Time) error {
	dayStart := time.Date(now.In(s.loc).Year(), now.In(s.loc).Month(), now.In(s.loc).Day(), 0, 0, 0, 0, s.loc)
	dayEnd := calendar.EndOfDay(now, s.loc)

	due, err := s.repo.FindDueForBilling(ctx, dayStart, dayEnd)
	if err != nil {
		return err
	}

	logger.Infof("Billing sweep: %d passes due", len(due))

	for i := range due {
		p := &due[i]
		if err := s.billPass(ctx, p, now); err != nil {
			logger.Errorf("Billing sweep: pass %d (member %d): %v", p.ID, p.MemberID, err)
		}
	}

	return nil
}

func (s *service) billPass(ctx context.Context, p *Pass, now time.Time) error {
	member, err := s.userRepo.FindByID(ctx, p.MemberID)
	if err != nil {
		return err
	}

	chargeErr := ErrNoPaymentMethod
	if member.HasUsablePaymentMethod(now) {
		chargeErr = s.gateway.Charge(ctx, *member.PaymentMethodRef, p.PriceCents)
	}

	if chargeErr != nil {
		logger.Warnf("Monthly charge failed for pass %d (member %d): %v", p.ID, p.MemberID, chargeErr)
		if err := s.deactivateAndArchive(ctx, p, now, "payment_failed"); err != nil {
			return err
		}
		s.notifyPaymentFailure(ctx, member, p)
		return nil
	}

	next := calendar.AddMonthsEndOfDay(p.NextPaymentAt, 1, s.loc)
	if next.After(p.EndsAt) {
		next = p.EndsAt
	}
	if err := s.repo.AdvanceNextPayment(ctx, p.ID, next); err != nil {
		return err
	}

	s.notifyReceipt(ctx, member, p)
	return nil
}

// DeactivateExpiredPasses flips every active pass whose end is in the past.
// The pass row stays behind as inactive history; an immutable snapshot goes
// to the archive.
func (s *service) DeactivateExpiredPasses(ctx context.Context, now time.Time) error {
	expired, err := s.repo.FindExpired(ctx, now)
	if err != nil {
		return err
	}

	logger.Infof("Expiry sweep: %d passes past their end date", len(expired))

	for i := range expired {
		p := &expired[i]
		if err := s.deactivateAndArchive(ctx, p, now, "expired"); err != nil {
			logger.Errorf("Expiry sweep: pass %d (member %d): %v", p.ID, p.MemberID, err)
			continue
		}

		if member, err := s.userRepo.FindByID(ctx, p.MemberID); err == nil {
			s.notifyExpiry(ctx, member, p)
		}
	}

	return nil
}

func (s *service) deactivateAndArchive(ctx context.Context, p *Pass, now time.Time, reason string) error {
	won, err := s.repo.DeactivateIfActive(ctx, p.ID)
	if err != nil {
		return err
	}
	if !won {
		// Already deactivated by a concurrent path; the winner archived it.
		return nil
	}

	if err := s.repo.SaveHistoricalPass(ctx, p, now); err != nil {
		return err
	}

	metrics.RecordPassDeactivated(reason)
	return nil
}

func (s *service) notifyReceipt(ctx context.Context, member *user.User, p *Pass) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendPaymentReceipt(ctx, member.Email, member.Name, p.Title, p.PriceCents); err != nil {
		logger.Errorf("Failed to queue payment receipt for member %d: %v", member.ID, err)
	}
}

func (s *service) notifyPaymentFailure(ctx context.Context, member *user.User, p *Pass) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendPaymentFailureNotice(ctx, member.Email, member.Name, p.Title); err != nil {
		logger.Errorf("Failed to queue payment failure notice for member %d: %v", member.ID, err)
	}
}

func (s *service) notifyExpiry(ctx context.Context, member *user.User, p *Pass) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendPassExpiryNotice(ctx, member.Email, member.Name, p.Title); err != nil {
		logger.Errorf("Failed to queue expiry notice for member %d: %v", member.ID, err)
	}
}
