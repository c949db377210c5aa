package occupancy

import (
	"context"
	"errors"
	"time"

	"pbgym/internal/logger"
	"pbgym/internal/metrics"
	"pbgym/internal/user"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrWorkerNotScannable = errors.New("staff badges are not tracked")
	ErrNoActivePass       = errors.New("member has no active pass")
)

// PassChecker answers whether a member's pass currently admits them.
// Satisfied by the pass service.
type PassChecker interface {
	HasActivePass(ctx context.Context, memberID int) (bool, error)
}

type Service interface {
	// RegisterAction turns one badge scan into an entry or an exit. There is
	// no separate in/out intent: the toggle is a pure function of current
	// presence, serialized per user.
	RegisterAction(ctx context.Context, userID int) (*ScanResult, error)

	// CurrentCount never blocks and performs no I/O.
	CurrentCount() int

	// Restore rebuilds the presence set from open entries. Must run before
	// the first scan after a restart.
	Restore(ctx context.Context) error

	ListVisits(ctx context.Context, userID, limit int) ([]GymEntry, error)
}

type service struct {
	repo     Repository
	userRepo user.Repository
	passes   PassChecker
	tracker  *Tracker
}

func NewService(repo Repository, userRepo user.Repository, passes PassChecker) Service {
	return &service{
		repo:     repo,
		userRepo: userRepo,
		passes:   passes,
		tracker:  NewTracker(),
	}
}

func (s *service) RegisterAction(ctx context.Context, userID int) (*ScanResult, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		metrics.RecordScan("rejected")
		return nil, ErrUserNotFound
	}

	if !u.Kind.Scannable() {
		metrics.RecordScan("rejected")
		return nil, ErrWorkerNotScannable
	}

	if u.Kind.RequiresActivePass() {
		has, err := s.passes.HasActivePass(ctx, userID)
		if err != nil {
			metrics.RecordScan("rejected")
			return nil, err
		}
		if !has {
			metrics.RecordScan("rejected")
			return nil, ErrNoActivePass
		}
	}

	now := time.Now()
	var entry *GymEntry

	entered, err := s.tracker.Toggle(userID, func(present bool) error {
		if present {
			open, err := s.repo.FindOpenEntryByUser(ctx, userID)
			if err != nil {
				return err
			}
			if err := s.repo.CloseEntry(ctx, open.ID, now); err != nil {
				return err
			}
			exitedAt := now
			open.ExitedAt = &exitedAt
			entry = open
			return nil
		}

		created, err := s.repo.CreateEntry(ctx, userID, now)
		if err != nil {
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		metrics.RecordScan("rejected")
		return nil, err
	}

	metrics.SetOccupancy(s.tracker.Count())

	if entered {
		metrics.RecordScan(ActionEntry)
		return &ScanResult{Action: ActionEntry, Entry: entry}, nil
	}

	metrics.RecordScan(ActionExit)
	return &ScanResult{Action: ActionExit, Entry: entry}, nil
}

func (s *service) CurrentCount() int {
	return s.tracker.Count()
}

func (s *service) Restore(ctx context.Context) error {
	open, err := s.repo.FindOpenEntries(ctx)
	if err != nil {
		return err
	}

	userIDs := make([]int, 0, len(open))
	for _, e := range open {
		userIDs = append(userIDs, e.UserID)
	}

	s.tracker.Restore(userIDs)
	metrics.SetOccupancy(s.tracker.Count())

	logger.Infof("Occupancy restored: %d open entries, %d people inside", len(open), s.tracker.Count())
	return nil
}

func (s *service) ListVisits(ctx context.Context, userID, limit int) ([]GymEntry, error) {
	return s.repo.ListEntriesByUser(ctx, userID, limit)
}
