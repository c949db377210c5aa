package clock

import (
	"context"
	"fmt"
	"time"

	"pbgym/internal/logger"

	"github.com/robfig/cron/v3"
)

// Sweeper is the pair of daily batch entry points the clock drives.
// Satisfied by the pass service; the sweeps themselves know nothing about
// scheduling and take their "now" as an argument.
type Sweeper interface {
	ChargeForActivePasses(ctx context.Context, now time.Time) error
	DeactivateExpiredPasses(ctx context.Context, now time.Time) error
}

// Scheduler fires the billing sweep at a configured hour and the expiry
// sweep at local midnight, both evaluated in one process-wide timezone so
// day boundaries survive restarts.
type Scheduler struct {
	cron        *cron.Cron
	sweeper     Sweeper
	loc         *time.Location
	billingHour int
}

func New(sweeper Sweeper, loc *time.Location, billingHour int) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(loc)),
		sweeper:     sweeper,
		loc:         loc,
		billingHour: billingHour,
	}
}

func (s *Scheduler) Start() error {
	if s.billingHour == 0 {
		// Both sweeps share the midnight slot; billing must run first, so
		// they go into one job rather than racing as two cron entries.
		if _, err := s.cron.AddFunc("0 0 * * *", func() {
			s.runBilling()
			s.runExpiry()
		}); err != nil {
			return err
		}
	} else {
		if _, err := s.cron.AddFunc(fmt.Sprintf("0 %d * * *", s.billingHour), s.runBilling); err != nil {
			return err
		}
		if _, err := s.cron.AddFunc("0 0 * * *", s.runExpiry); err != nil {
			return err
		}
	}

	s.cron.Start()
	logger.Infof("Clock started: billing daily at %02d:00, expiry daily at 00:00 (%s)", s.billingHour, s.loc)
	return nil
}

// Stop waits for any sweep in flight to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Clock stopped")
}

func (s *Scheduler) runBilling() {
	now := time.Now().In(s.loc)
	logger.Infof("Billing sweep starting at %s", now.Format(time.RFC3339))

	if err := s.sweeper.ChargeForActivePasses(context.Background(), now); err != nil {
		// Infrastructure failure: nothing to do until tomorrow's run.
		logger.Errorf("Billing sweep failed: %v", err)
	}
}

func (s *Scheduler) runExpiry() {
	now := time.Now().In(s.loc)
	logger.Infof("Expiry sweep starting at %s", now.Format(time.RFC3339))

	if err := s.sweeper.DeactivateExpiredPasses(context.Background(), now); err != nil {
		logger.Errorf("Expiry sweep failed: %v", err)
	}
}
