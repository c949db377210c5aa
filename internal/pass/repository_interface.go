package pass

import (
	"context"
	"time"
)

type Repository interface {
	CreatePass(ctx context.Context, p *Pass) (*Pass, error)
	FindByID(ctx context.Context, id int) (*Pass, error)
	FindActiveByMember(ctx context.Context, memberID int) (*Pass, error)
	FindDueForBilling(ctx context.Context, dayStart, dayEnd time.Time) ([]Pass, error)
	FindExpired(ctx context.Context, now time.Time) ([]Pass, error)
	AdvanceNextPayment(ctx context.Context, passID int, next time.Time) error
	DeactivateIfActive(ctx context.Context, passID int) (bool, error)
	SaveHistoricalPass(ctx context.Context, p *Pass, archivedAt time.Time) error
	ListHistoricalByMember(ctx context.Context, memberID int) ([]HistoricalPass, error)
}
