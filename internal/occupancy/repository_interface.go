package occupancy

import (
	"context"
	"time"
)

type Repository interface {
	CreateEntry(ctx context.Context, userID int, enteredAt time.Time) (*GymEntry, error)
	CloseEntry(ctx context.Context, entryID int, exitedAt time.Time) error
	FindOpenEntryByUser(ctx context.Context, userID int) (*GymEntry, error)
	FindOpenEntries(ctx context.Context) ([]GymEntry, error)
	ListEntriesByUser(ctx context.Context, userID, limit int) ([]GymEntry, error)
}
