package user

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash string, kind Kind) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SavePaymentMethod(ctx context.Context, userID int, ref string, expiresAt time.Time) error
}
