package user

import "time"

// Kind is the closed set of user kinds. Access rules are carried as value
// checks on the kind, not as runtime type inspection.
type Kind string

const (
	KindMember  Kind = "member"
	KindTrainer Kind = "trainer"
	KindWorker  Kind = "worker"
)

// Scannable reports whether entry scans are accepted for this kind.
// Staff badges open the staff door, they never hit the occupancy tracker.
func (k Kind) Scannable() bool {
	return k == KindMember || k == KindTrainer
}

// RequiresActivePass reports whether a scan must be backed by an active
// membership pass. Trainers enter on their contract, not a pass.
func (k Kind) RequiresActivePass() bool {
	return k == KindMember
}

func (k Kind) Valid() bool {
	switch k {
	case KindMember, KindTrainer, KindWorker:
		return true
	}
	return false
}

type User struct {
	ID           int    `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Kind         Kind   `db:"kind" json:"kind"`

	// Saved payment method, charged by the pass lifecycle sweeps.
	PaymentMethodRef    *string    `db:"payment_method_ref" json:"payment_method_ref,omitempty"`
	PaymentMethodExpiry *time.Time `db:"payment_method_expiry" json:"payment_method_expiry,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasUsablePaymentMethod reports whether a non-expired payment method is on
// file at the given instant.
func (u *User) HasUsablePaymentMethod(now time.Time) bool {
	if u.PaymentMethodRef == nil || *u.PaymentMethodRef == "" {
		return false
	}
	if u.PaymentMethodExpiry != nil && u.PaymentMethodExpiry.Before(now) {
		return false
	}
	return true
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type SavePaymentMethodRequest struct {
	PaymentMethodRef string `json:"payment_method_ref" binding:"required"`
	ExpiresAt        string `json:"expires_at" binding:"required"`
}
