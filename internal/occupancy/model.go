package occupancy

import "time"

// GymEntry is one visit: an entry timestamp and, once the visitor leaves,
// an exit timestamp. Rows are never deleted; the table is the visit log.
type GymEntry struct {
	ID        int        `db:"id" json:"id"`
	UserID    int        `db:"user_id" json:"user_id"`
	EnteredAt time.Time  `db:"entered_at" json:"entered_at"`
	ExitedAt  *time.Time `db:"exited_at" json:"exited_at,omitempty"`
}

const (
	ActionEntry = "entry"
	ActionExit  = "exit"
)

// ScanResult tells the scanning station which way the toggle went.
type ScanResult struct {
	Action string    `json:"action" example:"entry"`
	Entry  *GymEntry `json:"entry"`
}

type ScanRequest struct {
	UserID int `json:"user_id" binding:"required"`
}
