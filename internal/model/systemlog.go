package model

import (
	"encoding/json"
	"time"
)

// SystemLog is one audit trail row. The audit sink is write-only from
// the booking core's point of view.
type SystemLog struct {
	ID        int64           `db:"id" json:"id"`
	UserID    *int64          `db:"user_id" json:"user_id,omitempty"`
	Category  string          `db:"category" json:"category"`
	Action    string          `db:"action" json:"action"`
	Message   string          `db:"message" json:"message"`
	Context   json.RawMessage `db:"context" json:"context,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
