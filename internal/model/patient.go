package model

import (
	"time"
)

// Patient is the registry record a user account may be linked to.
// Booking requires the linkage; accounts without one are rejected.
type Patient struct {
	ID            int64     `db:"id" json:"id"`
	UserID        *int64    `db:"user_id" json:"user_id,omitempty"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Email         *string   `db:"email" json:"email,omitempty"`
	ContactNumber *string   `db:"contact_number" json:"contact_number,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
