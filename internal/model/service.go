package model

import (
	"time"
)

// Service is a bookable clinic service. EstimatedMinutes drives how many
// consecutive blocks a booking occupies.
type Service struct {
	ID               int64     `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Description      *string   `db:"description" json:"description,omitempty"`
	Category         *string   `db:"category" json:"category,omitempty"`
	Price            float64   `db:"price" json:"price"`
	EstimatedMinutes int       `db:"estimated_minutes" json:"estimated_minutes"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// BlocksNeeded is the number of 30-minute blocks the service occupies,
// never less than one.
func (s *Service) BlocksNeeded() int {
	blocks := (s.EstimatedMinutes + BlockMinutes - 1) / BlockMinutes
	if blocks < 1 {
		blocks = 1
	}
	return blocks
}
