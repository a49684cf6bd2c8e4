package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/smilecare/booking-api/internal/model"
)

const serviceColumns = `
	id, name, description, category, price, estimated_minutes, is_active,
	created_at, updated_at`

func (r *serviceRepository) Get(ctx context.Context, id int64) (*model.Service, error) {
	query := `SELECT ` + serviceColumns + `
		FROM services
		WHERE id = $1`

	var service model.Service
	err := r.db.GetContext(ctx, &service, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *serviceRepository) List(ctx context.Context) ([]*model.Service, error) {
	query := `SELECT ` + serviceColumns + `
		FROM services
		WHERE is_active = true
		ORDER BY name ASC`

	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
