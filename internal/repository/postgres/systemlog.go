package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/smilecare/booking-api/internal/model"
)

func (r *systemLogRepository) Create(ctx context.Context, log *model.SystemLog) error {
	return insertSystemLog(ctx, r.db, log)
}

func insertSystemLog(ctx context.Context, e sqlx.ExtContext, log *model.SystemLog) error {
	query := `
		INSERT INTO system_logs (user_id, category, action, message, context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	log.CreatedAt = time.Now()

	err := e.QueryRowxContext(ctx, query,
		log.UserID,
		log.Category,
		log.Action,
		log.Message,
		log.Context,
		log.CreatedAt,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to create system log: %w", err)
	}
	return nil
}
