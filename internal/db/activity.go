package db

import (
	"context"
	"fmt"

	"github.com/Spok95/student-contracts-backend/internal/models"
)

// AppendActivity — журнал только пополняется; правок и удалений нет.
func AppendActivity(ctx context.Context, q Querier, entry models.ActivityLog) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO activity_log (actor_id, action, contract_id, target_kind, target_id, message)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ActorID, entry.Action, entry.ContractID, entry.TargetKind, entry.TargetID, entry.Message)
	if err != nil {
		return fmt.Errorf("запись в журнал: %w", translate(err))
	}
	return nil
}

func ListActivityByContract(ctx context.Context, q Querier, contractID int64) ([]models.ActivityLog, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, actor_id, action, contract_id, target_kind, target_id, message, created_at
		FROM activity_log WHERE contract_id = $1 ORDER BY created_at, id
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ActivityLog
	for rows.Next() {
		var e models.ActivityLog
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.ContractID, &e.TargetKind, &e.TargetID, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
