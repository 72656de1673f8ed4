package repositories

import (
	"context"
	"database/sql"
	"time"

	"salonBack/internal/models"
)

// SendLogRepository owns the append-only remarketing dedup ledger. Nothing
// else writes to it.
type SendLogRepository struct {
	DB *sql.DB
}

// ExistingPairs loads every (user, rule) key already logged, for O(1) dedup
// checks during a scheduler run.
func (r *SendLogRepository) ExistingPairs(ctx context.Context) (map[models.SendKey]struct{}, error) {
	query := `SELECT line_user_id, rule_id FROM remarketing_send_log`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pairs := make(map[models.SendKey]struct{})
	for rows.Next() {
		var key models.SendKey
		if err := rows.Scan(&key.LineUserID, &key.RuleID); err != nil {
			return nil, err
		}
		pairs[key] = struct{}{}
	}
	return pairs, rows.Err()
}

// Record inserts a ledger entry for the pair. The unique constraint on
// (line_user_id, rule_id) rejects duplicates atomically; inserted=false
// means another run already claimed the pair.
func (r *SendLogRepository) Record(ctx context.Context, userID, ruleID int, at time.Time) (bool, error) {
	query := `
		INSERT INTO remarketing_send_log (line_user_id, rule_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (line_user_id, rule_id) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query, userID, ruleID, at)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Release removes a just-claimed entry after a failed send so the next run
// retries the pair.
func (r *SendLogRepository) Release(ctx context.Context, userID, ruleID int) error {
	query := `DELETE FROM remarketing_send_log WHERE line_user_id = $1 AND rule_id = $2`
	_, err := r.DB.ExecContext(ctx, query, userID, ruleID)
	return err
}
