package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"salonBack/internal/models"
)

type RemarketingRuleRepository struct {
	DB *sql.DB
}

// uniqueViolation is the Postgres error code raised by the partial unique
// index on active rules' hour offsets.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *RemarketingRuleRepository) Create(ctx context.Context, rule models.RemarketingRule) (models.RemarketingRule, error) {
	query := `
		INSERT INTO remarketing_rules (hours_after_interest, message_content, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		rule.HoursAfterInterest, rule.MessageContent, rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if isUniqueViolation(err) {
		return models.RemarketingRule{}, models.ErrDuplicateRuleOffset
	}
	return rule, err
}

func (r *RemarketingRuleRepository) GetByID(ctx context.Context, id int) (models.RemarketingRule, error) {
	query := `
		SELECT r.id, r.hours_after_interest, r.message_content, r.is_active,
		       (SELECT COUNT(*) FROM remarketing_send_log l WHERE l.rule_id = r.id),
		       r.created_at, r.updated_at
		FROM remarketing_rules r
		WHERE r.id = $1`
	var rule models.RemarketingRule
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&rule.ID, &rule.HoursAfterInterest, &rule.MessageContent, &rule.IsActive,
		&rule.SentCount, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RemarketingRule{}, models.ErrRuleNotFound
	}
	return rule, err
}

func (r *RemarketingRuleRepository) Update(ctx context.Context, rule models.RemarketingRule) error {
	query := `
		UPDATE remarketing_rules
		SET hours_after_interest = $1, message_content = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4`
	res, err := r.DB.ExecContext(ctx, query,
		rule.HoursAfterInterest, rule.MessageContent, rule.IsActive, rule.ID)
	if isUniqueViolation(err) {
		return models.ErrDuplicateRuleOffset
	}
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrRuleNotFound
	}
	return nil
}

// Delete removes a rule. Send-log entries referencing it are kept on purpose:
// the ledger records what was actually sent.
func (r *RemarketingRuleRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM remarketing_rules WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrRuleNotFound
	}
	return nil
}

func (r *RemarketingRuleRepository) List(ctx context.Context) ([]models.RemarketingRule, error) {
	query := `
		SELECT r.id, r.hours_after_interest, r.message_content, r.is_active,
		       COUNT(l.id), r.created_at, r.updated_at
		FROM remarketing_rules r
		LEFT JOIN remarketing_send_log l ON l.rule_id = r.id
		GROUP BY r.id
		ORDER BY r.hours_after_interest ASC`
	return r.queryRules(ctx, query)
}

// ListActive returns enabled rules ordered by hour offset ascending.
func (r *RemarketingRuleRepository) ListActive(ctx context.Context) ([]models.RemarketingRule, error) {
	query := `
		SELECT r.id, r.hours_after_interest, r.message_content, r.is_active,
		       COUNT(l.id), r.created_at, r.updated_at
		FROM remarketing_rules r
		LEFT JOIN remarketing_send_log l ON l.rule_id = r.id
		WHERE r.is_active = TRUE
		GROUP BY r.id
		ORDER BY r.hours_after_interest ASC`
	return r.queryRules(ctx, query)
}

func (r *RemarketingRuleRepository) queryRules(ctx context.Context, query string) ([]models.RemarketingRule, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.RemarketingRule
	for rows.Next() {
		var rule models.RemarketingRule
		if err := rows.Scan(
			&rule.ID, &rule.HoursAfterInterest, &rule.MessageContent, &rule.IsActive,
			&rule.SentCount, &rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
