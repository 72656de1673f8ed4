package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"salonBack/internal/fsm"
	"salonBack/internal/models"
)

type LineUserRepository struct {
	DB *sql.DB
}

const lineUserColumns = `id, line_user_id, display_name, picture_url, status_message,
	follow_status, payment_status, COALESCE(conversation_state, ''), interested_at,
	payment_last5, last_interaction_at, notes, tags, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLineUser(row rowScanner) (models.LineUser, error) {
	var (
		u            models.LineUser
		interestedAt sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.LineUserID, &u.DisplayName, &u.PictureURL, &u.StatusMessage,
		&u.FollowStatus, &u.PaymentStatus, &u.ConversationState, &interestedAt,
		&u.PaymentLast5, &u.LastInteractionAt, &u.Notes, &u.Tags, &u.CreatedAt,
	)
	if err != nil {
		return models.LineUser{}, err
	}
	if interestedAt.Valid {
		t := interestedAt.Time
		u.InterestedAt = &t
	}
	return u, nil
}

func (r *LineUserRepository) GetByLineID(ctx context.Context, lineUserID string) (models.LineUser, error) {
	query := `SELECT ` + lineUserColumns + ` FROM line_users WHERE line_user_id = $1`
	u, err := scanLineUser(r.DB.QueryRowContext(ctx, query, lineUserID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.LineUser{}, models.ErrUserNotFound
	}
	return u, err
}

func (r *LineUserRepository) GetByID(ctx context.Context, id int) (models.LineUser, error) {
	query := `SELECT ` + lineUserColumns + ` FROM line_users WHERE id = $1`
	u, err := scanLineUser(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.LineUser{}, models.ErrUserNotFound
	}
	return u, err
}

func (r *LineUserRepository) Create(ctx context.Context, u models.LineUser) (models.LineUser, error) {
	query := `
		INSERT INTO line_users (line_user_id, display_name, picture_url, status_message,
			follow_status, payment_status, last_interaction_at, notes, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '', '')
		RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query,
		u.LineUserID, u.DisplayName, u.PictureURL, u.StatusMessage,
		u.FollowStatus, u.PaymentStatus, u.LastInteractionAt,
	).Scan(&u.ID, &u.CreatedAt)
	return u, err
}

func (r *LineUserRepository) TouchInteraction(ctx context.Context, id int, at time.Time) error {
	query := `UPDATE line_users SET last_interaction_at = $1 WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, at, id)
	return err
}

func (r *LineUserRepository) UpdateFollowStatus(ctx context.Context, id int, status string) error {
	query := `UPDATE line_users SET follow_status = $1 WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, status, id)
	return err
}

// UpdateProfile refreshes the display attributes from a platform snapshot.
func (r *LineUserRepository) UpdateProfile(ctx context.Context, id int, displayName, pictureURL, statusMessage string) error {
	query := `UPDATE line_users SET display_name = $1, picture_url = $2, status_message = $3 WHERE id = $4`
	_, err := r.DB.ExecContext(ctx, query, displayName, pictureURL, statusMessage, id)
	return err
}

// SetConversationState moves the funnel state with an optimistic check on the
// previously read state, so two concurrent webhook deliveries for the same
// user cannot interleave transitions.
func (r *LineUserRepository) SetConversationState(ctx context.Context, id int, fromState, toState string) error {
	if !fsm.CanTransition(fromState, toState) {
		return models.ErrStateConflict
	}
	query := `
		UPDATE line_users
		SET conversation_state = NULLIF($1, '')
		WHERE id = $2 AND conversation_state IS NOT DISTINCT FROM NULLIF($3, '')`
	res, err := r.DB.ExecContext(ctx, query, toState, id, fromState)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrStateConflict
	}
	return nil
}

// MarkInterested stamps interested_at exactly once; repeated registrations
// keep the first timestamp so the remarketing clock never resets.
func (r *LineUserRepository) MarkInterested(ctx context.Context, id int, at time.Time) error {
	query := `UPDATE line_users SET interested_at = COALESCE(interested_at, $1) WHERE id = $2`
	_, err := r.DB.ExecContext(ctx, query, at, id)
	return err
}

// RecordPaymentPending stores the remittance last-5 digits and closes the
// funnel. Conditioned on the awaiting state as the terminal optimistic check.
func (r *LineUserRepository) RecordPaymentPending(ctx context.Context, id int, last5 string) error {
	query := `
		UPDATE line_users
		SET payment_status = $1, payment_last5 = $2, conversation_state = NULL
		WHERE id = $3 AND conversation_state = $4`
	res, err := r.DB.ExecContext(ctx, query, models.PaymentStatusPending, last5, id, fsm.StateAwaitingLast5Digits)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrStateConflict
	}
	return nil
}

func (r *LineUserRepository) ConfirmPayment(ctx context.Context, id int) error {
	query := `UPDATE line_users SET payment_status = $1 WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, models.PaymentStatusConfirmed, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *LineUserRepository) UpdateAdminFields(ctx context.Context, id int, notes, tags string) error {
	query := `UPDATE line_users SET notes = $1, tags = $2 WHERE id = $3`
	res, err := r.DB.ExecContext(ctx, query, notes, tags, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// ListEligible returns the remarketing candidates: interested, still
// following, and not yet confirmed as paid.
func (r *LineUserRepository) ListEligible(ctx context.Context) ([]models.LineUser, error) {
	query := `
		SELECT ` + lineUserColumns + `
		FROM line_users
		WHERE interested_at IS NOT NULL
		  AND payment_status IN ($1, $2)
		  AND follow_status = $3
		ORDER BY interested_at ASC`
	rows, err := r.DB.QueryContext(ctx, query,
		models.PaymentStatusUnpaid, models.PaymentStatusPending, models.FollowStatusFollowing)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.LineUser
	for rows.Next() {
		u, err := scanLineUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *LineUserRepository) List(ctx context.Context) ([]models.LineUser, error) {
	query := `SELECT ` + lineUserColumns + ` FROM line_users ORDER BY last_interaction_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.LineUser
	for rows.Next() {
		u, err := scanLineUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
