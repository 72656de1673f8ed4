package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"salonBack/internal/models"
)

func TestSendLogRecordOutcomes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &SendLogRepository{DB: db}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// first insert claims the pair
	mock.ExpectExec("INSERT INTO remarketing_send_log").
		WithArgs(7, 3, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	inserted, err := repo.Record(context.Background(), 7, 3, now)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !inserted {
		t.Fatal("expected first record to insert")
	}

	// conflicting insert is swallowed by ON CONFLICT DO NOTHING
	mock.ExpectExec("INSERT INTO remarketing_send_log").
		WithArgs(7, 3, now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	inserted, err = repo.Record(context.Background(), 7, 3, now)
	if err != nil {
		t.Fatalf("Record duplicate: %v", err)
	}
	if inserted {
		t.Fatal("expected duplicate record to report not inserted")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSetConversationStateConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &LineUserRepository{DB: db}

	// another delivery already moved the state: zero rows updated
	mock.ExpectExec("UPDATE line_users").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.SetConversationState(context.Background(), 1, "registration_started", "awaiting_payment")
	if !errors.Is(err, models.ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}

	// invalid transition is rejected before touching the store
	err = repo.SetConversationState(context.Background(), 1, "", "awaiting_last_5_digits")
	if !errors.Is(err, models.ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict for invalid transition, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
