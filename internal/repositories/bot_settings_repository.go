package repositories

import (
	"context"
	"database/sql"
	"errors"

	"salonBack/internal/models"
)

type BotSettingsRepository struct {
	DB *sql.DB
}

// Defaults used until the admin saves the first edit.
var defaultBotSettings = models.BotSettings{
	EventName:      "美甲美睫課程報名",
	Price:          "NT$ 3,600",
	BankInfo:       "台灣銀行 004\n帳號 123-456-789012\n戶名 美麗工作室",
	WelcomeMessage: "歡迎加入！輸入「報名」即可開始報名流程。",
}

func (r *BotSettingsRepository) Get(ctx context.Context) (models.BotSettings, error) {
	query := `SELECT event_name, price, bank_info, welcome_message, updated_at FROM bot_settings WHERE id = 1`
	var s models.BotSettings
	err := r.DB.QueryRowContext(ctx, query).Scan(
		&s.EventName, &s.Price, &s.BankInfo, &s.WelcomeMessage, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultBotSettings, nil
	}
	return s, err
}

func (r *BotSettingsRepository) Save(ctx context.Context, s models.BotSettings) error {
	query := `
		INSERT INTO bot_settings (id, event_name, price, bank_info, welcome_message, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			event_name = EXCLUDED.event_name,
			price = EXCLUDED.price,
			bank_info = EXCLUDED.bank_info,
			welcome_message = EXCLUDED.welcome_message,
			updated_at = NOW()`
	_, err := r.DB.ExecContext(ctx, query, s.EventName, s.Price, s.BankInfo, s.WelcomeMessage)
	return err
}
