package models

import "time"

// BotSettings holds the admin-editable texts the conversation engine sends.
// Stored as a single row; defaults apply until the admin saves the first edit.
type BotSettings struct {
	EventName      string    `json:"event_name"`
	Price          string    `json:"price"`
	BankInfo       string    `json:"bank_info"`
	WelcomeMessage string    `json:"welcome_message"`
	UpdatedAt      time.Time `json:"updated_at"`
}
