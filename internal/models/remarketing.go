package models

import "time"

type RemarketingRule struct {
	ID                 int       `json:"id"`
	HoursAfterInterest int       `json:"hours_after_interest"`
	MessageContent     string    `json:"message_content"`
	IsActive           bool      `json:"is_active"`
	SentCount          int       `json:"sent_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// SendLogEntry is one row of the append-only dedup ledger. At most one entry
// ever exists per (line_user_id, rule_id) pair; the table's unique constraint
// is the authoritative guard.
type SendLogEntry struct {
	ID         int       `json:"id"`
	LineUserID int       `json:"line_user_id"`
	RuleID     int       `json:"rule_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// SendKey identifies a (user, rule) pair in the in-memory dedup set.
type SendKey struct {
	LineUserID int
	RuleID     int
}

type RemarketingFailure struct {
	LineUserID int    `json:"line_user_id"`
	RuleID     int    `json:"rule_id"`
	Error      string `json:"error"`
}

type RemarketingRunResult struct {
	EligibleUsers  int                  `json:"eligibleUsers"`
	ActiveMessages int                  `json:"activeMessages"`
	SentCount      int                  `json:"sentCount"`
	Failures       []RemarketingFailure `json:"results,omitempty"`
}
