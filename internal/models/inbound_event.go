package models

import "time"

// InboundEvent is what the admin dashboard sees on the live feed: one
// normalized inbound LINE event per webhook delivery.
type InboundEvent struct {
	LineUserID  string    `json:"line_user_id"`
	DisplayName string    `json:"display_name"`
	EventType   string    `json:"event_type"`
	Text        string    `json:"text,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
}
