package models

import "time"

// Follow lifecycle of the LINE relationship.
const (
	FollowStatusFollowing  = "following"
	FollowStatusUnfollowed = "unfollowed"
	FollowStatusBlocked    = "blocked"
)

// Funnel position.
const (
	PaymentStatusUnpaid    = "unpaid"
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
)

type LineUser struct {
	ID                int        `json:"id"`
	LineUserID        string     `json:"line_user_id"`
	DisplayName       string     `json:"display_name"`
	PictureURL        string     `json:"picture_url"`
	StatusMessage     string     `json:"status_message"`
	FollowStatus      string     `json:"follow_status"`
	PaymentStatus     string     `json:"payment_status"`
	ConversationState string     `json:"conversation_state"` // empty = no active funnel
	InterestedAt      *time.Time `json:"interested_at"`
	PaymentLast5      string     `json:"payment_last5"`
	LastInteractionAt time.Time  `json:"last_interaction_at"`
	Notes             string     `json:"notes"`
	Tags              string     `json:"tags"`
	CreatedAt         time.Time  `json:"created_at"`
}

// RemarketingEligible reports whether the user is a valid follow-up candidate:
// expressed interest, still following, and not yet confirmed as paid.
func (u LineUser) RemarketingEligible() bool {
	if u.InterestedAt == nil {
		return false
	}
	if u.FollowStatus != FollowStatusFollowing {
		return false
	}
	return u.PaymentStatus == PaymentStatusUnpaid || u.PaymentStatus == PaymentStatusPending
}
