package line

// Webhook event types delivered by the LINE platform.
const (
	EventTypeFollow   = "follow"
	EventTypeUnfollow = "unfollow"
	EventTypeMessage  = "message"
	EventTypePostback = "postback"
)

const MessageTypeText = "text"

// WebhookRequest is the JSON body of an inbound webhook delivery.
type WebhookRequest struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

type Event struct {
	Type       string       `json:"type"`
	Timestamp  int64        `json:"timestamp"`
	ReplyToken string       `json:"replyToken,omitempty"`
	Source     EventSource  `json:"source"`
	Message    EventMessage `json:"message,omitempty"`
	Postback   Postback     `json:"postback,omitempty"`
}

type EventSource struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

type Postback struct {
	Data string `json:"data"`
}
