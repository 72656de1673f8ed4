package line

// Message is a LINE message object serialized into reply/push payloads.
type Message interface {
	messageType() string
}

type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (m TextMessage) messageType() string { return m.Type }

// NewText builds a plain text message.
func NewText(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

// MessageAction is a buttons-template action that sends its Text back into
// the chat when tapped. The conversation engine matches on that text.
type MessageAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// NewMessageAction builds a message action.
func NewMessageAction(label, text string) MessageAction {
	return MessageAction{Type: "message", Label: label, Text: text}
}

type ButtonsTemplate struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Actions []MessageAction `json:"actions"`
}

type TemplateMessage struct {
	Type     string          `json:"type"`
	AltText  string          `json:"altText"`
	Template ButtonsTemplate `json:"template"`
}

func (m TemplateMessage) messageType() string { return m.Type }

// NewButtons builds a buttons-template message.
func NewButtons(altText, text string, actions ...MessageAction) TemplateMessage {
	return TemplateMessage{
		Type:    "template",
		AltText: altText,
		Template: ButtonsTemplate{
			Type:    "buttons",
			Text:    text,
			Actions: actions,
		},
	}
}
