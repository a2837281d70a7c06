package line

// SignatureHeader carries the webhook body signature.
const SignatureHeader = "X-Line-Signature"

// WebhookPayload is the body of an inbound webhook call.
type WebhookPayload struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one webhook event. Only message events are acted on.
type Event struct {
	Type       string   `json:"type"`
	ReplyToken string   `json:"replyToken"`
	Source     Source   `json:"source"`
	Message    *Message `json:"message,omitempty"`
}

type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

const (
	EventTypeMessage = "message"
	MessageTypeText  = "text"
)

// UserID returns the sender, or "unknown" for anonymous sources.
func (e Event) UserID() string {
	if e.Source.UserID == "" {
		return "unknown"
	}
	return e.Source.UserID
}
