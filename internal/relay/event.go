package relay

// Payload types recognized on the webhook.
const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"
)

// EventFileShared is the only nested event type the relay handles.
const EventFileShared = "file_shared"

// IncomingEvent is the parsed webhook payload.
type IncomingEvent struct {
	Type      string      `json:"type"`
	Token     string      `json:"token"`
	Challenge string      `json:"challenge"`
	APIAppID  string      `json:"api_app_id"`
	Event     *InnerEvent `json:"event"`
}

// InnerEvent carries the user action inside an event_callback payload.
type InnerEvent struct {
	Type      string `json:"type"`
	FileID    string `json:"file_id"`
	ChannelID string `json:"channel_id"`
}
