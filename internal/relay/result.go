package relay

// Result statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Canonical response messages.
const (
	SuccessfulChallengeMessage = "A valid challenge received."
	FailedChallengeMessage     = "Did not receive a valid challenge."
	EventHandledMessage        = "File event handled successfully."
	ThreadedSkipMessage        = "Threaded file skipped; nothing saved."
	NoEventTypeMessage         = "Received no event type."
	TimestampExpiredMessage    = "The request timestamp has expired."
	AppNotRegisteredMessage    = "Slack app not registered in credentials."
)

// Result is the structured outcome of one webhook invocation. It is
// always returned in the response body; the transport status stays 200.
type Result struct {
	Status    string `json:"status,omitempty"`
	Message   string `json:"message,omitempty"`
	Challenge string `json:"challenge,omitempty"`
}

// RespondToVerification answers the Slack Events API url verification
// handshake. Pure: no side effects, no I/O.
func RespondToVerification(ev *IncomingEvent) Result {
	if ev.Token != "" && ev.Challenge != "" {
		return Result{
			Status:    StatusSuccess,
			Challenge: ev.Challenge,
			Message:   SuccessfulChallengeMessage,
		}
	}
	return Result{
		Status:  StatusFailed,
		Message: FailedChallengeMessage,
	}
}
