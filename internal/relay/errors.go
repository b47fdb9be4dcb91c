package relay

import "errors"

// Error kinds surfaced while handling a file event. All of them are
// recoverable: the handler logs them and reports the outcome in the
// response body instead of letting them escape to the transport layer.
var (
	ErrUnexpectedEventType = errors.New("the event type cannot be handled")
	ErrRetrieval           = errors.New("there was an error retrieving the file from Slack API")
	ErrFileFormat          = errors.New("cannot accept file format")
	ErrWrongChannel        = errors.New("file was not found in expected channels")
	ErrFileAlreadyExists   = errors.New("file already exists at the specified directory")
	ErrAPIRequest          = errors.New("slack API request failed")
)
