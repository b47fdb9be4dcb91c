package relay

import (
	"fmt"
	"slices"
	"strings"

	slackapi "github.com/slack-go/slack"
)

// Decision is the validator's accept output: either a silent skip or the
// channel name and content URL to relay.
type Decision struct {
	Skip        bool
	ChannelName string
	ContentURL  string
}

// Validator applies the acceptance policy to fetched file metadata.
type Validator struct {
	acceptedFormats map[string]bool
}

func NewValidator(acceptedFormats []string) *Validator {
	formats := make(map[string]bool, len(acceptedFormats))
	for _, f := range acceptedFormats {
		formats[strings.ToLower(f)] = true
	}
	return &Validator{acceptedFormats: formats}
}

// Validate decides whether file metadata should result in a storage
// write. A Skip decision means the event is dropped without error; any
// returned error is one of the kinds in errors.go.
func (v *Validator) Validate(file *slackapi.File, channelID string, excludeThreaded bool) (Decision, error) {
	if file == nil {
		return Decision{}, ErrRetrieval
	}

	if format := fileFormat(file.Name); !v.acceptedFormats[format] {
		return Decision{}, fmt.Errorf("%w: format is %s", ErrFileFormat, format)
	}

	if !slices.Contains(file.Channels, channelID) {
		return Decision{}, ErrWrongChannel
	}

	shares := file.Shares.Public[channelID]
	if len(shares) == 0 {
		return Decision{}, fmt.Errorf("%w: no share record for channel %s", ErrWrongChannel, channelID)
	}

	// Multi-share disambiguation is unsupported: the first share record
	// always wins.
	share := shares[0]
	if excludeThreaded && share.ThreadTs != "" {
		return Decision{Skip: true}, nil
	}

	return Decision{
		ChannelName: share.ChannelName,
		ContentURL:  contentURL(file),
	}, nil
}

// fileFormat returns the lowercased extension after the last dot. A name
// without a dot yields the whole name, which never matches a configured
// format.
func fileFormat(name string) string {
	return strings.ToLower(name[strings.LastIndex(name, ".")+1:])
}

// contentURL prefers the downsized thumbnail and falls back to the
// full-resolution private URL when no thumbnail was generated.
func contentURL(file *slackapi.File) string {
	if file.Thumb1024 != "" {
		return file.Thumb1024
	}
	return file.URLPrivate
}
