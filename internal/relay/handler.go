package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"slack_image_relay/internal/logger"
	"slack_image_relay/internal/storage"

	slackapi "github.com/slack-go/slack"
)

// SlackAPI fetches file metadata and raw content from the Slack Web API.
type SlackAPI interface {
	GetFileData(ctx context.Context, fileID string) (*slackapi.File, error)
	GetImageData(ctx context.Context, url string) ([]byte, error)
}

// DirectoryCleaner is implemented by backends that can expire old files
// in a directory.
type DirectoryCleaner interface {
	CleanupDirectoryFiles(directoryPath string, cutoff time.Duration) error
}

// Options configures a Handler.
type Options struct {
	GalleryPath           string
	AcceptedFormats       []string
	ExcludeThreadedImages bool

	// CleanupMaxFileAge enables a post-save sweep of the target
	// directory when positive and the backend supports it.
	CleanupMaxFileAge time.Duration
}

// Handler drives one file_shared event end to end: metadata fetch,
// validation, content fetch and storage write. It is bound to a single
// app's bot token and storage backend.
type Handler struct {
	client          SlackAPI
	backend         storage.Backend
	validator       *Validator
	galleryPath     string
	excludeThreaded bool
	cleanupMaxAge   time.Duration
}

func NewHandler(client SlackAPI, backend storage.Backend, opts Options) *Handler {
	return &Handler{
		client:          client,
		backend:         backend,
		validator:       NewValidator(opts.AcceptedFormats),
		galleryPath:     opts.GalleryPath,
		excludeThreaded: opts.ExcludeThreadedImages,
		cleanupMaxAge:   opts.CleanupMaxFileAge,
	}
}

// Close releases the handler's backend resources. The SFTP variant
// keeps a cached session for the invocation; callers must close the
// handler once the event is done or the connection leaks.
func (h *Handler) Close() error {
	if closer, ok := h.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// HandleEvent processes one event_callback payload. Domain errors are
// caught here, logged and reported in the Result; they never propagate
// to the transport layer.
func (h *Handler) HandleEvent(ctx context.Context, ev *IncomingEvent) Result {
	if ev.Event == nil || ev.Event.Type != EventFileShared {
		logger.Warn.Printf("Unsupported nested event type: %+v", ev.Event)
		return Result{Status: StatusFailed, Message: ErrUnexpectedEventType.Error()}
	}

	skipped, err := h.handleNewFileEvent(ctx, ev.Event)
	if err != nil {
		logger.Warn.Printf("File event %s not relayed: %v", ev.Event.FileID, err)
		return Result{Status: StatusFailed, Message: err.Error()}
	}
	if skipped {
		return Result{Status: StatusSuccess, Message: ThreadedSkipMessage}
	}
	return Result{Status: StatusSuccess, Message: EventHandledMessage}
}

// handleNewFileEvent runs the fetch-validate-fetch-write chain. The bool
// result reports a silent skip (threaded share with exclusion enabled).
func (h *Handler) handleNewFileEvent(ctx context.Context, ev *InnerEvent) (bool, error) {
	file, err := h.getFileData(ctx, ev.FileID)
	if err != nil {
		return false, err
	}

	decision, err := h.validator.Validate(file, ev.ChannelID, h.excludeThreaded)
	if err != nil {
		return false, err
	}
	if decision.Skip {
		logger.Debug.Printf("File %s shared in a thread, skipping", ev.FileID)
		return true, nil
	}

	image, err := h.client.GetImageData(ctx, decision.ContentURL)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}

	directory := h.targetDirectory(decision.ChannelName)
	return false, h.saveImage(ctx, image, directory, file.Name)
}

func (h *Handler) getFileData(ctx context.Context, fileID string) (*slackapi.File, error) {
	file, err := h.client.GetFileData(ctx, fileID)
	if err != nil {
		// An ok:false Slack response means the API answered without file
		// data; anything else is a transport-level failure.
		var apiErr slackapi.SlackErrorResponse
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	return file, nil
}

// targetDirectory composes the storage directory for a channel. When no
// gallery base is configured the channel name alone is the directory.
func (h *Handler) targetDirectory(channelName string) string {
	if h.galleryPath == "" {
		return channelName
	}
	return h.galleryPath + "/" + channelName
}

func (h *Handler) saveImage(ctx context.Context, image []byte, directory, fileName string) error {
	// Existence check and write are not transactional: two concurrent
	// invocations can both observe absent and the second write wins.
	exists, err := h.backend.IsFileInDirectory(ctx, directory, fileName)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s/%s", ErrFileAlreadyExists, directory, fileName)
	}

	if err := h.backend.SaveFile(ctx, image, directory+"/"+fileName); err != nil {
		return err
	}

	logger.Info.Printf("Saved %s/%s (%d bytes)", directory, fileName, len(image))
	h.sweepDirectory(directory)
	return nil
}

// sweepDirectory expires old files in the directory just written to.
// Sweep failures are logged only; the relay itself already succeeded.
func (h *Handler) sweepDirectory(directory string) {
	if h.cleanupMaxAge <= 0 {
		return
	}
	cleaner, ok := h.backend.(DirectoryCleaner)
	if !ok {
		return
	}
	if err := cleaner.CleanupDirectoryFiles(directory, h.cleanupMaxAge); err != nil {
		logger.Warn.Printf("Failed to clean up directory %s: %v", directory, err)
	}
}
