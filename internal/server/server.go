// Package server exposes the webhook endpoint shared by every entry
// point. The transport always answers HTTP 200; success or failure is
// encoded in the JSON body only.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"slack_image_relay/internal/config"
	"slack_image_relay/internal/credentials"
	"slack_image_relay/internal/database"
	"slack_image_relay/internal/logger"
	"slack_image_relay/internal/relay"
	slackclient "slack_image_relay/internal/slack"
	"slack_image_relay/internal/storage"
)

const (
	timestampHeader = "x-slack-request-timestamp"
	maxTimestampAge = 300 * time.Second

	malformedPayloadMessage = "Could not parse the event payload."
)

// Response mirrors the cloud function response envelope: transport
// status plus the structured body.
type Response struct {
	StatusCode int          `json:"statusCode"`
	Body       relay.Result `json:"body"`
}

// HandlerFactory builds a relay handler bound to one app's credentials.
type HandlerFactory func(app *credentials.AppCredentials) (*relay.Handler, error)

// Endpoint dispatches parsed webhook payloads by type.
type Endpoint struct {
	creds   *credentials.Store
	db      *database.DB
	factory HandlerFactory
	now     func() time.Time
}

// New wires the endpoint with the default factory: the configured
// storage backend plus a Slack client on the app's bot token. db may be
// nil to disable relay history.
func New(cfg *config.Config, creds *credentials.Store, db *database.DB) *Endpoint {
	return &Endpoint{
		creds: creds,
		db:    db,
		factory: func(app *credentials.AppCredentials) (*relay.Handler, error) {
			backend, err := storage.New(cfg, app)
			if err != nil {
				return nil, err
			}
			client := slackclient.NewClient(app.BotToken)
			return relay.NewHandler(client, backend, relay.Options{
				GalleryPath:           cfg.GalleryPath,
				AcceptedFormats:       cfg.AcceptableFileFormats,
				ExcludeThreadedImages: cfg.ExcludeThreadedImages,
				CleanupMaxFileAge:     cfg.CleanupMaxFileAge,
			}), nil
		},
		now: time.Now,
	}
}

// ServeHTTP adapts the endpoint to net/http for the gateway and the
// Functions Framework.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error.Printf("Failed to read request body: %v", err)
		body = nil
	}

	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}

	resp := e.Process(r.Context(), headers, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

// Process handles one webhook invocation: freshness check, payload
// parse and type dispatch.
func (e *Endpoint) Process(ctx context.Context, headers map[string]string, body []byte) Response {
	if !e.isTimestampValid(headerValue(headers, timestampHeader)) {
		logger.Warn.Printf("Rejected request with stale or missing %s header", timestampHeader)
		return respond(relay.Result{Status: relay.StatusFailed, Message: relay.TimestampExpiredMessage})
	}

	var ev relay.IncomingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		logger.Warn.Printf("Failed to parse webhook payload: %v", err)
		return respond(relay.Result{Status: relay.StatusFailed, Message: malformedPayloadMessage})
	}

	switch ev.Type {
	case relay.TypeURLVerification:
		return respond(relay.RespondToVerification(&ev))
	case relay.TypeEventCallback:
		return respond(e.handleEventCallback(ctx, &ev))
	default:
		return respond(relay.Result{Message: relay.NoEventTypeMessage})
	}
}

func (e *Endpoint) handleEventCallback(ctx context.Context, ev *relay.IncomingEvent) relay.Result {
	app := e.creds.LookupApp(ev.APIAppID)
	if app == nil {
		logger.Warn.Printf("No credentials registered for app %s", ev.APIAppID)
		res := relay.Result{Status: relay.StatusFailed, Message: relay.AppNotRegisteredMessage}
		e.record(ev, res)
		return res
	}

	handler, err := e.factory(app)
	if err != nil {
		logger.Error.Printf("Failed to construct handler for app %s: %v", ev.APIAppID, err)
		res := relay.Result{Status: relay.StatusFailed, Message: err.Error()}
		e.record(ev, res)
		return res
	}

	res := handler.HandleEvent(ctx, ev)
	if err := handler.Close(); err != nil {
		logger.Warn.Printf("Failed to close handler for app %s: %v", ev.APIAppID, err)
	}
	e.record(ev, res)
	return res
}

// record appends the outcome to the relay history when one is kept.
func (e *Endpoint) record(ev *relay.IncomingEvent, res relay.Result) {
	if e.db == nil {
		return
	}

	rec := database.RelayRecord{
		AppID:     ev.APIAppID,
		Status:    res.Status,
		Message:   res.Message,
		CreatedAt: e.now().UTC(),
	}
	if ev.Event != nil {
		rec.FileID = ev.Event.FileID
		rec.ChannelID = ev.Event.ChannelID
	}

	if err := e.db.InsertRelay(rec); err != nil {
		logger.Error.Printf("Failed to record relay outcome: %v", err)
	}
}

func (e *Endpoint) isTimestampValid(value string) bool {
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false
	}
	return e.now().Sub(time.Unix(ts, 0)) < maxTimestampAge
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func respond(res relay.Result) Response {
	return Response{StatusCode: http.StatusOK, Body: res}
}
