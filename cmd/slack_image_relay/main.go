package main

import (
	"context"
	"log"

	"slack_image_relay/internal/config"
	"slack_image_relay/internal/credentials"
	"slack_image_relay/internal/database"
	"slack_image_relay/internal/logger"
	"slack_image_relay/internal/server"
	slackclient "slack_image_relay/internal/slack"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger with log level
	if err := logger.Init(cfg.LogPath, logger.ParseLogLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	creds, err := credentials.Load(cfg.CredentialsPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load credentials: %v", err)
	}

	ctx := context.Background()
	validateBotTokens(ctx, creds)

	// Relay history is optional
	var db *database.DB
	if cfg.DBPath != "" {
		db, err = database.New(cfg.DBPath)
		if err != nil {
			logger.Error.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		logger.Info.Println("Relay history database initialized")
	}

	endpoint := server.New(cfg, creds, db)

	if err := funcframework.RegisterHTTPFunctionContext(ctx, "/", endpoint.ServeHTTP); err != nil {
		logger.Error.Fatalf("Failed to register webhook function: %v", err)
	}

	logger.Info.Printf("Listening on port %s (backend: %s)", cfg.Port, cfg.StorageBackend)
	if err := funcframework.Start(cfg.Port); err != nil {
		logger.Error.Fatalf("Failed to start server: %v", err)
	}
}

// validateBotTokens checks every registered app's token at startup.
// Failures are logged, not fatal: one bad record should not take the
// relay down for the other apps.
func validateBotTokens(ctx context.Context, creds *credentials.Store) {
	for _, app := range creds.Apps() {
		auth, err := slackclient.NewClient(app.BotToken).ValidateAuth(ctx)
		if err != nil {
			logger.Warn.Printf("Auth validation failed for app %s: %v", app.SlackAppID, err)
			continue
		}
		logger.Info.Printf("App %s authenticated as %s (team: %s)", app.SlackAppID, auth.User, auth.Team)
	}
}
