package main

import (
	"context"
	"encoding/json"
	"log"

	"slack_image_relay/internal/config"
	"slack_image_relay/internal/credentials"
	"slack_image_relay/internal/database"
	"slack_image_relay/internal/logger"
	"slack_image_relay/internal/server"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.LogPath, logger.ParseLogLevel(cfg.LogLevel)); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	creds, err := credentials.Load(cfg.CredentialsPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load credentials: %v", err)
	}

	// Relay history is optional; a warm Lambda instance reuses the
	// connection across invocations.
	var db *database.DB
	if cfg.DBPath != "" {
		db, err = database.New(cfg.DBPath)
		if err != nil {
			logger.Error.Fatalf("Failed to initialize database: %v", err)
		}
	}

	endpoint := server.New(cfg, creds, db)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		resp := endpoint.Process(ctx, req.Headers, []byte(req.Body))

		body, err := json.Marshal(resp.Body)
		if err != nil {
			logger.Error.Printf("Failed to encode response body: %v", err)
			body = []byte("{}")
		}

		return events.APIGatewayProxyResponse{
			StatusCode: resp.StatusCode,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       string(body),
		}, nil
	})
}
