// Package credentials loads the per-application credential file. One
// deployment can serve several Slack apps; each record maps a Slack app
// id to the bot token and storage secrets used for that app's events.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
)

const defaultSFTPPort = 22

// AppCredentials is one record from the credential file.
type AppCredentials struct {
	SlackAppID   string `json:"slack_app_id"`
	BotToken     string `json:"bot_token"`
	SFTPHost     string `json:"sftp_host"`
	SFTPUsername string `json:"sftp_username"`
	SFTPPassword string `json:"sftp_password"`
	SFTPPort     int    `json:"sftp_port"`
}

// Store holds the ordered credential list loaded at startup.
type Store struct {
	apps []AppCredentials
}

// Load reads the credential file at path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	var apps []AppCredentials
	if err := json.Unmarshal(data, &apps); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}

	for i := range apps {
		if apps[i].SFTPPort == 0 {
			apps[i].SFTPPort = defaultSFTPPort
		}
	}

	return &Store{apps: apps}, nil
}

// Apps returns every loaded record in file order.
func (s *Store) Apps() []AppCredentials {
	return s.apps
}

// LookupApp returns the first record matching appID, or nil when the app
// is not registered.
func (s *Store) LookupApp(appID string) *AppCredentials {
	for i := range s.apps {
		if s.apps[i].SlackAppID == appID {
			return &s.apps[i]
		}
	}
	return nil
}
