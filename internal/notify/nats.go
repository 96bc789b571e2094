// Package notify publishes build-completed events over NATS so downstream
// tooling (search indexers, cache invalidation) can react to fresh output.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitepipe/internal/config"
)

// BuildEvent is the payload published after every build.
type BuildEvent struct {
	BuildID   string    `json:"build_id"`
	Outcome   string    `json:"outcome"`
	Pages     int       `json:"pages"`
	Redirects int       `json:"redirects"`
	SiteDir   string    `json:"site_dir"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher manages the NATS connection for build events.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to the configured NATS server.
func NewPublisher(cfg config.EventsConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("event publishing is disabled")
	}
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	slog.Info("NATS publisher initialized", "url", cfg.URL, "subject", cfg.Subject)
	return &Publisher{conn: conn, subject: cfg.Subject}, nil
}

// PublishBuildCompleted publishes one build event.
func (p *Publisher) PublishBuildCompleted(event BuildEvent) error {
	event.Timestamp = time.Now()
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal build event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish build event: %w", err)
	}
	slog.Debug("Published build event", "build_id", event.BuildID, "outcome", event.Outcome)
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
