package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Quiz lifecycle event names, appended to the configured subject prefix.
const (
	EnrollmentCreated = "enrollment.created"
	AttemptStarted    = "attempt.started"
	AttemptCompleted  = "attempt.completed"
	QuizDeleted       = "quiz.deleted"
)

// Envelope wraps every published payload.
type Envelope struct {
	Type       string      `json:"type"`
	Source     string      `json:"source"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher emits domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event string, data interface{}) error
}

// Noop discards every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, string, interface{}) error { return nil }

// NATSPublisher publishes JSON envelopes on "<prefix>.<event>".
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	nodeID string
	logger zerolog.Logger
}

// NewNATSPublisher wraps an established connection. A nil connection yields a
// publisher that drops events.
func NewNATSPublisher(conn *nats.Conn, prefix string, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{
		conn:   conn,
		prefix: strings.Trim(strings.ReplaceAll(prefix, ":", "."), "."),
		nodeID: uuid.NewString(),
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

// Connect dials NATS. An empty URL disables publishing and returns a nil connection.
func Connect(url, name string) (*nats.Conn, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil
	}

	return nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

// Subject returns the fully qualified subject for an event.
func (p *NATSPublisher) Subject(event string) string {
	if p.prefix == "" {
		return event
	}
	return p.prefix + "." + event
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, event string, data interface{}) error {
	if p == nil || p.conn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(Envelope{
		Type:       event,
		Source:     p.nodeID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.Subject(event), payload); err != nil {
		p.logger.Warn().Err(err).Str("event", event).Msg("failed to publish event")
		return err
	}

	return nil
}
