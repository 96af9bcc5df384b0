package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// Subjects used on the event bus. The trailing token is the candidate kind.
const (
	SubjectMatch            = "geomatch.match."
	SubjectSnapshot         = "geomatch.snapshot."
	SubjectCandidateChanged = "geomatch.candidates.changed."
)

// Streams lists the JetStream streams the service publishes to.
var Streams = []nats.StreamConfig{
	{
		Name:      "MATCH_EVENTS",
		Subjects:  []string{"geomatch.match.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	},
	{
		Name:      "SNAPSHOT_EVENTS",
		Subjects:  []string{"geomatch.snapshot.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.FileStorage,
	},
	{
		Name:      "CANDIDATE_CHANGES",
		Subjects:  []string{"geomatch.candidates.>"},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	},
}

// SnapshotRefreshed is the payload published after a snapshot refresh.
type SnapshotRefreshed struct {
	Kind       domain.Kind `json:"kind"`
	Candidates int         `json:"candidates"`
	At         time.Time   `json:"at"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	for _, cfg := range Streams {
		cfg := cfg
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishMatch(ctx context.Context, event *domain.MatchEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectMatch+string(event.Kind), data, nats.Context(ctx))
	return err
}

func (p *Publisher) PublishSnapshotRefreshed(ctx context.Context, kind domain.Kind, count int) error {
	data, err := json.Marshal(SnapshotRefreshed{Kind: kind, Candidates: count, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectSnapshot+string(kind), data, nats.Context(ctx))
	return err
}

// PublishCandidateChanged tells API instances that a kind's source data changed.
func (p *Publisher) PublishCandidateChanged(ctx context.Context, kind domain.Kind) error {
	_, err := p.js.Publish(SubjectCandidateChanged+string(kind), []byte(kind), nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("geomatch"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
