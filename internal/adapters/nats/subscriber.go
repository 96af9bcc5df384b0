package natsadapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geomatch/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own connection. Instances sharing
// durable split deliveries; give each API replica its own name so all invalidate.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribeCandidateChanges calls handler with the kind of every candidate-changed event.
// Messages for unknown kinds are terminated; handler errors are redelivered up to three times.
func (s *Subscriber) SubscribeCandidateChanges(ctx context.Context, handler func(ctx context.Context, kind domain.Kind) error) error {
	sub, err := s.js.Subscribe(SubjectCandidateChanged+">", func(msg *nats.Msg) {
		kind, err := KindFromSubject(msg.Subject)
		if err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, kind); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// KindFromSubject parses the trailing kind token of an event subject.
func KindFromSubject(subject string) (domain.Kind, error) {
	i := strings.LastIndexByte(subject, '.')
	return domain.ParseKind(subject[i+1:])
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
