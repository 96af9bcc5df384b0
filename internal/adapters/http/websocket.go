package http

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/geomatch/internal/adapters/nats"
	"github.com/samirrijal/geomatch/internal/core/domain"
	"github.com/samirrijal/geomatch/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Kind    string `json:"kind"`    // candidate kind filter (optional, "" = all)
	Channel string `json:"channel"` // "matches" | "snapshots" (default: matches)
}

// wsSubject builds the NATS subject for a channel and optional kind filter.
func wsSubject(channel, kind string) (string, error) {
	var prefix string
	switch channel {
	case "", "matches":
		prefix = natsadapter.SubjectMatch
	case "snapshots":
		prefix = natsadapter.SubjectSnapshot
	default:
		return "", errUnknownChannel(channel)
	}
	if kind == "" {
		return prefix + ">", nil
	}
	k, err := domain.ParseKind(kind)
	if err != nil {
		return "", err
	}
	return prefix + string(k), nil
}

// overlapping returns the subscribed subjects that would deliver events already
// covered by subject, or that subject would cover.
func overlapping(subscribed map[string]*nats.Subscription, subject string) []string {
	covers := func(wild, s string) bool {
		return strings.HasSuffix(wild, ">") && strings.HasPrefix(s, strings.TrimSuffix(wild, ">"))
	}
	var out []string
	for s := range subscribed {
		if s != subject && (covers(s, subject) || covers(subject, s)) {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

type errUnknownChannel string

func (e errUnknownChannel) Error() string { return "unknown channel: " + string(e) }

// WebSocketHandler returns a handler that upgrades to WebSocket and relays match
// and snapshot events from NATS to connected clients.
// Clients send JSON: {"action":"subscribe","kind":"worker","channel":"matches"}
// An empty kind means all kinds. Every client starts subscribed to all match events;
// a narrower subscription on a channel replaces its wider one and vice versa.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		defaultSubject, _ := wsSubject("matches", "")
		sub, err := nc.Subscribe(defaultSubject, relay)
		if err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[defaultSubject] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, err := wsSubject(m.Channel, m.Kind)
			if err != nil {
				_ = writeJSON(map[string]string{"error": err.Error()})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				// One subscription per channel scope, so events are never relayed twice.
				replaced := overlapping(subs, subject)
				for _, old := range replaced {
					_ = subs[old].Unsubscribe()
					delete(subs, old)
				}
				subs[subject] = s
				_ = writeJSON(map[string]interface{}{"status": "subscribed", "subject": subject, "replaced": replaced})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
