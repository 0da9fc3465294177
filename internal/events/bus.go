// ABOUTME: Event bus facade over a watermill publisher
// ABOUTME: Marshals typed payloads to JSON and publishes best-effort to named topics

package events

import (
	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Bus publishes typed events to named topics. The core only depends on
// Publish; the host decides delivery by choosing the underlying publisher
// (in-process gochannel by default).
type Bus struct {
	pub message.Publisher
	log zerolog.Logger
}

// NewBus wraps a watermill publisher. A nil publisher yields a bus that
// drops every event, which is convenient in tests.
func NewBus(pub message.Publisher, log zerolog.Logger) *Bus {
	return &Bus{pub: pub, log: log.With().Str("component", "events").Logger()}
}

// Publish emits payload on topic. A nil payload publishes an empty message.
// Errors are logged, never returned: emission is best-effort by contract.
func (b *Bus) Publish(topic string, payload any) {
	if b == nil || b.pub == nil {
		return
	}

	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			b.log.Error().Err(err).Str("topic", topic).Msg("marshal event payload")
			return
		}
	}

	msg := message.NewMessage(uuid.New().String(), data)
	if err := b.pub.Publish(topic, msg); err != nil {
		b.log.Warn().Err(err).Str("topic", topic).Msg("publish event")
	}
}

// Close releases the underlying publisher.
func (b *Bus) Close() error {
	if b == nil || b.pub == nil {
		return nil
	}
	return b.pub.Close()
}
