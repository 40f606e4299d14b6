// Package kafka streams audit events to a Kafka (or Redpanda) topic for
// downstream compliance consumers. The sink is best-effort: produce failures
// are reported to the publisher's logger, never to the request path.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "proofgate/pkg/platform/audit"
)

// Sink publishes audit events to a single topic, keyed by scope so events
// for one relier stay ordered within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers and ensures the topic exists. A single
// partition is enough for audit volume; operators can repartition later.
func New(ctx context.Context, brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// Already-exists is fine; anything else is a wiring fault worth
		// failing startup over.
		if !errors.Is(err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("ensure audit topic %q: %w", topic, err)
		}
	}

	return &Sink{client: client, topic: topic}, nil
}

// wireEvent is the JSON shape produced to the topic.
type wireEvent struct {
	Category      string   `json:"category"`
	Timestamp     string   `json:"timestamp"`
	Action        string   `json:"action"`
	ScopeID       string   `json:"scope_id,omitempty"`
	CorrelationID string   `json:"correlation_id,omitempty"`
	RequestID     string   `json:"request_id,omitempty"`
	Decision      string   `json:"decision,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	Details       []string `json:"details,omitempty"`
	SubjectIDHash string   `json:"subject_id_hash,omitempty"`
	DeviceSummary string   `json:"device_summary,omitempty"`
	ClientIP      string   `json:"client_ip,omitempty"`
}

// Publish produces one event synchronously.
func (s *Sink) Publish(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(wireEvent{
		Category:      string(event.Category),
		Timestamp:     event.Timestamp.Format(time.RFC3339Nano),
		Action:        event.Action,
		ScopeID:       event.ScopeID,
		CorrelationID: event.CorrelationID,
		RequestID:     event.RequestID,
		Decision:      event.Decision,
		Reason:        event.Reason,
		Details:       event.Details,
		SubjectIDHash: event.SubjectIDHash,
		DeviceSummary: event.DeviceSummary,
		ClientIP:      event.ClientIP,
	})
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ScopeID),
		Value: payload,
	}
	return s.client.ProduceSync(ctx, record).FirstErr()
}

// Close flushes pending records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
