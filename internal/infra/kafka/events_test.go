package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func TestPublishFollowChanged(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "social",
		},
		done: make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "matchme-platform",
		Env:  "test",
	}, zaptest.NewLogger(t))

	changedAt := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
	event := domain.FollowChangedEvent{
		EventID:     "event-123",
		FollowerID:  "user-1",
		FollowingID: "user-2",
		Active:      true,
		ChangedAt:   changedAt,
		Metadata:    map[string]any{"source": "unit-test"},
	}

	if err := publisher.PublishFollowChanged(context.Background(), event); err != nil {
		t.Fatalf("PublishFollowChanged returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "social.follow.changed" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "social.follow.changed" {
			t.Fatalf("unexpected event_type: %v", got)
		}

		if got := envelope["actor_id"]; got != event.FollowerID {
			t.Fatalf("unexpected actor_id: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}

		if got := payload["following_id"]; got != event.FollowingID {
			t.Fatalf("unexpected following_id: %v", got)
		}

		if got, ok := payload["active"].(bool); !ok || !got {
			t.Fatalf("unexpected active flag: %v", payload["active"])
		}
	case <-time.After(time.Second):
		t.Fatalf("no message produced")
	}
}

func TestPublishInvitationSentFillsEventID(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg:      config.KafkaSettings{TopicPrefix: "social"},
		done:     make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{Name: "matchme-platform", Env: "test"}, zaptest.NewLogger(t))

	event := domain.InvitationSentEvent{
		InvitationID: "inv-1",
		ProjectID:    "project-1",
		InviterID:    "user-1",
		InviteeID:    "user-2",
		SentAt:       time.Now().UTC(),
	}

	if err := publisher.PublishInvitationSent(context.Background(), event); err != nil {
		t.Fatalf("PublishInvitationSent returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		id, ok := envelope["event_id"].(string)
		if !ok || id == "" {
			t.Fatalf("expected generated event_id, got %v", envelope["event_id"])
		}
	case <-time.After(time.Second):
		t.Fatalf("no message produced")
	}
}
