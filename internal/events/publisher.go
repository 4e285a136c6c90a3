package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Raj-kansagra/InstaFood/internal/domain"
	"github.com/Raj-kansagra/InstaFood/pkg/circuitbreaker"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

const eventTypeHeader = "event_type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes order events keyed by user id, so every event of one
// buyer lands on the same partition.
type KafkaPublisher struct {
	writer messageWriter
	cb     *gobreaker.CircuitBreaker[struct{}]
	log    *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return newKafkaPublisher(w, log)
}

func newKafkaPublisher(w messageWriter, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		cb:     circuitbreaker.New[struct{}](circuitbreaker.Settings{Name: "kafka-orders"}, log),
		log:    log,
	}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, evt domain.OrderPlacedEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(domain.EventTypeOrderPlaced)},
		},
	}

	_, err = p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}

	p.log.DebugContext(ctx, "order event published",
		slog.String("order_id", evt.OrderID),
		slog.String("event_id", evt.EventID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, domain.OrderPlacedEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
