package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher returns an async publisher: Publish only enqueues, and
// delivery failures are reported through the completion callback.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Async:                  true,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		Completion:             completionLogger(logger),
	}
	return &KafkaPublisher{writer: w}
}

func completionLogger(logger *zap.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err == nil {
			return
		}
		for _, m := range msgs {
			logger.Warn("kafka delivery failed",
				zap.String("topic", m.Topic),
				zap.ByteString("key", m.Key),
				zap.String("type", headerValue(m, "type")),
				zap.Error(err),
			)
		}
	}
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Publish keys messages by username so one user's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Username),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send message to kafka: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
