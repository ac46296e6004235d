package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// BookingEvent is published on every booking lifecycle transition. Contact is
// the opaque contact payload; consumers that need an address parse it
// themselves.
type BookingEvent struct {
	Type             string          `json:"type"`
	BookingID        string          `json:"booking_id"`
	FlightInstanceID string          `json:"flight_instance_id"`
	Seats            int             `json:"seats"`
	Status           string          `json:"status"`
	Reason           string          `json:"reason,omitempty"`
	TotalCents       int64           `json:"total_cents"`
	Currency         string          `json:"currency"`
	ConfirmationRef  string          `json:"confirmation_ref,omitempty"`
	Contact          json.RawMessage `json:"contact,omitempty"`
	ExpiresAt        time.Time       `json:"expires_at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
