package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// TransactionEvent is published when a transaction reaches a terminal state
// or a withdrawal reserves funds. Consumers are external; failure to publish
// never rolls back a ledger mutation.
type TransactionEvent struct {
	TransactionID string    `json:"transaction_id"`
	AccountID     string    `json:"account_id"`
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns nil when no brokers are configured; a nil Publisher
// drops events silently.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, event TransactionEvent) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AccountID),
		Value: data,
	})
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
