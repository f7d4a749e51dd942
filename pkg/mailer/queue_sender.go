package mailer

import (
	"context"
	"fmt"
)

// Publisher is satisfied by helpers.RabbitQueue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender hands messages to the email worker through a queue. Success
// means the broker accepted the job, not that the mail was delivered.
type QueueSender struct {
	pub Publisher
}

func NewQueueSender(pub Publisher) *QueueSender {
	return &QueueSender{pub: pub}
}

func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if err := q.pub.PublishJSON(ctx, JobFromMessage(msg)); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}
