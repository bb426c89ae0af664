// Package events publishes upload status changes to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// StatusChange is the body of an upload status event.
type StatusChange struct {
	UploadID uuid.UUID `json:"upload_id"`
	OwnerID  int64     `json:"user_id"`
	Status   string    `json:"status"`
	ResumeID *int64    `json:"resume_id,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

// RoutingKey is upload.<id>.
func (s StatusChange) RoutingKey() string {
	return fmt.Sprintf("upload.%s", s.UploadID)
}

type Publisher struct {
	conn     *amqp.Connection
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to rabbitmq: %w", err)
	}

	p := &Publisher{conn: conn, exchange: exchange}
	if _, err := p.channel(); err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

// channel returns the open channel, reopening it after a channel-level error.
func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		return p.ch, nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("unable to open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("unable to declare exchange %s: %w", p.exchange, err)
	}

	p.ch = ch
	return ch, nil
}

func (p *Publisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
}

func (p *Publisher) Publish(ctx context.Context, change StatusChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("unable to encode status change: %w", err)
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}

	err = ch.Publish(p.exchange, change.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    change.At,
		Body:         body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("unable to publish status change for %s: %w", change.UploadID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.reset()
	return p.conn.Close()
}
