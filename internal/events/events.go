// Package events publishes ride lifecycle transitions to a topic exchange.
// Delivery is best-effort: a broker outage is logged, never surfaced to the
// request that triggered the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchange = "ride.events"

type RideEvent struct {
	RideID      int64     `json:"ride_id"`
	PassengerID int64     `json:"passenger_id,omitempty"`
	VehicleID   int64     `json:"vehicle_id,omitempty"`
	Status      string    `json:"status"`
	At          time.Time `json:"at"`
}

// Sink accepts ride events. A nil *Publisher is a valid no-op Sink, so
// callers never need to branch on whether messaging is configured.
type Sink interface {
	Publish(ctx context.Context, e RideEvent)
}

type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *slog.Logger
}

// NewPublisher dials the broker and declares the ride.events exchange.
func NewPublisher(url string, log *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, log: log}, nil
}

func (p *Publisher) Publish(ctx context.Context, e RideEvent) {
	if p == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		p.log.Error("marshal ride event", "err", err)
		return
	}
	if p.conn.IsClosed() {
		p.log.Warn("amqp connection closed, dropping ride event", "ride_id", e.RideID, "status", e.Status)
		return
	}
	routingKey := "ride." + e.Status
	err = p.ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.log.Error("publish ride event", "err", err, "ride_id", e.RideID, "status", e.Status)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.ch != nil && !p.ch.IsClosed() {
		if err := p.ch.Close(); err != nil {
			return fmt.Errorf("close amqp channel: %w", err)
		}
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close amqp connection: %w", err)
		}
	}
	return nil
}
