package realtime

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"hearth/internal/logger"
)

// Client publishes and consumes change events over RabbitMQ. The exchange
// is a topic exchange keyed by "<entity>.<op>" so consumers can subscribe
// to a subset of entities.
type Client struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewClient connects to the broker and declares the change exchange.
func NewClient(url, exchange string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Client{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish sends one change event. Publishing is best-effort from the
// caller's point of view: services log a failure and move on, the client
// snapshot can always fall back to a full re-fetch.
func (c *Client) Publish(ctx context.Context, ev Event) error {
	body, err := Encode(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchange,
		ev.RoutingKey(),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Consume binds a queue to the change exchange and feeds decoded events to
// handler until ctx is done. Malformed messages are dropped, not requeued;
// a push channel is best-effort and the merge layer treats gaps as
// recoverable by re-fetch.
func (c *Client) Consume(ctx context.Context, queue string, handler func(Event)) error {
	q, err := c.channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := c.channel.QueueBind(q.Name, "#", c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	msgs, err := c.channel.Consume(
		q.Name, // queue
		"",     // consumer
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	log := logger.Get()
	log.Infow("consuming change events", "queue", q.Name, "exchange", c.exchange)

	for {
		select {
		case <-ctx.Done():
			log.Infow("stopping change-event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			ev, err := Decode(delivery.Body)
			if err != nil {
				log.Warnw("dropping malformed change event", "error", err)
				_ = delivery.Nack(false, false)
				continue
			}

			handler(ev)
			_ = delivery.Ack(false)
		}
	}
}

// Close releases the channel and connection.
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
