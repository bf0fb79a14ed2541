// Package service holds integrations the HTTP layer calls after a request
// has been committed, such as publishing domain events.
package service

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/vidly/internal/queue"
)

// RentalPublisher sends RentalCreatedEvent messages to RabbitMQ.  Each call
// dials its own connection; checkouts are infrequent enough that a pooled
// channel is not needed.
type RentalPublisher struct {
    URL string
    Log *logrus.Logger
}

// maxDialTimeout caps the TCP connect and AMQP handshake of one publish.
const maxDialTimeout = 5 * time.Second

func NewRentalPublisher(url string, log *logrus.Logger) *RentalPublisher {
    return &RentalPublisher{URL: url, Log: log}
}

// PublishRentalCreated publishes ev as a persistent JSON message on the
// rental.created queue.  Errors are logged and returned so the caller can
// choose to ignore them.
func (p *RentalPublisher) PublishRentalCreated(ctx context.Context, ev queue.RentalCreatedEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal rental event: %w", err)
    }

    timeout, err := dialTimeout(ctx)
    if err != nil {
        return fmt.Errorf("dial broker: %w", err)
    }
    conn, err := amqp.DialConfig(p.URL, amqp.Config{
        Locale: "en_US",
        Dial:   amqp.DefaultDial(timeout),
    })
    if err != nil {
        p.Log.WithError(err).Warn("rabbitmq: dial failed")
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.Log.WithError(err).Warn("rabbitmq: channel open failed")
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := queue.DeclareRentalQueue(ch); err != nil {
        p.Log.WithError(err).Warn("rabbitmq: queue declare failed")
        return fmt.Errorf("declare queue: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue.RentalCreatedQueue, false, false, pub); err != nil {
        p.Log.WithError(err).Warn("rabbitmq: publish failed")
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}

// dialTimeout bounds the dial by ctx's deadline and maxDialTimeout.
func dialTimeout(ctx context.Context) (time.Duration, error) {
    if err := ctx.Err(); err != nil {
        return 0, err
    }
    d := maxDialTimeout
    if deadline, ok := ctx.Deadline(); ok {
        d = min(d, time.Until(deadline))
    }
    if d <= 0 {
        return 0, context.DeadlineExceeded
    }
    return d, nil
}
