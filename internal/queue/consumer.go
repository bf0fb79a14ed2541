package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strconv"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// Consumer appends every rental.created message to LogDir/rentals.log.
type Consumer struct {
    URL    string
    LogDir string
    Log    *logrus.Logger
}

// NewConsumer builds a consumer writing to logDir ("logs" when empty).
func NewConsumer(url, logDir string, log *logrus.Logger) *Consumer {
    if logDir == "" {
        logDir = "logs"
    }
    return &Consumer{URL: url, LogDir: logDir, Log: log}
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff (capped at 30s) whenever the connection drops.
// Malformed messages are logged and rejected without requeue.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.WithError(err).WithField("retry_in", backoff.String()).Warn("rental consumer: dial failed")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            backoff = min(backoff*2, 30*time.Second)
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.WithError(err).Warn("rental consumer: reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.WithError(err).Warn("rental consumer: set QoS failed")
    }
    if err := DeclareRentalQueue(ch); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, RentalCreatedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }
    for d := range msgs {
        if err := c.handleMessage(d.Body); err != nil {
            c.Log.WithError(err).Error("rental consumer: handle message failed")
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func (c *Consumer) handleMessage(body []byte) error {
    var ev RentalCreatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.CustomerID == 0 || len(ev.Rentals) == 0 {
        return errors.New("event without customer or rentals")
    }
    if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.LogDir, err)
    }
    f, err := os.OpenFile(filepath.Join(c.LogDir, "rentals.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatEvent(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    c.Log.WithFields(logrus.Fields{
        "customer_id": ev.CustomerID,
        "rentals":     len(ev.Rentals),
    }).Debug("rental recorded")
    return nil
}

// formatEvent renders one newline-terminated line per event.
func formatEvent(ev RentalCreatedEvent) string {
    movies := make([]string, len(ev.Rentals))
    for i, r := range ev.Rentals {
        movies[i] = strconv.FormatUint(r.RentalID, 10) + ":" + strconv.FormatUint(r.MovieID, 10)
    }
    return fmt.Sprintf("[%s] Rental created | customer_id=%d | staff_user_id=%d | rentals=[%s]\n",
        ev.RentedAt.UTC().Format(time.RFC3339), ev.CustomerID, ev.StaffUserID, strings.Join(movies, ","))
}
