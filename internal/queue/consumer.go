package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PlacementHandler persists a completed placement run.
type PlacementHandler interface {
	HandlePlacementCompleted(ctx context.Context, event *PlacementCompleted) error
}

// Consumer drains the placement queue with a bounded worker pool.
type Consumer struct {
	conn       *Connection
	handler    PlacementHandler
	workers    int
	timeout    time.Duration
	wg         sync.WaitGroup
	shutdownCh chan struct{}
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) ConsumerOption {
	return func(c *Consumer) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithHandlerTimeout bounds how long a single event may take to persist.
func WithHandlerTimeout(d time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewConsumer creates a consumer for placement events.
func NewConsumer(conn *Connection, handler PlacementHandler, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		conn:       conn,
		handler:    handler,
		workers:    4,
		timeout:    30 * time.Second,
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins consuming. It blocks until the context is cancelled or
// Shutdown is called.
func (c *Consumer) Start(ctx context.Context) error {
	ch := c.conn.Channel()

	// Prefetch matches the worker pool so slow persistence applies
	// backpressure instead of buffering unacked deliveries.
	if err := ch.Qos(c.workers, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.Consume(
		PlacementQueueName,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	slog.Info("placement consumer started", "workers", c.workers, "queue", PlacementQueueName)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, deliveries)
	}

	select {
	case <-ctx.Done():
	case <-c.shutdownCh:
	}

	c.wg.Wait()
	return nil
}

// Shutdown stops the consumer and waits for in-flight events.
func (c *Consumer) Shutdown() {
	close(c.shutdownCh)
	c.wg.Wait()
}

func (c *Consumer) worker(ctx context.Context, id int, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.shutdownCh:
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			c.processMessage(ctx, id, d)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, worker int, d amqp.Delivery) {
	var event PlacementCompleted
	if err := json.Unmarshal(d.Body, &event); err != nil {
		slog.Error("malformed placement event, rejecting",
			"worker", worker,
			"error", err,
		)
		// Malformed payloads never become valid; drop without requeue.
		d.Reject(false)
		return
	}

	handlerCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.handler.HandlePlacementCompleted(handlerCtx, &event); err != nil {
		slog.Error("failed to persist placement event",
			"worker", worker,
			"event_id", event.ID,
			"learner_id", event.LearnerID,
			"error", err,
		)
		// Transient failure (database down): requeue for another attempt.
		d.Nack(false, true)
		return
	}

	if err := d.Ack(false); err != nil {
		slog.Error("failed to ack placement event", "worker", worker, "event_id", event.ID, "error", err)
		return
	}

	slog.Info("placement event persisted",
		"worker", worker,
		"event_id", event.ID,
		"learner_id", event.LearnerID,
		"placements", len(event.Placements),
	)
}
