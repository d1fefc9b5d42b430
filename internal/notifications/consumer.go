package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

type ConsumerConfig struct {
	Brokers         []string
	GroupID         string
	Topic           string
	Workers         int
	SessionTimeout  time.Duration
	Heartbeat       time.Duration
	DeliveryTimeout time.Duration
	StartFromOldest bool
}

func DefaultConsumerConfig(brokers []string, groupID, topic string, workers int) *ConsumerConfig {
	if workers <= 0 {
		workers = 1
	}
	return &ConsumerConfig{
		Brokers:         brokers,
		GroupID:         groupID,
		Topic:           topic,
		Workers:         workers,
		SessionTimeout:  30 * time.Second,
		Heartbeat:       3 * time.Second,
		DeliveryTimeout: 15 * time.Second,
	}
}

// Consumer reads notifications from Kafka and hands each to a Sink, normally SMS
type Consumer struct {
	group  sarama.ConsumerGroup
	config *ConsumerConfig
	sink   Sink
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConsumer(cfg *ConsumerConfig, sink Sink) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = cfg.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = cfg.Heartbeat
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if cfg.StartFromOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{group: group, config: cfg, sink: sink}, nil
}

func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	slog.Info("Starting notification consumers",
		slog.Int("workers", c.config.Workers),
		slog.String("topic", c.config.Topic),
		slog.String("group", c.config.GroupID),
	)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			slog.Error("Consumer group error", slog.String("error", err.Error()))
		}
	}()

	for i := 0; i < c.config.Workers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}
}

func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{
		workerID: workerID,
		sink:     c.sink,
		timeout:  c.config.DeliveryTimeout,
	}

	for {
		if err := c.group.Consume(ctx, []string{c.config.Topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			slog.Warn("Consumer worker error", slog.Int("worker", workerID), slog.String("error", err.Error()))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.group.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	slog.Info("Notification consumers stopped")
	return nil
}

type consumerGroupHandler struct {
	workerID int
	sink     Sink
	timeout  time.Duration
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	slog.Debug("Consumer group session started", slog.Int("worker", h.workerID))
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	slog.Debug("Consumer group session ended", slog.Int("worker", h.workerID))
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			h.handle(session.Context(), message)
			// No retry: a failed delivery is logged and the offset still moves on
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) handle(ctx context.Context, message *sarama.ConsumerMessage) {
	var n Notification
	if err := json.Unmarshal(message.Value, &n); err != nil {
		slog.Warn("Dropping malformed notification",
			slog.Int("partition", int(message.Partition)),
			slog.Int64("offset", message.Offset),
			slog.String("error", err.Error()),
		)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := h.sink.Deliver(ctx, n); err != nil {
		logDeliveryFailure(ctx, n, err)
	}
}
