package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ewait/internal/shared/config"
	"ewait/pkg/logger"
)

const deliveryTimeout = 15 * time.Second

// Service is the in-process Dispatcher. Dispatch only enqueues; a background
// goroutine drains the buffer into the sink.
type Service struct {
	sink     Sink
	consumer *Consumer
	closers  []func() error

	queue chan Notification
	done  chan struct{}
	wg    sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewDispatcher builds a Service around sink with a buffer of bufferSize
func NewDispatcher(sink Sink, bufferSize int) *Service {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Service{
		sink:  sink,
		queue: make(chan Notification, bufferSize),
		done:  make(chan struct{}),
	}
}

// NewService wires the sink from configuration: Kafka producer plus consumer group
// when Kafka is enabled, direct SMS otherwise.
func NewService(cfg *config.Config) (*Service, error) {
	delivery := NewSMSDelivery(NewSMSSender(cfg.SMS), cfg.AppURL)

	if !cfg.Notifications.KafkaEnabled {
		slog.Info("Notifications will be sent inline (Kafka disabled)")
		return NewDispatcher(delivery, cfg.Notifications.BufferSize), nil
	}

	nc := cfg.Notifications
	producer, err := NewKafkaProducer(DefaultKafkaProducerConfig(nc.KafkaBrokers, nc.Topic))
	if err != nil {
		return nil, err
	}

	consumer, err := NewConsumer(DefaultConsumerConfig(nc.KafkaBrokers, nc.ConsumerGroupID, nc.Topic, nc.ConsumerWorkers), delivery)
	if err != nil {
		_ = producer.Close()
		return nil, err
	}

	s := NewDispatcher(producer, nc.BufferSize)
	s.consumer = consumer
	s.closers = append(s.closers, producer.Close)
	return s, nil
}

func (s *Service) Dispatch(ctx context.Context, n Notification) {
	if n.Phone == "" {
		return
	}

	select {
	case s.queue <- n:
	default:
		slog.WarnContext(ctx, "Notification buffer full, dropping notification",
			slog.String("kind", string(n.Kind)),
			slog.String("entry_id", n.EntryID.String()),
		)
	}
}

// Start launches the drain goroutine and, with Kafka, the consumer group
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		if s.consumer != nil {
			s.consumer.Start(ctx)
		}

		s.wg.Add(1)
		go s.drain(ctx)
		slog.Info("Notification dispatcher started", slog.Int("buffer", cap(s.queue)))
	})
}

func (s *Service) drain(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case n := <-s.queue:
			s.deliver(ctx, n)
		case <-s.done:
			// flush what is already buffered, then exit
			for {
				select {
				case n := <-s.queue:
					s.deliver(context.WithoutCancel(ctx), n)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) deliver(ctx context.Context, n Notification) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := s.sink.Deliver(ctx, n); err != nil {
		logDeliveryFailure(ctx, n, err)
	}
}

// Stop flushes the buffer and releases Kafka resources
func (s *Service) Stop() error {
	var errs []error
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()

		if s.consumer != nil {
			if err := s.consumer.Stop(); err != nil {
				errs = append(errs, err)
			}
		}
		for _, closeFn := range s.closers {
			if err := closeFn(); err != nil {
				errs = append(errs, err)
			}
		}
		slog.Info("Notification dispatcher stopped")
	})
	return errors.Join(errs...)
}

func logDeliveryFailure(ctx context.Context, n Notification, err error) {
	if errors.Is(err, ErrSMSNotConfigured) {
		return
	}
	logger.GetDefault().LogNotificationFailed(ctx, string(n.Kind), n.EntryID.String(), err)
}
