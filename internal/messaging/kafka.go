package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/internal/config"
	"github.com/temcen/movierec/pkg/models"
)

const instanceHeader = "instance_id"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// RatingEventBus publishes rating events and consumes the ones produced by
// other instances.
type RatingEventBus struct {
	writer     messageWriter
	mu         sync.Mutex
	reader     messageReader
	newReader  func() messageReader
	topic      string
	instanceID string
	maxRetries int
	baseDelay  time.Duration
	logger     *logrus.Logger
}

// NewRatingEventBus connects to the configured brokers. The reader is only
// opened by ConsumeRatingEvents; it joins a consumer group of its own so each
// instance sees every event.
func NewRatingEventBus(cfg *config.Config, logger *logrus.Logger) *RatingEventBus {
	instanceID := uuid.NewString()
	topic := cfg.Kafka.Topics.Ratings

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // Key by user for per-user ordering
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}

	bus := newRatingEventBus(writer, nil, topic, instanceID, logger)
	bus.newReader = func() messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          topic,
			GroupID:        fmt.Sprintf("%s-%s", cfg.Kafka.ConsumerGroup, instanceID),
			MinBytes:       1,
			MaxBytes:       1e6, // 1MB
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		})
	}
	return bus
}

func newRatingEventBus(writer messageWriter, reader messageReader, topic, instanceID string, logger *logrus.Logger) *RatingEventBus {
	return &RatingEventBus{
		writer:     writer,
		reader:     reader,
		topic:      topic,
		instanceID: instanceID,
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		logger:     logger,
	}
}

// PublishRating writes a rating.recorded event keyed by user id
func (b *RatingEventBus) PublishRating(ctx context.Context, rating models.Rating) error {
	event := models.RatingEvent{
		EventID:    uuid.New(),
		Type:       models.RatingRecordedEvent,
		Rating:     rating,
		OccurredAt: time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal rating event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(strconv.FormatInt(rating.UserID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID.String())},
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: instanceHeader, Value: []byte(b.instanceID)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := b.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write rating event to Kafka: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"event_id":  event.EventID,
		"rating_id": rating.ID,
		"topic":     b.topic,
	}).Debug("Rating event published")

	return nil
}

// ConsumeRatingEvents blocks, handing every event from other instances to
// handler until ctx is cancelled or the reader is closed.
func (b *RatingEventBus) ConsumeRatingEvents(ctx context.Context, handler func(context.Context, models.RatingEvent) error) error {
	reader := b.openReader()
	if reader == nil {
		return errors.New("rating event reader is not configured")
	}

	for {
		message, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			b.logger.WithError(err).Error("Failed to read rating event from Kafka")
			continue
		}

		if headerValue(message, instanceHeader) == b.instanceID {
			continue
		}

		var event models.RatingEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			b.logger.WithError(err).Error("Failed to unmarshal rating event")
			continue
		}

		if err := b.processWithRetry(ctx, event, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.WithError(err).WithField("event_id", event.EventID).Error("Dropping rating event after retries")
		}
	}
}

func (b *RatingEventBus) processWithRetry(ctx context.Context, event models.RatingEvent, handler func(context.Context, models.RatingEvent) error) error {
	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			delay := b.baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if lastErr = handler(ctx, event); lastErr == nil {
			return nil
		}

		b.logger.WithError(lastErr).WithFields(logrus.Fields{
			"event_id": event.EventID,
			"attempt":  attempt,
		}).Warn("Rating event handling failed")
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (b *RatingEventBus) openReader() messageReader {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reader == nil && b.newReader != nil {
		b.reader = b.newReader()
	}
	return b.reader
}

func (b *RatingEventBus) Close() error {
	var errs []error
	if err := b.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close producer: %w", err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reader != nil {
		if err := b.reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close consumer: %w", err))
		}
	}
	return errors.Join(errs...)
}

func headerValue(message kafka.Message, key string) string {
	for _, h := range message.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
