// Package events publishes pipeline lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"frontoffice-voice-console/internal/models"
	"frontoffice-voice-console/internal/observability/metrics"
	"frontoffice-voice-console/internal/schema"
)

// Publisher publishes pipeline events to separate Kafka topics for
// completed and errored runs. Every payload is schema-validated before it
// leaves the process. With Kafka disabled the publisher runs in log-only
// mode: events are validated and logged but never written.
type Publisher struct {
	writerCompleted *kafka.Writer
	writerErrored   *kafka.Writer
	validator       *schema.Validator
	principal       string
	topicCompleted  string
	topicErrored    string
	enabled         bool
	metrics         *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers        []string
	TopicCompleted string
	TopicErrored   string
	Principal      string
	Enabled        bool
}

// New creates a Kafka event publisher. A nil config, a disabled flag or
// an empty broker list all yield log-only mode.
func New(cfg *Config) (*Publisher, error) {
	validator, err := schema.New()
	if err != nil {
		return nil, err
	}
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{validator: validator, enabled: false, metrics: m}, nil
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			validator:      validator,
			principal:      cfg.Principal,
			topicCompleted: cfg.TopicCompleted,
			topicErrored:   cfg.TopicErrored,
			enabled:        false,
			metrics:        m,
		}, nil
	}

	// Custom dialer with longer timeouts for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	writerCompleted := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicCompleted,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	writerErrored := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.TopicErrored,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    transport,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicCompleted", cfg.TopicCompleted).
		Str("topicErrored", cfg.TopicErrored).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerCompleted: writerCompleted,
		writerErrored:   writerErrored,
		validator:       validator,
		principal:       cfg.Principal,
		topicCompleted:  cfg.TopicCompleted,
		topicErrored:    cfg.TopicErrored,
		enabled:         true,
		metrics:         m,
	}, nil
}

// PublishCompleted publishes a completed-run event, keyed by request id.
func (p *Publisher) PublishCompleted(ctx context.Context, event models.PipelineCompleted) error {
	return p.publish(ctx, p.writerCompleted, p.topicCompleted, event.EventType, event.RequestID, event)
}

// PublishErrored publishes an aborted-run event, keyed by request id.
func (p *Publisher) PublishErrored(ctx context.Context, event models.PipelineErrored) error {
	return p.publish(ctx, p.writerErrored, p.topicErrored, event.EventType, event.RequestID, event)
}

// publish marshals, validates and writes one event.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	if err := p.validator.Validate(eventType, payload); err != nil {
		log.Error().Err(err).Str("topic", topic).Str("key", key).Msg("Event failed schema validation")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerCompleted != nil {
		if e := p.writerCompleted.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing completed writer")
			err = e
		}
	}
	if p.writerErrored != nil {
		if e := p.writerErrored.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing errored writer")
			err = e
		}
	}
	return err
}
