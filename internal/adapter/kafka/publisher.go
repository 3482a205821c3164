package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/shipping-estimate-service/internal/config"
	"github.com/couchcryptid/shipping-estimate-service/internal/domain"
	"github.com/couchcryptid/shipping-estimate-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// EventTypeEstimateComputed is the event_type header on every published estimate.
const EventTypeEstimateComputed = "estimate.computed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher emits computed estimates to a Kafka topic.
// It implements estimate.Publisher.
type Publisher struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewPublisher creates an async Kafka producer for the configured estimates
// topic. Delivery results are reported through metrics, never to the caller.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	p := &Publisher{logger: logger, metrics: metrics, now: time.Now}
	p.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaEstimatesTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion:   p.onCompletion,
	}
	return p
}

// Publish serializes the estimate and queues it for delivery. It never blocks
// the request path on broker round trips.
func (p *Publisher) Publish(ctx context.Context, est domain.ShippingEstimate) {
	msg, err := serializeToMessage(est, p.now())
	if err != nil {
		p.logger.Error("serialize estimate event", "estimate_id", est.ID, "error", err)
		p.metrics.EventsPublished.WithLabelValues("error").Inc()
		return
	}
	if err := p.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		p.logger.Warn("queue estimate event", "estimate_id", est.ID, "error", err)
		p.metrics.EventsPublished.WithLabelValues("error").Inc()
	}
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) onCompletion(msgs []kafkago.Message, err error) {
	if err != nil {
		p.logger.Warn("estimate events not delivered", "count", len(msgs), "error", err)
		p.metrics.EventsPublished.WithLabelValues("error").Add(float64(len(msgs)))
		return
	}
	p.metrics.EventsPublished.WithLabelValues("success").Add(float64(len(msgs)))
}

type estimateEvent struct {
	ID            string                   `json:"id"`
	Origin        string                   `json:"origin"`
	Destination   string                   `json:"destination"`
	Tier          domain.Tier              `json:"tier"`
	DistanceMiles float64                  `json:"distance_miles"`
	PeakSeason    bool                     `json:"peak_season"`
	PeakType      *string                  `json:"peak_type"`
	ShipDate      string                   `json:"ship_date"`
	Estimates     []domain.ServiceEstimate `json:"estimates"`
}

// serializeToMessage marshals a ShippingEstimate into a Kafka message keyed by
// estimate ID.
func serializeToMessage(est domain.ShippingEstimate, computedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(estimateEvent{
		ID:            est.ID,
		Origin:        string(est.Origin),
		Destination:   string(est.Destination),
		Tier:          est.Tier,
		DistanceMiles: est.DistanceMiles,
		PeakSeason:    est.PeakSeason,
		PeakType:      est.PeakType,
		ShipDate:      est.ShipDate.Format(time.DateOnly),
		Estimates:     est.Estimates,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize estimate %s: %w", est.ID, err)
	}
	return kafkago.Message{
		Key:   []byte(est.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(EventTypeEstimateComputed)},
			{Key: "tier", Value: []byte(est.Tier)},
			{Key: "computed_at", Value: []byte(computedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
