package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/farm-yield-service/internal/config"
	"github.com/couchcryptid/farm-yield-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// PredictionEvent is the payload published for every served yield prediction.
type PredictionEvent struct {
	Input       domain.FarmInput       `json:"input"`
	Prediction  domain.YieldPrediction `json:"prediction"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// AlertsEvent is the payload published for every risk classification.
type AlertsEvent struct {
	Crop        domain.Crop        `json:"crop"`
	Alerts      []domain.RiskAlert `json:"alerts"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes engine results to Kafka topics.
// It implements engine.Publisher.
type Writer struct {
	writer           messageWriter
	predictionsTopic string
	alertsTopic      string
	logger           *slog.Logger
	now              func() time.Time
}

// NewWriter creates a Kafka producer for the configured prediction and alert topics.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return newWriter(w, cfg.KafkaPredictionsTopic, cfg.KafkaAlertsTopic, logger)
}

func newWriter(w messageWriter, predictionsTopic, alertsTopic string, logger *slog.Logger) *Writer {
	return &Writer{
		writer:           w,
		predictionsTopic: predictionsTopic,
		alertsTopic:      alertsTopic,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// PublishPrediction writes one prediction event keyed by crop.
func (w *Writer) PublishPrediction(ctx context.Context, in domain.FarmInput, p domain.YieldPrediction) error {
	msg, err := serializePrediction(w.predictionsTopic, PredictionEvent{Input: in, Prediction: p, GeneratedAt: w.now()})
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	w.logger.Debug("prediction published", "topic", w.predictionsTopic, "crop", in.Crop)
	return nil
}

// PublishAlerts writes one message holding the full alert list for a classification.
func (w *Writer) PublishAlerts(ctx context.Context, crop domain.Crop, alerts []domain.RiskAlert) error {
	msg, err := serializeAlerts(w.alertsTopic, AlertsEvent{Crop: crop, Alerts: alerts, GeneratedAt: w.now()})
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	w.logger.Debug("alerts published", "topic", w.alertsTopic, "crop", crop, "alerts", len(alerts))
	return nil
}

// Close flushes pending messages and releases the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializePrediction marshals a PredictionEvent into a Kafka message.
func serializePrediction(topic string, event PredictionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction event: %w", err)
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(event.Input.Crop),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "crop", Value: []byte(event.Input.Crop)},
			{Key: "district", Value: []byte(event.Input.District)},
			{Key: "generated_at", Value: []byte(event.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}

// serializeAlerts marshals an AlertsEvent into a Kafka message. The highest
// severity is copied into a header so consumers can filter without decoding.
func serializeAlerts(topic string, event AlertsEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alerts event: %w", err)
	}
	return kafkago.Message{
		Topic: topic,
		Key:   []byte(event.Crop),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "crop", Value: []byte(event.Crop)},
			{Key: "max_severity", Value: []byte(maxSeverity(event.Alerts))},
			{Key: "generated_at", Value: []byte(event.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}

func maxSeverity(alerts []domain.RiskAlert) domain.Severity {
	rank := map[domain.Severity]int{domain.SeverityLow: 1, domain.SeverityMedium: 2, domain.SeverityHigh: 3}
	var top domain.Severity
	for _, a := range alerts {
		if rank[a.Severity] > rank[top] {
			top = a.Severity
		}
	}
	return top
}
