//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/farm-yield-service/internal/adapter/kafka"
	"github.com/couchcryptid/farm-yield-service/internal/adapter/sqlite"
	"github.com/couchcryptid/farm-yield-service/internal/config"
	"github.com/couchcryptid/farm-yield-service/internal/domain"
	"github.com/couchcryptid/farm-yield-service/internal/engine"
	"github.com/couchcryptid/farm-yield-service/internal/observability"
	"github.com/couchcryptid/farm-yield-service/internal/records"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testPredictionsTopic = "test-yield-predictions"
	testAlertsTopic      = "test-risk-alerts"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("farm-yield-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readOne reads the first message of a topic.
func readOne(ctx context.Context, t *testing.T, broker, topic string) kafkago.Message {
	t.Helper()
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	t.Cleanup(func() { _ = reader.Close() })

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err, "read from %s", topic)
	return msg
}

func headers(msg kafkago.Message) map[string]string {
	out := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		out[h.Key] = string(h.Value)
	}
	return out
}

// TestEnginePublishesToKafka runs the engine with a SQLite record store and a
// real Kafka writer, then reads both published events back from the broker.
func TestEnginePublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testPredictionsTopic)
	createTopic(t, broker, testAlertsTopic)

	cfg := &config.Config{
		KafkaEnabled:          true,
		KafkaBrokers:          []string{broker},
		KafkaPredictionsTopic: testPredictionsTopic,
		KafkaAlertsTopic:      testAlertsTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	db, err := sqlite.Open(t.TempDir() + "/records.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	metrics := observability.NewMetricsForTesting()
	store := records.New(db, discardLogger(), metrics)
	require.NoError(t, store.Init(ctx))

	rng := domain.NewSeededRandom(1)
	eng := engine.New(
		domain.NewEstimator(domain.WithRandom(rng)),
		domain.NewWeatherSource(rng),
		store, discardLogger(), metrics,
		engine.WithPublisher(writer),
	)
	require.NoError(t, eng.CheckReadiness(ctx))

	in := domain.FarmInput{
		Crop: domain.CropRice, District: "Thanjavur", SoilType: domain.SoilAlluvial,
		Season: domain.SeasonKharif, AreaHectares: 1, RainfallMm: 1000, FertilizerKg: 100,
	}
	pred, err := eng.EstimateYield(ctx, in)
	require.NoError(t, err)

	forecast := []domain.WeatherDay{
		{Day: "Today", TempC: 37, Condition: domain.ConditionRainy, RainProbabilityPct: 80},
		{Day: "Mon", TempC: 30, Condition: domain.ConditionRainy, RainProbabilityPct: 80},
		{Day: "Tue", TempC: 29, Condition: domain.ConditionRainy, RainProbabilityPct: 80},
		{Day: "Wed", TempC: 28, Condition: domain.ConditionRainy, RainProbabilityPct: 80},
		{Day: "Thu", TempC: 27, Condition: domain.ConditionSunny, RainProbabilityPct: 10},
		{Day: "Fri", TempC: 28, Condition: domain.ConditionCloudy, RainProbabilityPct: 10},
		{Day: "Sat", TempC: 29, Condition: domain.ConditionSunny, RainProbabilityPct: 10},
	}
	alerts, err := eng.ClassifyRisk(ctx, forecast, domain.CropRice)
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	predMsg := readOne(ctx, t, broker, testPredictionsTopic)
	assert.Equal(t, "Rice", string(predMsg.Key))
	assert.Equal(t, "Thanjavur", headers(predMsg)["district"])
	var predEvent kafka.PredictionEvent
	require.NoError(t, json.Unmarshal(predMsg.Value, &predEvent))
	assert.Equal(t, in, predEvent.Input)
	assert.Equal(t, pred, predEvent.Prediction)

	alertMsg := readOne(ctx, t, broker, testAlertsTopic)
	assert.Equal(t, "High", headers(alertMsg)["max_severity"])
	var alertEvent kafka.AlertsEvent
	require.NoError(t, json.Unmarshal(alertMsg.Value, &alertEvent))
	assert.Equal(t, alerts, alertEvent.Alerts)

	// Records persist through the same engine.
	saved, err := eng.AppendRecord(ctx, domain.FarmRecord{Crop: "Rice", YieldKgPerHa: pred.YieldKgPerHa, Season: "Kharif"})
	require.NoError(t, err)
	got, err := eng.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, saved, got[0])
}
