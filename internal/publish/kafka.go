package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits watch-point estimates as JSON keyed by watch point name.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
}

var _ temperature.Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher returns nil when no brokers are configured.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	if len(brokers) == 0 {
		log.Println("INFO: kafka: no brokers configured; estimate publishing disabled")
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaPublisher(w, topic)
}

func newKafkaPublisher(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic}
}

// estimateMessage is the wire form of a published estimate. Field names match
// the /temperatura response.
type estimateMessage struct {
	ID           string    `json:"id"`
	WatchPoint   string    `json:"watch_point"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	RadiusMeters int       `json:"radio"`
	Timestamp    time.Time `json:"timestamp"`
	Outcome      string    `json:"outcome"`
	MinC         *float64  `json:"temperatura_minima"`
	MaxC         *float64  `json:"temperatura_maxima"`
	AvgC         *float64  `json:"temperatura_promedio"`
	Confidence   float64   `json:"confianza"`
	SampleCount  int       `json:"num_puntos_usados"`
	Message      string    `json:"mensaje"`
}

func toMessage(e temperature.PointEstimate) estimateMessage {
	m := estimateMessage{
		ID:           e.ID,
		WatchPoint:   e.WatchPoint,
		Lat:          e.Point.Lat,
		Lon:          e.Point.Lon,
		RadiusMeters: e.RadiusMeters,
		Timestamp:    e.Timestamp,
		Outcome:      string(e.Outcome.Kind),
		Confidence:   e.Outcome.Confidence,
		SampleCount:  e.Outcome.SampleCount,
		Message:      e.Outcome.Message(),
	}
	if e.Outcome.OK() {
		minC, maxC, avgC := e.Outcome.MinC, e.Outcome.MaxC, e.Outcome.AvgC
		m.MinC, m.MaxC, m.AvgC = &minC, &maxC, &avgC
	}
	return m
}

// Publish writes one message. A nil publisher is a no-op.
func (p *KafkaPublisher) Publish(ctx context.Context, e temperature.PointEstimate) error {
	if p == nil {
		return nil
	}
	b, err := json.Marshal(toMessage(e))
	if err != nil {
		return fmt.Errorf("marshal estimate %s: %w", e.ID, err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.WatchPoint), Value: b}); err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
