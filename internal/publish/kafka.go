// Package publish ships completed forecast batches to Kafka, one message per
// row keyed by batch id so a batch lands on a single partition in order.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kjstillabower/overnight-forecast-service/internal/models"
)

// RowMessage is the JSON value of each published message.
type RowMessage struct {
	ForecastID string `json:"forecastId"`
	Index      int    `json:"index"`
	models.ForecastRow
}

// KafkaPublisher produces forecast rows to a Kafka topic.
type KafkaPublisher struct {
	writer *kafkago.Writer
}

// NewKafkaPublisher creates a producer for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, writeTimeout time.Duration) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: writeTimeout,
	}
	return &KafkaPublisher{writer: w}
}

// Publish writes every row of batch in a single WriteMessages call.
func (p *KafkaPublisher) Publish(ctx context.Context, batch models.ForecastBatch) error {
	msgs, err := batchMessages(batch)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func batchMessages(batch models.ForecastBatch) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, len(batch.Rows))
	for i, row := range batch.Rows {
		msg, err := serializeToMessage(batch, i, row)
		if err != nil {
			return nil, err
		}
		msgs[i] = msg
	}
	return msgs, nil
}

// serializeToMessage marshals one forecast row into a Kafka message.
func serializeToMessage(batch models.ForecastBatch, index int, row models.ForecastRow) (kafkago.Message, error) {
	data, err := json.Marshal(RowMessage{ForecastID: batch.ID, Index: index, ForecastRow: row})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize forecast row %d: %w", index, err)
	}
	return kafkago.Message{
		Key:   []byte(batch.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(batch.Source)},
			{Key: "computed_at", Value: []byte(batch.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}
