package publish

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjstillabower/overnight-forecast-service/internal/models"
)

func testBatch() models.ForecastBatch {
	return models.ForecastBatch{
		ID:         "b-1",
		Source:     models.SourceUpload,
		ComputedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Rows: []models.ForecastRow{
			{
				Observation: models.Observation{
					MiddayTemperature: 22.4, MiddayDewPoint: 10.9, WindSpeed: 14.56, CloudCover: 3.9,
					Passthrough: []models.Column{{Name: "Location", Value: "A"}},
				},
				OvernightMinTemperature: 12,
			},
			{
				Observation:             models.Observation{MiddayTemperature: 18.6, MiddayDewPoint: 12.65, WindSpeed: 3.4, CloudCover: 6},
				OvernightMinTemperature: 11,
			},
		},
	}
}

func TestSerializeToMessage(t *testing.T) {
	batch := testBatch()

	msg, err := serializeToMessage(batch, 0, batch.Rows[0])
	require.NoError(t, err)

	assert.Equal(t, []byte("b-1"), msg.Key)
	assert.JSONEq(t, `{
		"forecastId": "b-1",
		"index": 0,
		"middayTemperature": 22.4,
		"middayDewPoint": 10.9,
		"windSpeed": 14.56,
		"cloudCover": 3.9,
		"passthrough": [{"name": "Location", "value": "A"}],
		"overnightMinTemperature": 12
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "source", msg.Headers[0].Key)
	assert.Equal(t, []byte("upload"), msg.Headers[0].Value)
	assert.Equal(t, "computed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-06-01T12:00:00Z"), msg.Headers[1].Value)
}

func TestBatchMessages_OnePerRowSameKey(t *testing.T) {
	msgs, err := batchMessages(testBatch())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Equal(t, []byte("b-1"), m.Key)
	}
	assert.Contains(t, string(msgs[1].Value), `"index":1`)
}

func TestBatchMessages_UnencodableRow(t *testing.T) {
	batch := testBatch()
	batch.Rows[1].OvernightMinTemperature = math.NaN()

	_, err := batchMessages(batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestPublish_EmptyBatchIsNoop(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "forecasts", time.Second)
	defer p.Close()

	assert.NoError(t, p.Publish(context.Background(), models.ForecastBatch{ID: "empty"}))
}
