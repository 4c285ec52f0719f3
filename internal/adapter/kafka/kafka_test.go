package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sismika/psgc-geo-etl/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("key-1"),
		Value:     []byte(`{"id":"eq-1"}`),
		Topic:     "raw-earthquakes",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("phivolcs")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("key-1"), raw.Key)
	assert.JSONEq(t, `{"id":"eq-1"}`, string(raw.Value))
	assert.Equal(t, "raw-earthquakes", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "phivolcs", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestToMessage(t *testing.T) {
	event := domain.OutputEvent{
		Key:   []byte("eq-1"),
		Value: []byte(`{"id":"eq-1","title":"11km South of Pasay City, NCR, Philippines"}`),
		Headers: map[string]string{
			"title_source": "nearest",
			"processed_at": "2024-04-26T08:00:00Z",
		},
	}

	msg := toMessage(event)

	assert.Equal(t, []byte("eq-1"), msg.Key)
	assert.Contains(t, string(msg.Value), "Pasay City")
	assert.Equal(t, []kafkago.Header{
		{Key: "processed_at", Value: []byte("2024-04-26T08:00:00Z")},
		{Key: "title_source", Value: []byte("nearest")},
	}, msg.Headers)
}

func TestToMessage_NoHeaders(t *testing.T) {
	msg := toMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("{}")})

	assert.Empty(t, msg.Headers)
}
