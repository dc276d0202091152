package mykafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestPublishEvent_Unencodable(t *testing.T) {
	p, err := NewProducer([]string{"127.0.0.1:9092"})
	require.NoError(t, err)
	defer p.Close()

	err = p.PublishEvent(context.Background(), "order_events", "k", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json.Marshal")
}
