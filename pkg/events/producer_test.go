package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	require.Error(t, err)
}

func TestProducerRejectsUnencodableEvent(t *testing.T) {
	p, err := NewProducer([]string{"127.0.0.1:1"})
	require.NoError(t, err)
	defer p.Close()

	err = p.Publish(context.Background(), TopicOrders, "k", map[string]any{"bad": make(chan int)})
	require.ErrorContains(t, err, "json.Marshal failed")
}

func TestNopDiscards(t *testing.T) {
	var p Publisher = Nop{}
	require.NoError(t, p.Publish(context.Background(), TopicProducts, "k", map[string]any{"type": "product_created"}))
	require.NoError(t, p.Close())
}

func TestNewProducerDoesNotWaitForBatches(t *testing.T) {
	p, err := NewProducer([]string{"127.0.0.1:1"})
	require.NoError(t, err)
	defer p.Close()

	require.Equal(t, batchTimeout, p.writer.BatchTimeout)
	require.Less(t, p.writer.BatchTimeout, 100*time.Millisecond)
}
