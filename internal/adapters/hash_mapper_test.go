package adapters

import (
	"strconv"
	"testing"

	"github.com/architeacher/svc-stream-bridge/internal/config"
	"github.com/stretchr/testify/assert"
)

func testQueueConfig() config.QueueConfig {
	return config.QueueConfig{
		ExchangeName: "stream-bridge",
		QueuePrefix:  "stream",
	}
}

func TestHashMapper_PartitionIsStable(t *testing.T) {
	t.Parallel()

	mapper := NewHashMapper(testQueueConfig(), 4)

	first := mapper.Partition("orders-17")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, mapper.Partition("orders-17"))
	}
}

func TestHashMapper_PartitionIsInRange(t *testing.T) {
	t.Parallel()

	mapper := NewHashMapper(testQueueConfig(), 4)

	for _, streamID := range []string{"a", "b", "orders-17", "billing-3", "inventory"} {
		partition, err := strconv.Atoi(mapper.Partition(streamID))
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, partition, 0)
		assert.Less(t, partition, 4)
	}
}

func TestHashMapper_QueueName(t *testing.T) {
	t.Parallel()

	mapper := NewHashMapper(testQueueConfig(), 4)

	assert.Equal(t, "stream-2", mapper.QueueName("2"))
}

func TestHashMapper_Route(t *testing.T) {
	t.Parallel()

	mapper := NewHashMapper(testQueueConfig(), 4)

	exchange, routingKey := mapper.Route("2")
	assert.Equal(t, "stream-bridge", exchange)
	assert.Equal(t, "stream.2", routingKey)
}

func TestHashMapper_Partitions(t *testing.T) {
	t.Parallel()

	mapper := NewHashMapper(testQueueConfig(), 3)

	assert.Equal(t, []string{"0", "1", "2"}, mapper.Partitions())
}

func TestHashMapper_ClampsPartitionCount(t *testing.T) {
	t.Parallel()

	mapper := NewHashMapper(testQueueConfig(), 0)

	assert.Equal(t, []string{"0"}, mapper.Partitions())
	assert.Equal(t, "0", mapper.Partition("anything"))
}
