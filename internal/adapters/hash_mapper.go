package adapters

import (
	"fmt"
	"hash/fnv"

	"github.com/architeacher/svc-stream-bridge/internal/config"
)

// HashMapper assigns streams to a fixed set of partitions by hashing the
// stream identity. The same stream always lands on the same partition, which
// keeps per-stream ordering intact across the transport.
type HashMapper struct {
	partitions   int
	exchangeName string
	queuePrefix  string
}

func NewHashMapper(cfg config.QueueConfig, partitions int) *HashMapper {
	if partitions < 1 {
		partitions = 1
	}

	return &HashMapper{
		partitions:   partitions,
		exchangeName: cfg.ExchangeName,
		queuePrefix:  cfg.QueuePrefix,
	}
}

func (m *HashMapper) Partition(streamID string) string {
	h := fnv.New32a()
	h.Write([]byte(streamID))

	return fmt.Sprintf("%d", h.Sum32()%uint32(m.partitions))
}

func (m *HashMapper) QueueName(partition string) string {
	return fmt.Sprintf("%s-%s", m.queuePrefix, partition)
}

func (m *HashMapper) Route(partition string) (string, string) {
	return m.exchangeName, fmt.Sprintf("%s.%s", m.queuePrefix, partition)
}

// Partitions reports the number of partitions the mapper spreads streams
// over, in the order CreateReceiver expects them.
func (m *HashMapper) Partitions() []string {
	out := make([]string, 0, m.partitions)
	for i := 0; i < m.partitions; i++ {
		out = append(out, fmt.Sprintf("%d", i))
	}

	return out
}
