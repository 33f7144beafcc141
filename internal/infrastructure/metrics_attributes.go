package infrastructure

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	partitionKey = "partition"
)

func PartitionAttr(partition string) attribute.KeyValue {
	return attribute.String(partitionKey, partition)
}
