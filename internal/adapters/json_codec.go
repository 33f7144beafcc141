package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/architeacher/svc-stream-bridge/pkg/stream"
)

type (
	// JSONCodec frames a batch of logical events as one JSON envelope per
	// physical message.
	JSONCodec struct{}

	envelope struct {
		Partition string          `json:"partition"`
		Events    []envelopeEvent `json:"events"`
	}

	envelopeEvent struct {
		Stream  string `json:"stream"`
		Payload []byte `json:"payload"`
	}
)

func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

func (c *JSONCodec) Encode(partition string, events []stream.Event) ([]byte, error) {
	env := envelope{
		Partition: partition,
		Events:    make([]envelopeEvent, 0, len(events)),
	}

	for _, ev := range events {
		env.Events = append(env.Events, envelopeEvent{
			Stream:  ev.Stream,
			Payload: ev.Payload,
		})
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event envelope: %w", err)
	}

	return body, nil
}

func (c *JSONCodec) Decode(body []byte, first stream.SequenceToken) ([]stream.Event, error) {
	var env envelope

	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode event envelope: %w", err)
	}

	events := make([]stream.Event, 0, len(env.Events))
	for i, ev := range env.Events {
		events = append(events, stream.Event{
			Token:   first + stream.SequenceToken(i),
			Stream:  ev.Stream,
			Payload: ev.Payload,
		})
	}

	return events, nil
}
