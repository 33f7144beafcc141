package stream

// SequenceToken is a receiver-assigned, strictly increasing identifier for
// one decoded logical event. No two events of one receiver ever compare
// equal, and tokens are never reused.
type SequenceToken int64

// Event is one logical event flowing through the adapter. On the receive
// side Token is assigned at decode time; all events decoded from the same
// physical message carry consecutive tokens.
type Event struct {
	Token   SequenceToken
	Stream  string
	Payload []byte
}

// Result reports the delivery outcome of one previously fetched event.
// A nil Err marks the event as processed successfully.
type Result struct {
	Token SequenceToken
	Err   error
}

// Delivered builds a successful outcome for ev.
func Delivered(ev Event) Result {
	return Result{Token: ev.Token}
}

// Failed builds a failed outcome for ev. The whole physical message the
// event was decoded from will be redelivered.
func Failed(ev Event, err error) Result {
	return Result{Token: ev.Token, Err: err}
}

// Codec translates between logical events and the opaque payload of one
// physical message.
type Codec interface {
	// Encode serializes a batch of events bound for one partition.
	Encode(partition string, events []Event) ([]byte, error)

	// Decode parses one physical message body into its logical events.
	// The first event is assigned the given token, subsequent events the
	// tokens immediately following it.
	Decode(body []byte, first SequenceToken) ([]Event, error)
}

// PartitionMapper resolves stream identities to partitions and partitions to
// transport addresses.
type PartitionMapper interface {
	// Partition selects the partition an outgoing event of the given stream
	// belongs to.
	Partition(streamID string) string

	// QueueName resolves the durable queue backing a partition.
	QueueName(partition string) string

	// Route resolves the exchange and routing key publishes to a partition
	// are addressed with.
	Route(partition string) (exchange, routingKey string)
}
