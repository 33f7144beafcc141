package stream

import (
	"context"
	"runtime"
	"sort"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// messageSource is the consumer surface the receiver reconciles against.
type messageSource interface {
	Prepare() error
	Receive() (amqp.Delivery, *amqp.Channel, bool)
	Ack(ch *amqp.Channel, tag uint64, multiple bool)
	Nack(ch *amqp.Channel, tag uint64, multiple bool)
	Dispose()
}

// pendingDelivery is one logical event awaiting settlement. All entries
// sharing the same (channel, tag) form a delivery group: the set of events
// decoded from one physical message, settled only as a whole.
type pendingDelivery struct {
	token   SequenceToken
	tag     uint64
	channel *amqp.Channel
}

// Receiver pulls batches of messages from one partition, decodes them into
// logical events and reconciles later per-event delivery reports into
// channel-scoped ack/nack calls.
//
// A receiver is invoked serially by its scheduler: FetchBatch and Finalize
// calls never overlap. That single-owner contract replaces internal
// synchronization.
type Receiver struct {
	source messageSource
	codec  Codec
	logger Logger

	// pending is ordered by token, appended at the tail and only ever
	// shortened by evicting a contiguous, fully settled prefix.
	pending []pendingDelivery

	// outcomes carries reported-but-unsettled results keyed by token, so a
	// partially reported group keeps its members' outcomes until the group
	// completes. A reported failure is final.
	outcomes map[SequenceToken]bool

	next SequenceToken
}

// NewReceiver creates a receiver draining the given source, using codec to
// turn physical message bodies into logical events.
func NewReceiver(source messageSource, codec Codec, opts ...receiverOption) *Receiver {
	options := &receiverOptions{
		logger: nopLogger{},
	}

	for _, opt := range opts {
		opt(options)
	}

	return &Receiver{
		source:   source,
		codec:    codec,
		logger:   options.logger,
		outcomes: make(map[SequenceToken]bool),
		next:     1,
	}
}

// Initialize eagerly establishes the transport resources the receiver polls
// through, including the partition queue declaration.
func (r *Receiver) Initialize(_ context.Context) error {
	return r.source.Prepare()
}

// FetchBatch polls the source until maxCount logical events have been
// produced (maxCount <= 0 means unlimited), the time budget has elapsed, or
// the transport reports empty. Every accepted event is appended to the
// pending set and returned in token order.
//
// A message that fails to decode is poison: it is logged, acked immediately
// so it cannot be redelivered forever, and contributes nothing to the batch.
func (r *Receiver) FetchBatch(ctx context.Context, maxCount int, budget time.Duration) []Event {
	var batch []Event

	deadline := time.Now().Add(budget)

	for maxCount <= 0 || len(batch) < maxCount {
		if ctx.Err() != nil {
			break
		}

		if !time.Now().Before(deadline) {
			break
		}

		msg, ch, ok := r.source.Receive()
		if !ok {
			break
		}

		batch = r.ingest(msg, ch, batch)

		// Yield before the next synchronous poll so a slow or busy partition
		// cannot starve sibling receivers sharing the executor.
		runtime.Gosched()
	}

	return batch
}

func (r *Receiver) ingest(msg amqp.Delivery, ch *amqp.Channel, batch []Event) []Event {
	events, err := r.codec.Decode(msg.Body, r.next)
	if err != nil {
		r.logger.Error().Err(err).Uint64("tag", msg.DeliveryTag).Msg("failed to decode message, discarding")
		r.source.Ack(ch, msg.DeliveryTag, false)

		return batch
	}

	if len(events) == 0 {
		r.source.Ack(ch, msg.DeliveryTag, false)

		return batch
	}

	for i := range events {
		events[i].Token = r.next
		r.pending = append(r.pending, pendingDelivery{
			token:   r.next,
			tag:     msg.DeliveryTag,
			channel: ch,
		})
		r.next++
	}

	return append(batch, events...)
}

// Finalize reconciles the caller's delivery reports into settlements. A
// delivery group is atomic: it is acked only once every member has been
// reported successful, across this and prior calls, and nacked as a whole
// when any member is missing from the reports or reported failed.
//
// Succeeded groups are acked with a single multiple=true ack per channel at
// the highest succeeded tag; failed groups are nacked individually first so
// the ranged ack cannot sweep them up.
func (r *Receiver) Finalize(results []Result) {
	if len(results) == 0 {
		return
	}

	newest := results[0].Token
	for _, res := range results {
		if res.Token > newest {
			newest = res.Token
		}

		if prev, seen := r.outcomes[res.Token]; !seen || prev {
			r.outcomes[res.Token] = res.Err == nil
		}
	}

	cutoff, ok := r.resolveCutoff(newest)
	if !ok {
		// Nothing is settleable this round. The outcomes recorded above are
		// kept for when the newest group finally completes.
		return
	}

	r.settleThrough(cutoff)
}

// resolveCutoff determines the highest token through which complete groups
// can be settled. When the group containing newest still has unreported
// members beyond newest, settlement falls back to the groups below it; if
// there are none, nothing can be settled this round.
func (r *Receiver) resolveCutoff(newest SequenceToken) (SequenceToken, bool) {
	if len(r.pending) == 0 {
		return 0, false
	}

	start, end, found := r.groupBounds(newest)
	if !found {
		return newest, true
	}

	for i := end; i > start; i-- {
		if r.pending[i].token <= newest {
			break
		}

		if _, seen := r.outcomes[r.pending[i].token]; !seen {
			if start == 0 {
				return 0, false
			}

			return r.pending[start-1].token, true
		}
	}

	// Every member beyond newest was reported in a prior call, so the whole
	// group is resolvable.
	return r.pending[end].token, true
}

// groupBounds locates the pending index range of the delivery group holding
// the given token.
func (r *Receiver) groupBounds(token SequenceToken) (start, end int, found bool) {
	idx := sort.Search(len(r.pending), func(i int) bool {
		return r.pending[i].token >= token
	})
	if idx == len(r.pending) || r.pending[idx].token != token {
		return 0, 0, false
	}

	start, end = idx, idx
	for start > 0 && sameGroup(r.pending[start-1], r.pending[idx]) {
		start--
	}
	for end+1 < len(r.pending) && sameGroup(r.pending[end+1], r.pending[idx]) {
		end++
	}

	return start, end, true
}

func sameGroup(a, b pendingDelivery) bool {
	return a.channel == b.channel && a.tag == b.tag
}

// settleThrough splits every group fully at or below cutoff into succeeded
// and failed, settles them, and evicts the processed prefix. Groups occupy a
// contiguous prefix by construction: tokens are assigned monotonically and
// groups are processed in token order.
func (r *Receiver) settleThrough(cutoff SequenceToken) {
	acks := make(map[*amqp.Channel]uint64)

	var nacks []pendingDelivery

	settled := 0
	for settled < len(r.pending) {
		start := settled
		end := start
		for end+1 < len(r.pending) && sameGroup(r.pending[end+1], r.pending[start]) {
			end++
		}

		if r.pending[end].token > cutoff {
			break
		}

		succeeded := true
		for i := start; i <= end; i++ {
			if delivered, seen := r.outcomes[r.pending[i].token]; !seen || !delivered {
				succeeded = false
				break
			}
		}

		group := r.pending[start]
		if succeeded {
			if highest, exists := acks[group.channel]; !exists || group.tag > highest {
				acks[group.channel] = group.tag
			}
		} else {
			nacks = append(nacks, group)
		}

		settled = end + 1
	}

	if settled == 0 {
		return
	}

	for _, group := range nacks {
		r.logger.Debug().Uint64("tag", group.tag).Msg("nacking failed delivery group")
		r.source.Nack(group.channel, group.tag, false)
	}

	for ch, tag := range acks {
		r.source.Ack(ch, tag, true)
	}

	for i := 0; i < settled; i++ {
		delete(r.outcomes, r.pending[i].token)
	}

	r.pending = r.pending[settled:]
	if len(r.pending) == 0 {
		r.pending = nil
	}
}

// PendingCount reports the number of logical events still awaiting
// settlement.
func (r *Receiver) PendingCount() int {
	return len(r.pending)
}

// Shutdown disposes the underlying consumer. Unsettled physical messages are
// intentionally left alone: the broker requeues anything unacknowledged once
// the channel goes away.
func (r *Receiver) Shutdown(_ context.Context) {
	r.source.Dispose()
}
