package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublishChannel struct {
	mock.Mock
}

func (m *MockPublishChannel) publishWithConfirm(
	ctx context.Context, exchange, key string, msg amqp.Publishing,
) (confirmation, error) {
	args := m.Called(ctx, exchange, key, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(confirmation), args.Error(1)
}

type MockConfirmation struct {
	mock.Mock
}

func (m *MockConfirmation) WaitContext(ctx context.Context) (bool, error) {
	args := m.Called(ctx)

	return args.Bool(0), args.Error(1)
}

// blockingConfirmation never resolves; WaitContext returns only once the
// context expires.
type blockingConfirmation struct{}

func (blockingConfirmation) WaitContext(ctx context.Context) (bool, error) {
	<-ctx.Done()

	return false, ctx.Err()
}

func newTestProducer(opts ...producerOption) *Producer {
	return NewProducer(NewConnectionManager(Config{Scheme: "amqp", Host: "localhost", Port: 5672, Vhost: "/"}), opts...)
}

func TestProducer_SendOn_Confirmed(t *testing.T) {
	t.Parallel()

	confirm := &MockConfirmation{}
	confirm.On("WaitContext", mock.Anything).Return(true, nil)

	ch := &MockPublishChannel{}
	ch.On("publishWithConfirm", mock.Anything, "events", "partition.1", mock.AnythingOfType("amqp091.Publishing")).
		Return(confirm, nil)

	producer := newTestProducer()

	err := producer.sendOn(context.Background(), ch, "events", "partition.1", []byte("payload"))

	assert.NoError(t, err)
	ch.AssertExpectations(t)
	confirm.AssertExpectations(t)
}

func TestProducer_SendOn_PublishingProperties(t *testing.T) {
	t.Parallel()

	confirm := &MockConfirmation{}
	confirm.On("WaitContext", mock.Anything).Return(true, nil)

	var published amqp.Publishing

	ch := &MockPublishChannel{}
	ch.On("publishWithConfirm", mock.Anything, "events", "partition.1", mock.AnythingOfType("amqp091.Publishing")).
		Run(func(args mock.Arguments) {
			published = args.Get(3).(amqp.Publishing)
		}).
		Return(confirm, nil)

	producer := newTestProducer()

	err := producer.sendOn(context.Background(), ch, "events", "partition.1", []byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, uint8(amqp.Persistent), published.DeliveryMode)
	assert.NotEmpty(t, published.MessageId)
	assert.Equal(t, []byte("payload"), published.Body)
}

func TestProducer_SendOn_FreshMessageIDPerSend(t *testing.T) {
	t.Parallel()

	confirm := &MockConfirmation{}
	confirm.On("WaitContext", mock.Anything).Return(true, nil)

	var ids []string

	ch := &MockPublishChannel{}
	ch.On("publishWithConfirm", mock.Anything, "events", "partition.1", mock.AnythingOfType("amqp091.Publishing")).
		Run(func(args mock.Arguments) {
			ids = append(ids, args.Get(3).(amqp.Publishing).MessageId)
		}).
		Return(confirm, nil)

	producer := newTestProducer()

	require.NoError(t, producer.sendOn(context.Background(), ch, "events", "partition.1", nil))
	require.NoError(t, producer.sendOn(context.Background(), ch, "events", "partition.1", nil))

	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestProducer_SendOn_PublishFailure(t *testing.T) {
	t.Parallel()

	ch := &MockPublishChannel{}
	ch.On("publishWithConfirm", mock.Anything, "events", "partition.1", mock.AnythingOfType("amqp091.Publishing")).
		Return(nil, errors.New("channel gone"))

	producer := newTestProducer()

	err := producer.sendOn(context.Background(), ch, "events", "partition.1", []byte("payload"))

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "publish", transportErr.Op)
}

func TestProducer_SendOn_BrokerNack(t *testing.T) {
	t.Parallel()

	confirm := &MockConfirmation{}
	confirm.On("WaitContext", mock.Anything).Return(false, nil)

	ch := &MockPublishChannel{}
	ch.On("publishWithConfirm", mock.Anything, "events", "partition.1", mock.AnythingOfType("amqp091.Publishing")).
		Return(confirm, nil)

	producer := newTestProducer()

	err := producer.sendOn(context.Background(), ch, "events", "partition.1", []byte("payload"))

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestProducer_SendOn_ConfirmTimeout(t *testing.T) {
	t.Parallel()

	ch := &MockPublishChannel{}
	ch.On("publishWithConfirm", mock.Anything, "events", "partition.1", mock.AnythingOfType("amqp091.Publishing")).
		Return(blockingConfirmation{}, nil)

	producer := newTestProducer(WithConfirmTimeout(10 * time.Millisecond))

	start := time.Now()
	err := producer.sendOn(context.Background(), ch, "events", "partition.1", []byte("payload"))

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "confirm", transportErr.Op)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProducer_DefaultConfirmTimeout(t *testing.T) {
	t.Parallel()

	producer := newTestProducer()

	assert.Equal(t, 10*time.Second, producer.confirmTimeout)
}
