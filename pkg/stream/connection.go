package stream

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ChannelHook runs exactly once per newly created channel, before the
// channel is handed out, so dependents can re-declare session-scoped
// resources such as queues or enter confirm mode.
type ChannelHook func(ch *amqp.Channel) error

// ConnectionManager lazily establishes a connection and a single channel on
// it, and re-establishes both transparently whenever either is found closed.
//
// A manager, and the channel it owns, belongs to exactly one execution
// context for its entire lifetime. It is deliberately unsynchronized: the
// underlying channel forbids concurrent use at the protocol level, so
// sharing a manager between goroutines is a bug a mutex could not fix.
type ConnectionManager struct {
	cfg    Config
	logger Logger
	dial   func(url string) (*amqp.Connection, error)
	hook   ChannelHook

	conn     *amqp.Connection
	ch       *amqp.Channel
	disposed bool
}

// NewConnectionManager creates a manager for the given broker. No connection
// is established until the first Channel call.
func NewConnectionManager(cfg Config, opts ...managerOption) *ConnectionManager {
	options := &managerOptions{
		logger: nopLogger{},
	}

	for _, opt := range opts {
		opt(options)
	}

	return &ConnectionManager{
		cfg:    cfg,
		logger: options.logger,
		dial:   amqp.Dial,
	}
}

// OnChannel registers the hook invoked once per new channel. It replaces any
// previously registered hook and must be set before the first Channel call.
func (m *ConnectionManager) OnChannel(hook ChannelHook) {
	m.hook = hook
}

// Channel returns a currently open channel, dialing a new connection and
// opening a new channel as needed. The check-and-recreate happens
// synchronously on access; there is no background retry loop.
func (m *ConnectionManager) Channel() (*amqp.Channel, error) {
	if m.disposed {
		return nil, ErrDisposed
	}

	if m.ch != nil && !m.ch.IsClosed() && m.conn != nil && !m.conn.IsClosed() {
		return m.ch, nil
	}

	if m.conn == nil || m.conn.IsClosed() {
		conn, err := m.dial(getURL(m.cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to broker: %w", err)
		}

		m.conn = conn
		m.watchConnection(conn)

		m.logger.Info().Str("host", m.cfg.Host).Msg("connected to broker")
	}

	ch, err := m.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if m.hook != nil {
		if hookErr := m.hook(ch); hookErr != nil {
			if closeErr := ch.Close(); closeErr != nil {
				m.logger.Error().Err(closeErr).Msg("failed to close channel after hook failure")
			}

			return nil, fmt.Errorf("channel hook failed: %w", hookErr)
		}
	}

	m.ch = ch

	return ch, nil
}

// watchConnection drains connection-level notifications. Shutdown, blocked
// and unblocked events are logged and otherwise ignored; they are not
// propagated as faults.
func (m *ConnectionManager) watchConnection(conn *amqp.Connection) {
	closes := conn.NotifyClose(make(chan *amqp.Error, 1))
	blockings := conn.NotifyBlocked(make(chan amqp.Blocking, 1))

	go func() {
		for closeErr := range closes {
			m.logger.Error().Err(closeErr).Msg("connection shut down by transport")
		}
	}()

	go func() {
		for blocking := range blockings {
			if blocking.Active {
				m.logger.Info().Str("reason", blocking.Reason).Msg("connection blocked by broker")
				continue
			}

			m.logger.Info().Msg("connection unblocked by broker")
		}
	}()
}

// Dispose closes the channel and then the connection, best effort. Failures
// are logged and swallowed. Dispose is idempotent.
func (m *ConnectionManager) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true

	if m.ch != nil && !m.ch.IsClosed() {
		if err := m.ch.Close(); err != nil {
			m.logger.Error().Err(err).Msg("failed to close channel")
		}
	}

	if m.conn != nil && !m.conn.IsClosed() {
		if err := m.conn.Close(); err != nil {
			m.logger.Error().Err(err).Msg("failed to close connection")
		}
	}
}
