package stream

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// defaultScheme is used when a Config does not name one. Partition queues
// carry plain AMQP traffic unless the caller opts into TLS with "amqps".
const defaultScheme = "amqp"

// Config is used to establish a connection with a RabbitMQ server.
type Config struct {
	Scheme   string
	Username string
	Password string
	Host     string
	Port     int
	Vhost    string
}

func getURL(cfg Config) string {
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = defaultScheme
	}

	uri := amqp.URI{
		Scheme:   scheme,
		Username: cfg.Username,
		Password: cfg.Password,
		Host:     cfg.Host,
		Port:     cfg.Port,
		Vhost:    cfg.Vhost,
	}

	return uri.String()
}
