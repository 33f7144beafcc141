package config

import (
	"time"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
)

type (
	ServiceConfig struct {
		AppConfig     AppConfig           `json:"app_config"`
		Logging       LoggingConfig       `json:"logging"`
		Telemetry     Telemetry           `json:"telemetry"`
		SecretStorage SecretStorageConfig `json:"secret_storage"`
		Queue         QueueConfig         `json:"queue"`
		Bridge        BridgeConfig        `json:"bridge"`
		Backoff       BackoffConfig       `json:"backoff"`
	}

	AppConfig struct {
		ServiceName    string `envconfig:"APP_SERVICE_NAME" default:"svc-stream-bridge" json:"service_name"`
		ServiceVersion string `envconfig:"APP_SERVICE_VERSION" default:"0.0.0" json:"service_version"`
		CommitSHA      string `envconfig:"APP_COMMIT_SHA" default:"unknown" json:"commit_sha"`
		Env            string `envconfig:"APP_ENVIRONMENT" default:"unknown" json:"env"`
	}

	LoggingConfig struct {
		Level  string `envconfig:"LOGGING_LEVEL" default:"info" json:"level"`
		Format string `envconfig:"LOGGING_FORMAT" default:"json" json:"format"`
	}

	Telemetry struct {
		OtelGRPCHost string `envconfig:"OTEL_HOST" json:"otel_grpc_host"`
		OtelGRPCPort string `envconfig:"OTEL_PORT" default:"4317" json:"otel_grpc_port"`

		Metrics Metrics `json:"metrics"`
	}

	Metrics struct {
		Enabled bool `envconfig:"METRICS_ENABLED" default:"false" json:"enabled"`
	}

	SecretStorageConfig struct {
		Enabled       bool          `envconfig:"VAULT_ENABLED" default:"false" json:"enabled"`
		Address       string        `envconfig:"VAULT_ADDRESS" default:"http://vault:8200" json:"address"`
		Token         string        `envconfig:"VAULT_TOKEN" default:"" json:"token,omitempty"`
		RoleID        string        `envconfig:"VAULT_ROLE_ID" default:"" json:"role_id,omitempty"`
		SecretID      string        `envconfig:"VAULT_SECRET_ID" default:"" json:"secret_id,omitempty"`
		AuthMethod    string        `envconfig:"VAULT_AUTH_METHOD" default:"token" json:"auth_method"`
		MountPath     string        `envconfig:"VAULT_MOUNT_PATH" default:"svc-stream-bridge" json:"mount_path"`
		Timeout       time.Duration `envconfig:"VAULT_TIMEOUT" default:"30s" json:"timeout"`
		MaxRetries    int           `envconfig:"VAULT_MAX_RETRIES" default:"3" json:"max_retries"`
		TLSSkipVerify bool          `envconfig:"VAULT_TLS_SKIP_VERIFY" default:"false" json:"tls_skip_verify"`
		PollInterval  time.Duration `envconfig:"VAULT_POLL_INTERVAL" default:"24h" json:"poll_interval"`
	}

	QueueConfig struct {
		Host         string `envconfig:"RABBITMQ_HOST" default:"rabbitmq" json:"host"`
		Port         int    `envconfig:"RABBITMQ_PORT" default:"5672" json:"port"`
		Username     string `envconfig:"RABBITMQ_USERNAME" default:"admin" json:"username"`
		Password     string `envconfig:"RABBITMQ_PASSWORD" default:"" json:"password,omitempty"`
		VirtualHost  string `envconfig:"RABBITMQ_VIRTUAL_HOST" default:"/" json:"virtual_host"`
		ExchangeName string `envconfig:"RABBITMQ_EXCHANGE_NAME" default:"stream-bridge" json:"exchange_name"`
		QueuePrefix  string `envconfig:"RABBITMQ_QUEUE_PREFIX" default:"stream" json:"queue_prefix"`
	}

	BridgeConfig struct {
		// Partitions is the number of partition queues served concurrently,
		// each by its own receiver with a private connection.
		Partitions int `envconfig:"BRIDGE_PARTITIONS" default:"4" json:"partitions"`

		// BatchSize caps the logical events per fetch; 0 means unlimited.
		BatchSize int `envconfig:"BRIDGE_BATCH_SIZE" default:"128" json:"batch_size"`

		// FetchBudget bounds how long one fetch keeps polling the transport.
		FetchBudget time.Duration `envconfig:"BRIDGE_FETCH_BUDGET" default:"200ms" json:"fetch_budget"`

		// ConfirmTimeout bounds the wait for a publisher confirmation.
		ConfirmTimeout time.Duration `envconfig:"BRIDGE_CONFIRM_TIMEOUT" default:"10s" json:"confirm_timeout"`

		InitTimeout     time.Duration `envconfig:"BRIDGE_INIT_TIMEOUT" default:"30s" json:"init_timeout"`
		ShutdownTimeout time.Duration `envconfig:"BRIDGE_SHUTDOWN_TIMEOUT" default:"15s" json:"shutdown_timeout"`
	}

	BackoffConfig struct {
		BaseDelay  time.Duration `envconfig:"BACKOFF_BASE_DELAY" default:"100ms" json:"base_delay"`
		MaxDelay   time.Duration `envconfig:"BACKOFF_MAX_DELAY" default:"5s" json:"max_delay"`
		Multiplier float64       `envconfig:"BACKOFF_MULTIPLIER" default:"1.6" json:"multiplier"`
		Jitter     float64       `envconfig:"BACKOFF_JITTER" default:"0.2" json:"jitter"`
	}
)
