package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func New() (*Config, error) {
	var Config Config
	err := godotenv.Load(".env")
	if err != nil {
		logrus.Error("Error can't get the environment variables by file")
	}
	if err := env.Parse(&Config); err != nil {
		logrus.Fatalf("Error initializing: %s", err.Error())
		os.Exit(1)
	}
	return &Config, nil
}

type Config struct {
	APP
	DB
	Kafka
	Providers
	Refund
	Retry
	Gateway
}

type DB struct {
	HOST     string `env:"DB_HOST"`
	USER     string `env:"DB_USER"`
	PASSWORD string `env:"DB_PASSWORD"`
	NAME     string `env:"DB_NAME"`
	PORT     string `env:"DB_PORT"`
	SSLMODE  string `env:"DB_SSLMODE"`
}

type APP struct {
	PORT string `env:"APP_PORT" envDefault:"8080"`
}

type Kafka struct {
	Brokers            string        `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	PublishTopics      string        `env:"KAFKA_PUBLISH_TOPICS" envDefault:"notifications.dispatch,alerts.raised"`
	PublishMaxAttempts int           `env:"KAFKA_PUBLISH_MAX_ATTEMPTS" envDefault:"5"`
	PublishBaseDelay   time.Duration `env:"KAFKA_PUBLISH_BASE_DELAY" envDefault:"100ms"`
	PublishMaxDelay    time.Duration `env:"KAFKA_PUBLISH_MAX_DELAY" envDefault:"10s"`
	PublishJitter      bool          `env:"KAFKA_PUBLISH_JITTER" envDefault:"true"`
}

// Providers holds the webhook signing secrets, one per external gateway.
type Providers struct {
	CardWebhookSecret   string `env:"CARD_WEBHOOK_SECRET"`
	WalletWebhookSecret string `env:"WALLET_WEBHOOK_SECRET"`
	SMSAuthToken        string `env:"SMS_AUTH_TOKEN"`
	EmailWebhookSecret  string `env:"EMAIL_WEBHOOK_SECRET"`
}

type Refund struct {
	ProcessingFeePercentage float64 `env:"REFUND_PROCESSING_FEE_PERCENTAGE" envDefault:"3"`
}

type Retry struct {
	MaxRetries    int           `env:"EVENT_MAX_RETRIES" envDefault:"5"`
	SweepInterval time.Duration `env:"EVENT_RETRY_SWEEP_INTERVAL" envDefault:"30s"`
}

type Gateway struct {
	CardRefundURL   string        `env:"CARD_GATEWAY_REFUND_URL" envDefault:"https://api.card-gateway.example/v1/refunds"`
	CardAPIKey      string        `env:"CARD_GATEWAY_API_KEY"`
	WalletRefundURL string        `env:"WALLET_GATEWAY_REFUND_URL" envDefault:"https://api.wallet-gateway.example/v2/payments/refund"`
	WalletAPIKey    string        `env:"WALLET_GATEWAY_API_KEY"`
	CallTimeout     time.Duration `env:"GATEWAY_CALL_TIMEOUT" envDefault:"15s"`
}

type KafkaRetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

func (k Kafka) GetRetryConfig() KafkaRetryConfig {
	return KafkaRetryConfig{
		MaxAttempts: k.PublishMaxAttempts,
		BaseDelay:   k.PublishBaseDelay,
		MaxDelay:    k.PublishMaxDelay,
		Jitter:      k.PublishJitter,
	}
}
