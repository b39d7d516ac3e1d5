package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HttpPort uint16 `envconfig:"TESTORDERS_HTTP_SERVER_PORT" default:"8080" required:"true"`

	// Subjects listed here bypass every access check.
	SiteAdminSubjects []string `envconfig:"TESTORDERS_SITE_ADMIN_SUBJECTS"`
	AccessCacheSize   int      `envconfig:"TESTORDERS_ACCESS_CACHE_SIZE" default:"1024"`

	DefaultPageSize int `envconfig:"TESTORDERS_DEFAULT_PAGE_SIZE" default:"20"`
	MaxPageSize     int `envconfig:"TESTORDERS_MAX_PAGE_SIZE" default:"1000"`

	Delivery  DeliveryConfig
	Reporting ReportingConfig
}

type DeliveryConfig struct {
	BaseUrl      string        `envconfig:"TESTORDERS_DELIVERY_BASE_URL"`
	ClientId     string        `envconfig:"TESTORDERS_DELIVERY_CLIENT_ID"`
	ClientSecret string        `envconfig:"TESTORDERS_DELIVERY_CLIENT_SECRET"`
	TokenUrl     string        `envconfig:"TESTORDERS_DELIVERY_TOKEN_URL"`
	Timeout      time.Duration `envconfig:"TESTORDERS_DELIVERY_TIMEOUT" default:"10s"`
}

type ReportingConfig struct {
	// Sink is one of log, kafka or sqs.
	Sink         string   `envconfig:"TESTORDERS_REPORTING_SINK" default:"log"`
	KafkaBrokers []string `envconfig:"TESTORDERS_KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"TESTORDERS_KAFKA_TOPIC" default:"test-results"`
	SQSQueueName string   `envconfig:"TESTORDERS_SQS_QUEUE_NAME" default:"test-results"`
	SQSRegion    string   `envconfig:"TESTORDERS_SQS_REGION" default:"us-east-1"`
	SQSEndpoint  string   `envconfig:"TESTORDERS_SQS_ENDPOINT"`
}

func New() *Config {
	return &Config{}
}

func (c *Config) LoadFromEnv() error {
	return envconfig.Process("", c)
}

// PageSize returns the page size used for a listing, applying the default and the cap.
func (c *Config) PageSize(requested int) int {
	if requested == 0 {
		requested = c.DefaultPageSize
	}
	if c.MaxPageSize > 0 && requested > c.MaxPageSize {
		requested = c.MaxPageSize
	}
	return requested
}

func NewConfig() (*Config, error) {
	cfg := New()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
