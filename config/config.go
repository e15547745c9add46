package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	TicketBox TicketBoxConfig `yaml:"ticketbox"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	TicketIssuedTopicName string `yaml:"ticket_issued_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TicketBoxConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	// ReadOnly opens the store with read-only transactions and forbids
	// schema creation and seeding. Applied once at startup.
	ReadOnly   bool `yaml:"read_only"`
	InitSchema bool `yaml:"init_schema"`
	SeedSample bool `yaml:"seed_sample"`

	// Unset means 30 lookups per minute per client; an explicit 0 disables the limiter.
	LookupRateLimitPerMinute *int `yaml:"lookup_rate_limit_per_minute"`
	// Set only when a proxy in front of the API overwrites X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`

	IngestConsumerGroup string `yaml:"ingest_consumer_group"`
	IngestHTTPAddr      string `yaml:"ingest_http_addr"`

	DBConnectWaitSeconds int `yaml:"db_connect_wait_seconds"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}

// PostgresConnString builds a pgx connection string, defaulting sslmode to disable.
func (c *Config) PostgresConnString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.Username, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.DBName, sslMode)
}

// RedisAddr returns "" when no redis host is configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// LookupRateLimit returns the per-client lookups per minute; 0 means unlimited.
func (c *Config) LookupRateLimit() int {
	if c.TicketBox.LookupRateLimitPerMinute == nil {
		return 30
	}
	if n := *c.TicketBox.LookupRateLimitPerMinute; n > 0 {
		return n
	}
	return 0
}

func (c *Config) KafkaBrokers() []string {
	return []string{fmt.Sprintf("%s:%d", c.Kafka.Host, c.Kafka.Port)}
}

func (c *Config) TicketIssuedTopic() string {
	if c.Kafka.TicketIssuedTopicName == "" {
		return "ticket.issued"
	}
	return c.Kafka.TicketIssuedTopicName
}
