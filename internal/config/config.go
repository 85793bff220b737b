package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures the service runtime parameters.
type Config struct {
	HTTPAddr            string          `mapstructure:"http_addr"`
	GRPCAddr            string          `mapstructure:"grpc_addr"`
	LogLevel            string          `mapstructure:"log_level"`
	ServiceName         string          `mapstructure:"service_name"`
	Environment         string          `mapstructure:"environment"`
	DebugRoutes         bool            `mapstructure:"debug_routes"`
	ShutdownGracePeriod time.Duration   `mapstructure:"shutdown_grace_period"`
	DB                  DBConfig        `mapstructure:"db"`
	JWT                 JWTConfig       `mapstructure:"jwt"`
	AMQP                AMQPConfig      `mapstructure:"amqp"`
	Kafka               KafkaConfig     `mapstructure:"kafka"`
	Redis               RedisConfig     `mapstructure:"redis"`
	RateLimit           RateLimitConfig `mapstructure:"ratelimit"`
	OTel                OTelConfig      `mapstructure:"otel"`
}

type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// AMQPConfig points at the broker receiving audit and connection events. Empty URL disables it.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// KafkaConfig points at the chat activity stream. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// BrokerList splits the comma separated broker list.
func (k KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// RedisConfig backs the message rate limiter. Empty Addr disables limiting.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Messages int64         `mapstructure:"messages"`
	Window   time.Duration `mapstructure:"window"`
}

// OTelConfig configures trace export. Empty Endpoint disables export.
type OTelConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

const (
	defaultHTTPAddr            = ":8083"
	defaultGRPCAddr            = ":9083"
	defaultLogLevel            = "info"
	defaultServiceName         = "groupchat-service"
	defaultEnvironment         = "dev"
	defaultShutdownGracePeriod = 10 * time.Second
	defaultExchange            = "chat.events"
	defaultKafkaTopic          = "chat-activity"
	defaultRateLimitMessages   = 30
	defaultRateLimitWindow     = 10 * time.Second
)

// Load reads configuration from the provided file path (if any) and the environment.
// Environment variables are prefixed with GROUPCHAT_ and override file values,
// e.g. GROUPCHAT_DB_DSN or GROUPCHAT_JWT_SECRET.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GROUPCHAT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("http_addr", defaultHTTPAddr)
	v.SetDefault("grpc_addr", defaultGRPCAddr)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("service_name", defaultServiceName)
	v.SetDefault("environment", defaultEnvironment)
	v.SetDefault("debug_routes", false)
	v.SetDefault("shutdown_grace_period", defaultShutdownGracePeriod.String())
	v.SetDefault("db.dsn", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", defaultExchange)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", defaultKafkaTopic)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.messages", defaultRateLimitMessages)
	v.SetDefault("ratelimit.window", defaultRateLimitWindow.String())
	v.SetDefault("otel.endpoint", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	var err error
	if cfg.ShutdownGracePeriod, err = duration(v, "shutdown_grace_period"); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.Window, err = duration(v, "ratelimit.window"); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DB.DSN == "" {
		return errors.New("db.dsn is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.RateLimit.Messages <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("ratelimit.messages and ratelimit.window must be positive")
	}
	return nil
}

// Viper leaves durations from env as strings; parse them explicitly.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
