package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL              string        `mapstructure:"url"`
	MaxConnections   int           `mapstructure:"max_connections"`
	MaxIdleTime      time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime      time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	SeedSampleMovies bool          `mapstructure:"seed_sample_movies"`
}

// RedisConfig configures the shared recommendation cache. An empty URL falls
// back to an in-process cache.
type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// KafkaConfig configures rating events. No brokers means events are not published.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		Ratings string `mapstructure:"ratings"`
	} `mapstructure:"topics"`
	ConsumerGroup string `mapstructure:"consumer_group"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RecommendationConfig struct {
	NumRecommendations int           `mapstructure:"num_recommendations"`
	NeighborhoodSize   int           `mapstructure:"neighborhood_size"`
	MaxCount           int           `mapstructure:"max_count"`
	MinRating          int           `mapstructure:"min_rating"`
	MaxRating          int           `mapstructure:"max_rating"`
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	// LocalCacheSize bounds the in-process cache used when Redis is off
	LocalCacheSize int64 `mapstructure:"local_cache_size"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith reads configuration into v. Tests pass a fresh instance so
// overrides do not leak between cases.
func LoadWith(v *viper.Viper) (*Config, error) {
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate rejects settings the recommendation pipeline cannot work with
func (c *Config) Validate() error {
	r := c.Recommendation
	if r.NumRecommendations <= 0 {
		return fmt.Errorf("recommendation.num_recommendations must be positive, got %d", r.NumRecommendations)
	}
	if r.NeighborhoodSize <= 0 {
		return fmt.Errorf("recommendation.neighborhood_size must be positive, got %d", r.NeighborhoodSize)
	}
	if r.MaxCount < r.NumRecommendations {
		return fmt.Errorf("recommendation.max_count (%d) is below num_recommendations (%d)", r.MaxCount, r.NumRecommendations)
	}
	if r.MinRating > r.MaxRating {
		return fmt.Errorf("recommendation.min_rating (%d) exceeds max_rating (%d)", r.MinRating, r.MaxRating)
	}
	if r.LocalCacheSize <= 0 {
		return fmt.Errorf("recommendation.local_cache_size must be positive, got %d", r.LocalCacheSize)
	}
	if c.Kafka.Enabled() && c.Kafka.Topics.Ratings == "" {
		return errors.New("kafka.topics.ratings is required when brokers are set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "development")

	// Database defaults
	v.SetDefault("database.url", "postgres://localhost:5432/movies")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_time", "15m")
	v.SetDefault("database.max_lifetime", "1h")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.seed_sample_movies", true)

	// Redis defaults
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", "5s")

	// Kafka defaults
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topics.ratings", "movie-ratings")
	v.SetDefault("kafka.consumer_group", "recommendation-cache")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Recommendation defaults
	v.SetDefault("recommendation.num_recommendations", 5)
	v.SetDefault("recommendation.neighborhood_size", 5)
	v.SetDefault("recommendation.max_count", 100)
	v.SetDefault("recommendation.min_rating", 1)
	v.SetDefault("recommendation.max_rating", 5)
	v.SetDefault("recommendation.cache_ttl", "15m")
	v.SetDefault("recommendation.local_cache_size", 10000)

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"*"})
}
