package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Corpus      CorpusConfig    `mapstructure:"corpus"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Catalog     CatalogConfig   `mapstructure:"catalog"`
	Recommend   RecommendConfig `mapstructure:"recommend"`
	Queue       QueueConfig     `mapstructure:"queue"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CorpusConfig 食譜語料設定
type CorpusConfig struct {
	URL        string        `mapstructure:"url"`
	File       string        `mapstructure:"file"`
	MaxRecords int           `mapstructure:"max_records"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryMax   int           `mapstructure:"retry_max"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// CatalogConfig 商品目錄設定
type CatalogConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// RecommendConfig 推薦設定
type RecommendConfig struct {
	MonthlyFrequency int           `mapstructure:"monthly_frequency"`
	AffordableShare  float64       `mapstructure:"affordable_share"`
	MaxCombinations  int           `mapstructure:"max_combinations"`
	FastCacheTTL     time.Duration `mapstructure:"fast_cache_ttl"`
	GoalLimit        int           `mapstructure:"goal_limit"`
}

// QueueConfig 預熱隊列設定
type QueueConfig struct {
	Workers int  `mapstructure:"workers"`
	MaxSize int  `mapstructure:"max_size"`
	Warmup  bool `mapstructure:"warmup"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時直接使用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	v.BindEnv("corpus.url", "CORPUS_URL")
	v.BindEnv("corpus.file", "CORPUS_FILE")
	v.BindEnv("corpus.max_records", "CORPUS_MAX_RECORDS")
	v.BindEnv("cache.enabled", "CACHE_ENABLED")
	v.BindEnv("cache.backend", "CACHE_BACKEND")
	v.BindEnv("cache.redis_addr", "REDIS_ADDR")
	v.BindEnv("catalog.driver", "CATALOG_DRIVER")
	v.BindEnv("catalog.dsn", "CATALOG_DSN")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("dedup_window", "DEDUP_WINDOW")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("server.port", "PORT")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Default 回傳預設設定，不讀取環境變數
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return &config
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "meal-planner")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// 語料設定
	v.SetDefault("corpus.url", "")
	v.SetDefault("corpus.file", "data/TB_RECIPE_SEARCH_241226.csv")
	v.SetDefault("corpus.max_records", 10000)
	v.SetDefault("corpus.cache_ttl", "30m")
	v.SetDefault("corpus.timeout", "60s")
	v.SetDefault("corpus.retry_max", 3)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 100)
	v.SetDefault("cache.ttl", "30m")
	v.SetDefault("cache.cleanup_interval", "5m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// 商品目錄設定
	v.SetDefault("catalog.driver", "embedded")
	v.SetDefault("catalog.dsn", "")

	// 推薦設定
	v.SetDefault("recommend.monthly_frequency", 10)
	v.SetDefault("recommend.affordable_share", 0.4)
	v.SetDefault("recommend.max_combinations", 1000)
	v.SetDefault("recommend.fast_cache_ttl", "10m")
	v.SetDefault("recommend.goal_limit", 200)

	// 隊列設定
	v.SetDefault("queue.workers", 3)
	v.SetDefault("queue.max_size", 10)
	v.SetDefault("queue.warmup", true)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Corpus.URL == "" && config.Corpus.File == "" {
		return fmt.Errorf("corpus url or file is required")
	}
	if config.Corpus.MaxRecords <= 0 {
		return fmt.Errorf("invalid corpus max records")
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory", "redis":
		default:
			return fmt.Errorf("unsupported cache backend %q", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	switch config.Catalog.Driver {
	case "embedded":
	case "sqlite", "postgres":
		if config.Catalog.DSN == "" {
			return fmt.Errorf("catalog dsn is required for driver %q", config.Catalog.Driver)
		}
	default:
		return fmt.Errorf("unsupported catalog driver %q", config.Catalog.Driver)
	}

	if config.Recommend.MonthlyFrequency <= 0 {
		return fmt.Errorf("invalid monthly frequency")
	}
	if config.Recommend.AffordableShare <= 0 || config.Recommend.AffordableShare > 1 {
		return fmt.Errorf("affordable share must be in (0, 1]")
	}
	if config.Recommend.MaxCombinations <= 0 {
		return fmt.Errorf("invalid max combinations")
	}

	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	return nil
}
