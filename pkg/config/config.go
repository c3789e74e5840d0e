package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`  // debug, info, warn, error; default info
		Format string `yaml:"format"` // console or json; default by environment
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Data struct {
		Source  string   `yaml:"source"` // csv or clickhouse
		Dir     string   `yaml:"dir"`    // csv file directory
		OutDir  string   `yaml:"out_dir"`
		Symbols []string `yaml:"symbols"` // empty means the whole universe
	} `yaml:"data"`
	Engine struct {
		Workers             int  `yaml:"workers"` // 0 means NumCPU
		MinTrades           int  `yaml:"min_trades"`
		ScoreShortsInverted bool `yaml:"score_shorts_inverted"`
	} `yaml:"engine"`
	Grid struct {
		Family                   string    `yaml:"family"`
		AnalysisDays             []int     `yaml:"analysis_days"`
		HoldingDays              []int     `yaml:"holding_days"`
		OffExchangeThresholds    []float64 `yaml:"off_exchange_thresholds"`
		PriceStabilityThresholds []float64 `yaml:"price_stability_thresholds"`
		VolumeRatioThresholds    []float64 `yaml:"volume_ratio_thresholds"`
		PriceChangeThresholds    []float64 `yaml:"price_change_thresholds"`
	} `yaml:"grid"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			BatchTimeout time.Duration `yaml:"batch_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		TTL struct {
			Scan     time.Duration `yaml:"scan"`
			Rankings time.Duration `yaml:"rankings"`
			Screen   time.Duration `yaml:"screen"`
		} `yaml:"ttl"`
	} `yaml:"cache"`
	Screen struct {
		MinDollarVolume float64 `yaml:"min_dollar_volume"`
		MinRatio        float64 `yaml:"min_ratio"`
		MinPrice        float64 `yaml:"min_price"`
	} `yaml:"screen"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.Data.Source = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Data.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Engine.Workers = n
		}
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Data.Source {
	case "csv":
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir is required for the csv source")
		}
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("data.source clickhouse requires clickhouse.enabled")
		}
	default:
		return fmt.Errorf("data.source must be 'csv' or 'clickhouse', got '%s'", c.Data.Source)
	}
	switch c.Grid.Family {
	case "off_exchange", "volume_ratio":
	case "":
		return fmt.Errorf("grid.family is required")
	default:
		return fmt.Errorf("grid.family must be 'off_exchange' or 'volume_ratio', got '%s'", c.Grid.Family)
	}
	if len(c.Grid.AnalysisDays) == 0 || len(c.Grid.HoldingDays) == 0 {
		return fmt.Errorf("grid.analysis_days and grid.holding_days are required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Engine.MinTrades < 0 {
		return fmt.Errorf("engine.min_trades cannot be negative")
	}
	return nil
}
