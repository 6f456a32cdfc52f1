package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ClassConfig holds the per-asset-class screening knobs.
type ClassConfig struct {
	UniverseFile string `yaml:"universe_file"`
	LookbackDays int    `yaml:"lookback_days"`
	MinPositions int    `yaml:"min_positions"`
	MaxPositions int    `yaml:"max_positions"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	MarketData struct {
		BaseURL        string        `yaml:"base_url"`
		SymbolSuffix   string        `yaml:"symbol_suffix"`
		Timeout        time.Duration `yaml:"timeout"`
		CacheTTL       time.Duration `yaml:"cache_ttl"`
		RequestsPerSec float64       `yaml:"requests_per_sec"`
		Burst          float64       `yaml:"burst"`
		Redis          struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"marketdata"`
	Screener struct {
		Equities    ClassConfig `yaml:"equities"`
		Bonds       ClassConfig `yaml:"bonds"`
		Commodities ClassConfig `yaml:"commodities"`
		Golds       ClassConfig `yaml:"golds"`
		BondProxies struct {
			LongDuration    string `yaml:"long_duration"`
			MidDuration     string `yaml:"mid_duration"`
			ShortDuration   string `yaml:"short_duration"`
			InvestmentGrade string `yaml:"investment_grade"`
			HighYield       string `yaml:"high_yield"`
		} `yaml:"bond_proxies"`
	} `yaml:"screener"`
	Report struct {
		Dir string `yaml:"dir"`
	} `yaml:"report"`
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
}

// Class returns the block for one asset class name.
func (c *Config) Class(name string) (ClassConfig, error) {
	switch name {
	case "equities":
		return c.Screener.Equities, nil
	case "bonds":
		return c.Screener.Bonds, nil
	case "commodities":
		return c.Screener.Commodities, nil
	case "golds":
		return c.Screener.Golds, nil
	}
	return ClassConfig{}, fmt.Errorf("unknown asset class %q", name)
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

	c.applyDefaults()
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

	if v := os.Getenv("MARKETDATA_BASE_URL"); v != "" {
		c.MarketData.BaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.MarketData.Redis.Enabled = true
		c.MarketData.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Enabled = true
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Enabled = true
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REPORT_DIR"); v != "" {
		c.Report.Dir = v
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "reports"
	}
	defaultClass := func(cc *ClassConfig, lookback, minPos, maxPos int) {
		if cc.LookbackDays == 0 {
			cc.LookbackDays = lookback
		}
		if cc.MinPositions == 0 {
			cc.MinPositions = minPos
		}
		if cc.MaxPositions == 0 {
			cc.MaxPositions = maxPos
		}
	}
	defaultClass(&c.Screener.Equities, 60, 5, 8)
	defaultClass(&c.Screener.Bonds, 90, 2, 3)
	defaultClass(&c.Screener.Commodities, 120, 2, 3)
	defaultClass(&c.Screener.Golds, 120, 1, 2)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	for _, name := range []string{"equities", "bonds", "commodities", "golds"} {
		cc, _ := c.Class(name)
		if cc.MinPositions < 0 || cc.MaxPositions < cc.MinPositions {
			return fmt.Errorf("screener.%s: position bounds [%d, %d] invalid", name, cc.MinPositions, cc.MaxPositions)
		}
		if cc.LookbackDays <= 0 {
			return fmt.Errorf("screener.%s: lookback_days must be positive", name)
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse is enabled")
	}
	return nil
}
