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
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Sources struct {
		YahooBaseURL string        `yaml:"yahoo_base_url"`
		FredBaseURL  string        `yaml:"fred_base_url"`
		Timeout      time.Duration `yaml:"timeout"`
		RangeDays    int           `yaml:"range_days"`
		FXPair       string        `yaml:"fx_pair"`
		FXFallback   float64       `yaml:"fx_fallback"`
		MacroSeries  string        `yaml:"macro_series"`
		PriceTTL     time.Duration `yaml:"price_ttl"`
		MacroTTL     time.Duration `yaml:"macro_ttl"`
		RateCapacity float64       `yaml:"rate_capacity"`
		RateRefill   float64       `yaml:"rate_refill"`
	} `yaml:"sources"`
	Cache struct {
		MemoryMaxSize int  `yaml:"memory_max_size"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Portfolio struct {
		TotalAssets  int64             `yaml:"total_assets"`
		Descriptions map[string]string `yaml:"descriptions"`
		VAA          struct {
			Attack  []string `yaml:"attack"`
			Defense []string `yaml:"defense"`
		} `yaml:"vaa"`
		LAA struct {
			Fixed     []string `yaml:"fixed"`
			Defensive string   `yaml:"defensive"`
			Growth    string   `yaml:"growth"`
			Reference string   `yaml:"reference"`
			MAWindow  int      `yaml:"ma_window"`
		} `yaml:"laa"`
		DM struct {
			Domestic      string `yaml:"domestic"`
			International string `yaml:"international"`
			Cash          string `yaml:"cash"`
			Fallback      string `yaml:"fallback"`
			Lookback      int    `yaml:"lookback"`
		} `yaml:"dm"`
		Momentum []struct {
			Lookback int     `yaml:"lookback"`
			Weight   float64 `yaml:"weight"`
		} `yaml:"momentum"`
		Drawdown struct {
			Reference      string    `yaml:"reference"`
			Thresholds     []float64 `yaml:"thresholds"`
			Conversions    []int     `yaml:"conversions"`
			MAWindow       int       `yaml:"ma_window"`
			ProfitMaxRatio float64   `yaml:"profit_max_ratio"`
		} `yaml:"drawdown"`
	} `yaml:"portfolio"`
	History struct {
		CSVPath    string `yaml:"csv_path"`
		ClickHouse struct {
			Enabled          bool          `yaml:"enabled"`
			Host             string        `yaml:"host"`
			Port             int           `yaml:"port"`
			Database         string        `yaml:"database"`
			Table            string        `yaml:"table"`
			User             string        `yaml:"user"`
			Password         string        `yaml:"password"`
			DialTimeout      time.Duration `yaml:"dial_timeout"`
			ReadTimeout      time.Duration `yaml:"read_timeout"`
			WriteTimeout     time.Duration `yaml:"write_timeout"`
			MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		} `yaml:"clickhouse"`
		Kafka struct {
			Enabled      bool          `yaml:"enabled"`
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic"`
			RequiredAcks int           `yaml:"required_acks"`
			Compression  string        `yaml:"compression"`
			MaxAttempts  int           `yaml:"max_attempts"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"kafka"`
	} `yaml:"history"`
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

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TOTAL_ASSETS"); v != "" {
		if t, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Portfolio.TotalAssets = t
		}
	}
	if v := os.Getenv("HISTORY_CSV_PATH"); v != "" {
		c.History.CSVPath = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.History.ClickHouse.Enabled = true
		c.History.ClickHouse.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.History.Kafka.Enabled = true
		c.History.Kafka.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Sources.YahooBaseURL == "" {
		return fmt.Errorf("sources.yahoo_base_url is required")
	}
	if c.Sources.FredBaseURL == "" {
		return fmt.Errorf("sources.fred_base_url is required")
	}
	if c.Portfolio.TotalAssets <= 0 {
		return fmt.Errorf("portfolio.total_assets must be positive")
	}
	if len(c.Portfolio.VAA.Attack) == 0 || len(c.Portfolio.VAA.Defense) == 0 {
		return fmt.Errorf("portfolio.vaa attack and defense sets cannot be empty")
	}
	if len(c.Portfolio.LAA.Fixed) == 0 {
		return fmt.Errorf("portfolio.laa.fixed cannot be empty")
	}
	if c.Portfolio.DM.Domestic == "" || c.Portfolio.DM.Fallback == "" {
		return fmt.Errorf("portfolio.dm domestic and fallback symbols are required")
	}
	if len(c.Portfolio.Drawdown.Thresholds) != len(c.Portfolio.Drawdown.Conversions) {
		return fmt.Errorf("portfolio.drawdown thresholds and conversions must align")
	}
	if c.History.CSVPath == "" {
		return fmt.Errorf("history.csv_path is required")
	}
	if c.History.Kafka.Enabled && len(c.History.Kafka.Brokers) == 0 {
		return fmt.Errorf("history.kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
