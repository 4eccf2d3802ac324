package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/hupe1980/knngraph"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. KNNGRAPH_METRIC.
const EnvPrefix = "KNNGRAPH"

// Config validation errors
var (
	ErrMissingInput     = errors.New("input cannot be empty")
	ErrInvalidLogFormat = errors.New("log_format must be 'json' or 'text'")
	ErrInvalidDataUse   = errors.New("data_use must be in (0, 1]")
)

// S3Config configures s3:// locations.
type S3Config struct {
	Region   string `yaml:"region" envconfig:"REGION"`
	Endpoint string `yaml:"endpoint" envconfig:"ENDPOINT"`
}

// MinioConfig configures minio:// locations.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" envconfig:"ENDPOINT"`
	AccessKey string `yaml:"access_key" envconfig:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" envconfig:"SECRET_KEY"`
	Region    string `yaml:"region" envconfig:"REGION"`
	Secure    bool   `yaml:"secure" envconfig:"SECURE"`
}

// Config holds every CLI setting. Precedence, lowest first: defaults,
// YAML file, environment (.env included), flags.
type Config struct {
	Input  string `yaml:"input" envconfig:"INPUT"`
	Output string `yaml:"output" envconfig:"OUTPUT"`

	Neighbors      int     `yaml:"neighbors" envconfig:"NEIGHBORS"`
	Metric         string  `yaml:"metric" envconfig:"METRIC"`
	Method         string  `yaml:"method" envconfig:"METHOD"`
	Jobs           int     `yaml:"jobs" envconfig:"JOBS"`
	M              int     `yaml:"m" envconfig:"M"`
	EfConstruction int     `yaml:"ef_construction" envconfig:"EF_CONSTRUCTION"`
	EfSearch       int     `yaml:"ef_search" envconfig:"EF_SEARCH"`
	Post           int     `yaml:"post" envconfig:"POST"`
	P              float64 `yaml:"p" envconfig:"P"`
	Dense          bool    `yaml:"dense" envconfig:"DENSE"`
	BucketSize     int     `yaml:"bucket_size" envconfig:"BUCKET_SIZE"`
	Seed           int64   `yaml:"seed" envconfig:"SEED"`
	DataUse        float64 `yaml:"data_use" envconfig:"DATA_USE"`

	Codec       string `yaml:"codec" envconfig:"CODEC"`
	LogLevel    string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat   string `yaml:"log_format" envconfig:"LOG_FORMAT"`
	MetricsAddr string `yaml:"metrics_addr" envconfig:"METRICS_ADDR"`

	S3    S3Config    `yaml:"s3" envconfig:"S3"`
	Minio MinioConfig `yaml:"minio" envconfig:"MINIO"`
}

// DefaultConfig mirrors the library defaults.
func DefaultConfig() Config {
	return Config{
		Neighbors:      knngraph.DefaultNeighbors,
		Metric:         knngraph.DefaultMetric,
		Method:         knngraph.DefaultMethod,
		Jobs:           knngraph.DefaultJobs,
		M:              knngraph.DefaultM,
		EfConstruction: knngraph.DefaultEfConstruction,
		EfSearch:       knngraph.DefaultEfSearch,
		Post:           knngraph.DefaultPost,
		P:              2,
		Seed:           knngraph.DefaultSeed,
		DataUse:        knngraph.DefaultDataUse,
		Codec:          "go-json",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// LoadConfig applies the YAML file at path (if any), the .env file at
// envFile (if it exists) and KNNGRAPH_* variables on top of the defaults.
func LoadConfig(path, envFile string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		// Already exported variables win over the file.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, cfg *Config) error {
	fs := cmd.Flags()
	var errs []error

	str := func(name string, dst *string) {
		if fs.Changed(name) {
			v, err := fs.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if fs.Changed(name) {
			v, err := fs.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	float := func(name string, dst *float64) {
		if fs.Changed(name) {
			v, err := fs.GetFloat64(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if fs.Changed(name) {
			v, err := fs.GetBool(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	str("input", &cfg.Input)
	str("output", &cfg.Output)
	integer("neighbors", &cfg.Neighbors)
	str("metric", &cfg.Metric)
	str("method", &cfg.Method)
	integer("jobs", &cfg.Jobs)
	integer("m", &cfg.M)
	integer("ef-construction", &cfg.EfConstruction)
	integer("ef-search", &cfg.EfSearch)
	integer("post", &cfg.Post)
	float("p", &cfg.P)
	boolean("dense", &cfg.Dense)
	integer("bucket-size", &cfg.BucketSize)
	float("data-use", &cfg.DataUse)
	str("codec", &cfg.Codec)
	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	str("metrics-addr", &cfg.MetricsAddr)

	if fs.Changed("seed") {
		v, err := fs.GetInt64("seed")
		errs = append(errs, err)
		cfg.Seed = v
	}
	if fs.Changed("verbose") {
		if v, err := fs.GetBool("verbose"); err == nil && v {
			cfg.LogLevel = "debug"
		}
	}
	return errors.Join(errs...)
}

// Validate checks settings the library does not validate itself.
func (c Config) Validate() error {
	if c.Input == "" {
		return ErrMissingInput
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return ErrInvalidLogFormat
	}
	if c.DataUse <= 0 || c.DataUse > 1 {
		return ErrInvalidDataUse
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Options maps the configuration onto transformer options.
func (c Config) Options() []knngraph.Option {
	return []knngraph.Option{
		knngraph.WithNeighbors(c.Neighbors),
		knngraph.WithMetric(c.Metric),
		knngraph.WithMethod(c.Method),
		knngraph.WithJobs(c.Jobs),
		knngraph.WithM(c.M),
		knngraph.WithEfConstruction(c.EfConstruction),
		knngraph.WithEfSearch(c.EfSearch),
		knngraph.WithPost(c.Post),
		knngraph.WithP(c.P),
		knngraph.WithDense(c.Dense),
		knngraph.WithBucketSize(c.BucketSize),
		knngraph.WithSeed(c.Seed),
	}
}
