package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Duration lets TOML files spell durations as "1s", "250ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all application configuration
type Config struct {
	Input     InputConfig     `toml:"input"`
	Fetch     FetchConfig     `toml:"fetch"`
	Probe     ProbeConfig     `toml:"probe"`
	Recognize RecognizeConfig `toml:"recognize"`
	Reconcile ReconcileConfig `toml:"reconcile"`
	OCR       OCRConfig       `toml:"ocr"`
	Queue     QueueConfig     `toml:"queue"`
	Output    OutputConfig    `toml:"output"`
	Database  DatabaseConfig  `toml:"database"`
}

// InputConfig lists the documents to run the extraction ensemble on
type InputConfig struct {
	Documents  []string `toml:"documents"`
	SkipHidden bool     `toml:"skip_hidden"`
}

// FetchConfig holds HTTP client configuration
type FetchConfig struct {
	BaseURL            string   `toml:"base_url"`
	UserAgent          string   `toml:"user_agent"`
	Timeout            Duration `toml:"timeout"`
	DetailTimeout      Duration `toml:"detail_timeout"`
	Delay              Duration `toml:"delay"`
	InsecureSkipVerify bool     `toml:"insecure_skip_verify"`
	MaxBodyBytes       int64    `toml:"max_body_bytes"`
}

// ProbeConfig holds ID-space probing configuration
type ProbeConfig struct {
	Ranges        []string `toml:"ranges"`
	PathTemplate  string   `toml:"path_template"`
	Workers       int      `toml:"workers"`
	BatchSize     int      `toml:"batch_size"`
	BatchPause    Duration `toml:"batch_pause"`
	MinBodyBytes  int      `toml:"min_body_bytes"`
	MinTextChars  int      `toml:"min_text_chars"`
	FetchProfiles bool     `toml:"fetch_profiles"`
}

// RecognizeConfig holds field recognition heuristics
type RecognizeConfig struct {
	NameMinLength        int    `toml:"name_min_length"`
	NameMaxLength        int    `toml:"name_max_length"`
	NameColumnSample     int    `toml:"name_column_sample"`
	NameColumnMinHits    int    `toml:"name_column_min_hits"`
	PreferredEmailDomain string `toml:"preferred_email_domain"`
}

// ReconcileConfig holds deduplication thresholds
type ReconcileConfig struct {
	MergeThreshold float64 `toml:"merge_threshold"`
	MinNameLength  int     `toml:"min_name_length"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftotext   string `toml:"pdftotext"`
	Pdftoppm    string `toml:"pdftoppm"`
	Tesseract   string `toml:"tesseract"`
	Lang        string `toml:"lang"`
	PSM         int    `toml:"psm"`
	DPI         int    `toml:"dpi"`
	MaxPages    int    `toml:"max_pages"`
	TessdataDir string `toml:"tessdata_dir"`
}

// QueueConfig holds document worker queue configuration
type QueueConfig struct {
	Workers        int      `toml:"workers"`
	Size           int      `toml:"size"`
	ProcessTimeout Duration `toml:"process_timeout"`
}

// OutputConfig controls which snapshot files are written
type OutputConfig struct {
	Dir        string   `toml:"dir"`
	Formats    []string `toml:"formats"`
	Provenance bool     `toml:"provenance"`
}

// DatabaseConfig holds snapshot store configuration
type DatabaseConfig struct {
	SQLitePath       string   `toml:"sqlite_path"`
	DSN              string   `toml:"dsn"`
	MaxConns         int32    `toml:"max_conns"`
	MinConns         int32    `toml:"min_conns"`
	MaxConnLifetime  Duration `toml:"max_conn_lifetime"`
	MaxConnIdleTime  Duration `toml:"max_conn_idle_time"`
	DialTimeout      Duration `toml:"dial_timeout"`
	StatementTimeout Duration `toml:"statement_timeout"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{SkipHidden: true},
		Fetch: FetchConfig{
			UserAgent:     "Mozilla/5.0 (compatible; faculty-tracker/1.0)",
			Timeout:       Duration{10 * time.Second},
			DetailTimeout: Duration{15 * time.Second},
			Delay:         Duration{100 * time.Millisecond},
			MaxBodyBytes:  4 << 20,
		},
		Probe: ProbeConfig{
			PathTemplate:  "/previewPerfil.php?id={id}",
			Workers:       10,
			BatchSize:     50,
			BatchPause:    Duration{time.Second},
			MinBodyBytes:  500,
			MinTextChars:  100,
			FetchProfiles: true,
		},
		Recognize: RecognizeConfig{
			NameMinLength:        5,
			NameMaxLength:        80,
			NameColumnSample:     5,
			NameColumnMinHits:    2,
			PreferredEmailDomain: "ipt.pt",
		},
		Reconcile: ReconcileConfig{
			MergeThreshold: 0.85,
			MinNameLength:  4,
		},
		OCR: OCRConfig{
			Pdftotext: "pdftotext",
			Pdftoppm:  "pdftoppm",
			Tesseract: "tesseract",
			Lang:      "por+eng",
			PSM:       6,
			DPI:       300,
		},
		Queue: QueueConfig{
			Workers:        2,
			Size:           64,
			ProcessTimeout: Duration{5 * time.Minute},
		},
		Output: OutputConfig{
			Dir:     "./out",
			Formats: []string{"csv"},
		},
		Database: DatabaseConfig{
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: Duration{30 * time.Minute},
			MaxConnIdleTime: Duration{5 * time.Minute},
			DialTimeout:     Duration{3 * time.Second},
		},
	}
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// LoadConfig builds configuration from defaults, an optional TOML file and the environment,
// in that order of precedence.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, ConfigError("read config file %q: %v", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, ConfigError("parse config file %q: %v", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Input.Documents = getEnvAsList("FT_DOCUMENTS", c.Input.Documents)

	c.Fetch.BaseURL = getEnv("FT_BASE_URL", c.Fetch.BaseURL)
	c.Fetch.UserAgent = getEnv("FT_USER_AGENT", c.Fetch.UserAgent)
	c.Fetch.Timeout.Duration = getEnvAsDuration("FT_FETCH_TIMEOUT", c.Fetch.Timeout.Duration)
	c.Fetch.DetailTimeout.Duration = getEnvAsDuration("FT_DETAIL_TIMEOUT", c.Fetch.DetailTimeout.Duration)
	c.Fetch.Delay.Duration = getEnvAsDuration("FT_FETCH_DELAY", c.Fetch.Delay.Duration)
	c.Fetch.InsecureSkipVerify = getEnvAsBool("FT_INSECURE_SKIP_VERIFY", c.Fetch.InsecureSkipVerify)

	c.Probe.Ranges = getEnvAsList("FT_PROBE_RANGES", c.Probe.Ranges)
	c.Probe.PathTemplate = getEnv("FT_PROBE_PATH", c.Probe.PathTemplate)
	c.Probe.Workers = getEnvAsInt("FT_PROBE_WORKERS", c.Probe.Workers)
	c.Probe.BatchSize = getEnvAsInt("FT_PROBE_BATCH_SIZE", c.Probe.BatchSize)
	c.Probe.BatchPause.Duration = getEnvAsDuration("FT_PROBE_BATCH_PAUSE", c.Probe.BatchPause.Duration)

	c.Reconcile.MergeThreshold = getEnvAsFloat64("FT_MERGE_THRESHOLD", c.Reconcile.MergeThreshold)

	c.OCR.Pdftotext = getEnv("FT_PDFTOTEXT", c.OCR.Pdftotext)
	c.OCR.Pdftoppm = getEnv("FT_PDFTOPPM", c.OCR.Pdftoppm)
	c.OCR.Tesseract = getEnv("FT_TESSERACT", c.OCR.Tesseract)
	c.OCR.Lang = getEnv("FT_OCR_LANG", c.OCR.Lang)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)

	c.Output.Dir = getEnv("FT_OUTPUT_DIR", c.Output.Dir)
	c.Output.Formats = getEnvAsList("FT_OUTPUT_FORMATS", c.Output.Formats)

	c.Database.SQLitePath = getEnv("FT_SQLITE_PATH", c.Database.SQLitePath)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.DialTimeout.Duration = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout.Duration)
	c.Database.StatementTimeout.Duration = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout.Duration)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks values that would make the run meaningless.
// A run needs documents, or a base URL together with at least one probe range.
func (c *Config) Validate() error {
	hasEndpoint := strings.TrimSpace(c.Fetch.BaseURL) != "" && len(c.Probe.Ranges) > 0
	if len(c.Input.Documents) == 0 && !hasEndpoint {
		return ConfigError("no documents and no probe endpoint configured: set input.documents or fetch.base_url with probe.ranges")
	}

	v := NewValidator()
	v.Field("probe.workers", c.Probe.Workers, Positive)
	v.Field("probe.batch_size", c.Probe.BatchSize, Positive)
	v.Check(strings.Contains(c.Probe.PathTemplate, "{id}"), "probe.path_template", c.Probe.PathTemplate, "must contain {id}")
	v.Check(c.Fetch.Timeout.Duration > 0, "fetch.timeout", c.Fetch.Timeout.Duration, "must be positive")
	v.Check(c.Fetch.Delay.Duration >= 0, "fetch.delay", c.Fetch.Delay.Duration, "must not be negative")
	v.Field("reconcile.merge_threshold", c.Reconcile.MergeThreshold, AboveAtMost(0, 1))
	v.Field("reconcile.min_name_length", c.Reconcile.MinNameLength, Positive)
	v.Field("recognize.name_column_sample", c.Recognize.NameColumnSample, Positive)
	v.Check(c.Recognize.NameColumnMinHits > 0 && c.Recognize.NameColumnMinHits <= c.Recognize.NameColumnSample,
		"recognize.name_column_min_hits", c.Recognize.NameColumnMinHits, "must be in [1, name_column_sample]")
	v.Check(c.Recognize.NameMinLength > 0 && c.Recognize.NameMinLength <= c.Recognize.NameMaxLength,
		"recognize.name_min_length", c.Recognize.NameMinLength, "must be in [1, name_max_length]")
	v.Field("queue.workers", c.Queue.Workers, Positive)
	v.Field("fetch.user_agent", c.Fetch.UserAgent, Required, MinLength(3))
	v.Field("ocr.lang", c.OCR.Lang, Required)
	if len(c.Output.Formats) > 0 {
		v.Field("output.dir", c.Output.Dir, Required)
	}
	for _, f := range c.Output.Formats {
		switch strings.ToLower(f) {
		case "csv", "json", "xlsx":
		default:
			v.Check(false, "output.formats", f, "must be one of csv, json, xlsx")
		}
	}
	return ValidateAndReturnError(v)
}
