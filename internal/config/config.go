package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/clipideas/internal/domain/prompt"
	"github.com/forPelevin/clipideas/internal/ports/adapters/openai"
	"github.com/forPelevin/clipideas/internal/ratelimit"
)

// Duration accepts "20s" style strings or integer seconds in YAML.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	s := strings.TrimSpace(n.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if sec, err := strconv.Atoi(s); err == nil {
		d.Duration = time.Duration(sec) * time.Second
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration must look like \"20s\" or be integer seconds: %w", err)
	}
	d.Duration = dd
	return nil
}

type OpenAIConfig struct {
	APIKey       string   `yaml:"api_key"`
	Model        string   `yaml:"model"`
	BaseURL      string   `yaml:"base_url"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	Timeout      Duration `yaml:"timeout"`
}

type HTTPConfig struct {
	Addr                 string   `yaml:"addr"`
	AllowedOrigins       []string `yaml:"allowed_origins"`
	ExpectedClientHeader string   `yaml:"expected_client_header"`
	RequestTimeout       Duration `yaml:"request_timeout"`
	ShutdownTimeout      Duration `yaml:"shutdown_timeout"`
}

type OtelConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

type Config struct {
	LogMode            string       `yaml:"log_mode"`
	OpenAI             OpenAIConfig `yaml:"openai"`
	HTTP               HTTPConfig   `yaml:"http"`
	Otel               OtelConfig   `yaml:"otel"`
	TranscriptTimeout  Duration     `yaml:"transcript_timeout"`
	DailyLimitPerIP    int          `yaml:"daily_limit_per_ip"`
	MaxTranscriptItems int          `yaml:"max_transcript_entries"`
}

func Default() Config {
	return Config{
		LogMode: "development",
		OpenAI: OpenAIConfig{
			Model:   openai.DefaultModel,
			BaseURL: "https://api.openai.com",
			Timeout: Duration{60 * time.Second},
		},
		HTTP: HTTPConfig{
			Addr:                 ":8000",
			AllowedOrigins:       []string{"http://localhost:3000"},
			ExpectedClientHeader: "indiedoers-extension",
			RequestTimeout:       Duration{120 * time.Second},
			ShutdownTimeout:      Duration{15 * time.Second},
		},
		Otel:               OtelConfig{Exporter: "stdout"},
		TranscriptTimeout:  Duration{20 * time.Second},
		DailyLimitPerIP:    ratelimit.DefaultDailyLimit,
		MaxTranscriptItems: prompt.DefaultMaxEntries,
	}
}

// Load layers defaults, an optional YAML file (CLIPIDEAS_CONFIG or
// ./config.yaml) and environment overrides. It does not validate.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	path := strings.TrimSpace(getenv("CLIPIDEAS_CONFIG"))
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = splitList(v)
		}
	}
	num := func(key string, dst *int) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *Duration) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		if sec, err := strconv.Atoi(v); err == nil {
			dst.Duration = time.Duration(sec) * time.Second
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		dst.Duration = d
		return nil
	}

	str("LOG_MODE", &cfg.LogMode)
	str("OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	str("OPENAI_MODEL", &cfg.OpenAI.Model)
	str("OPENAI_BASE_URL", &cfg.OpenAI.BaseURL)
	list("OPENAI_ALLOWED_HOSTS", &cfg.OpenAI.AllowedHosts)
	str("HTTP_ADDR", &cfg.HTTP.Addr)
	list("ALLOWED_ORIGINS", &cfg.HTTP.AllowedOrigins)
	str("EXPECTED_CLIENT_HEADER", &cfg.HTTP.ExpectedClientHeader)
	str("OTEL_EXPORTER", &cfg.Otel.Exporter)
	if v := strings.TrimSpace(getenv("OTEL_ENABLED")); v != "" {
		cfg.Otel.Enabled = parseBool(v)
	}

	for _, err := range []error{
		dur("OPENAI_TIMEOUT", &cfg.OpenAI.Timeout),
		dur("TRANSCRIPT_TIMEOUT", &cfg.TranscriptTimeout),
		dur("REQUEST_TIMEOUT", &cfg.HTTP.RequestTimeout),
		num("DAILY_LIMIT_PER_IP", &cfg.DailyLimitPerIP),
		num("MAX_TRANSCRIPT_ENTRIES", &cfg.MaxTranscriptItems),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return errors.New("OPENAI_API_KEY is required (set it in .env)")
	}
	if c.DailyLimitPerIP <= 0 {
		return fmt.Errorf("daily limit per ip must be > 0, got %d", c.DailyLimitPerIP)
	}
	if c.OpenAI.Timeout.Duration <= 0 {
		return errors.New("openai timeout must be > 0")
	}
	if c.TranscriptTimeout.Duration <= 0 {
		return errors.New("transcript timeout must be > 0")
	}
	if c.HTTP.RequestTimeout.Duration <= 0 {
		return errors.New("request timeout must be > 0")
	}
	if c.MaxTranscriptItems < prompt.MinMaxEntries {
		return fmt.Errorf("max transcript entries must be >= %d, got %d", prompt.MinMaxEntries, c.MaxTranscriptItems)
	}
	return openai.ValidateBaseURL(c.OpenAI.BaseURL, c.OpenAI.AllowedHosts)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
