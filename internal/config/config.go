package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"support_chat_backend/internal/reply"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Reply     ReplyConfig     `mapstructure:"reply"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Runtime flags, set from the command line.
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
	Seed         bool `mapstructure:"-"`

	// File is the config file that was read.
	File string `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool `mapstructure:"parse_time"`
	// Path is the SQLite file (or ":memory:") when Driver is sqlite.
	Path string
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

// LLMConfig selects and parameterizes the model provider.
type LLMConfig struct {
	Provider       string  `mapstructure:"provider"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	BaseURL        string  `mapstructure:"base_url"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type ReplyConfig struct {
	HistoryWindow     int                `mapstructure:"history_window"`
	HistoryFetchLimit int                `mapstructure:"history_fetch_limit"`
	MaxMessageLength  int                `mapstructure:"max_message_length"`
	InputFilter       InputFilterConfig  `mapstructure:"input_filter"`
	OutputFilter      OutputFilterConfig `mapstructure:"output_filter"`
}

type InputFilterConfig struct {
	MaxCharRun       int `mapstructure:"max_char_run"`
	MaxSingleWordLen int `mapstructure:"max_single_word_len"`
}

type OutputFilterConfig struct {
	MinLength          int      `mapstructure:"min_length"`
	CorruptionPatterns []string `mapstructure:"corruption_patterns"`
	MaxCharRun         int      `mapstructure:"max_char_run"`
	LongWordLength     int      `mapstructure:"long_word_length"`
	RepeatUnitMin      int      `mapstructure:"repeat_unit_min"`
	RepeatUnitMax      int      `mapstructure:"repeat_unit_max"`
	RepeatOccurrences  int      `mapstructure:"repeat_occurrences"`
	MaxLongWords       int      `mapstructure:"max_long_words"`
	AllowedPrefixes    []string `mapstructure:"allowed_prefixes"`
	MaxWordRepeats     int      `mapstructure:"max_word_repeats"`
	MaxBrackets        int      `mapstructure:"max_brackets"`
	MaxCamelCaseTokens int      `mapstructure:"max_camel_case_tokens"`
}

type KnowledgeConfig struct {
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	SeedFile        string `mapstructure:"seed_file"`
}

func (c KnowledgeConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Supported llm.provider values.
const (
	ProviderNone      = "none"
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

var providerKeyEnv = map[string]string{
	ProviderGroq:      "GROQ_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// placeholderKeys are sample values shipped in env templates.
var placeholderKeys = map[string]bool{
	"your_groq_api_key_here": true,
	"your_api_key_here":      true,
	"changeme":               true,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.path", "data/support_chat.db")

	v.SetDefault("redis.port", 6379)

	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("llm.provider", ProviderGroq)
	v.SetDefault("llm.max_tokens", 250)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout_seconds", 20)

	v.SetDefault("reply.history_window", reply.DefaultHistoryWindow)
	v.SetDefault("reply.history_fetch_limit", 20)
	v.SetDefault("reply.max_message_length", 4000)

	in := reply.DefaultInputFilter()
	v.SetDefault("reply.input_filter.max_char_run", in.MaxCharRun)
	v.SetDefault("reply.input_filter.max_single_word_len", in.MaxSingleWordLen)

	out := reply.DefaultOutputFilterConfig()
	v.SetDefault("reply.output_filter.min_length", out.MinLength)
	v.SetDefault("reply.output_filter.corruption_patterns", out.CorruptionPatterns)
	v.SetDefault("reply.output_filter.max_char_run", out.MaxCharRun)
	v.SetDefault("reply.output_filter.long_word_length", out.LongWordLength)
	v.SetDefault("reply.output_filter.repeat_unit_min", out.RepeatUnitMin)
	v.SetDefault("reply.output_filter.repeat_unit_max", out.RepeatUnitMax)
	v.SetDefault("reply.output_filter.repeat_occurrences", out.RepeatOccurrences)
	v.SetDefault("reply.output_filter.max_long_words", out.MaxLongWords)
	v.SetDefault("reply.output_filter.allowed_prefixes", out.AllowedPrefixes)
	v.SetDefault("reply.output_filter.max_word_repeats", out.MaxWordRepeats)
	v.SetDefault("reply.output_filter.max_brackets", out.MaxBrackets)
	v.SetDefault("reply.output_filter.max_camel_case_tokens", out.MaxCamelCaseTokens)

	v.SetDefault("knowledge.cache_ttl_seconds", 300)
	v.SetDefault("knowledge.seed_file", "configs/knowledge.yaml")

	v.SetDefault("rate_limit.max_requests", 30)
	v.SetDefault("rate_limit.window_minutes", 1)
}

// LoadConfig reads config.yaml from the directory path, then environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SUPPORT_CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")
	v.BindEnv("database.path", "DATABASE_PATH")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// LLM
	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("llm.api_key", "LLM_API_KEY")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("llm.base_url", "LLM_BASE_URL")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	switch c.Server.Mode {
	case "":
		c.Server.Mode = "debug"
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q", c.Server.Mode)
	}

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderNone
	}
	if c.LLM.Provider != ProviderNone {
		if _, ok := providerKeyEnv[c.LLM.Provider]; !ok {
			return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
		}
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv(providerKeyEnv[c.LLM.Provider])
	}
	if placeholderKeys[strings.ToLower(c.LLM.APIKey)] {
		c.LLM.APIKey = ""
	}

	c.LLM.MaxTokens = clamp(c.LLM.MaxTokens, 1, 4096)
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature %.2f out of range [0, 2]", c.LLM.Temperature)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 20
	}
	c.LLM.TimeoutSeconds = clamp(c.LLM.TimeoutSeconds, 1, 120)

	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.Path != ":memory:" {
		if dir := filepath.Dir(c.Database.Path); dir != "." {
			os.MkdirAll(dir, 0755)
		}
	}

	if c.Reply.HistoryFetchLimit < c.Reply.HistoryWindow {
		c.Reply.HistoryFetchLimit = c.Reply.HistoryWindow
	}
	return nil
}

// Enabled reports whether a provider is selected and has credentials.
func (c LLMConfig) Enabled() bool {
	return c.Provider != ProviderNone && c.APIKey != ""
}

// EngineConfig returns the model call parameters for the reply engine.
func (c *Config) EngineConfig() reply.Config {
	return reply.Config{
		HistoryWindow: c.Reply.HistoryWindow,
		MaxTokens:     c.LLM.MaxTokens,
		Temperature:   c.LLM.Temperature,
		Timeout:       c.LLM.Timeout(),
	}
}

func (c InputFilterConfig) Filter() reply.InputFilter {
	return reply.InputFilter{MaxCharRun: c.MaxCharRun, MaxSingleWordLen: c.MaxSingleWordLen}
}

// Rules builds the ordered output rule list from the configured thresholds.
func (c OutputFilterConfig) Rules() ([]reply.Rule, error) {
	return reply.NewOutputRules(reply.OutputFilterConfig{
		MinLength:          c.MinLength,
		CorruptionPatterns: c.CorruptionPatterns,
		MaxCharRun:         c.MaxCharRun,
		LongWordLength:     c.LongWordLength,
		RepeatUnitMin:      c.RepeatUnitMin,
		RepeatUnitMax:      c.RepeatUnitMax,
		RepeatOccurrences:  c.RepeatOccurrences,
		MaxLongWords:       c.MaxLongWords,
		AllowedPrefixes:    c.AllowedPrefixes,
		MaxWordRepeats:     c.MaxWordRepeats,
		MaxBrackets:        c.MaxBrackets,
		MaxCamelCaseTokens: c.MaxCamelCaseTokens,
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
