package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/knowledge-cli/internal/cost"
	"github.com/sells-group/knowledge-cli/internal/selector"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Apify      ApifyConfig      `yaml:"apify" mapstructure:"apify"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Compliance ComplianceConfig `yaml:"compliance" mapstructure:"compliance"`
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Selector   SelectorConfig   `yaml:"selector" mapstructure:"selector"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Convert    ConvertConfig    `yaml:"convert" mapstructure:"convert"`
	Upload     UploadConfig     `yaml:"upload" mapstructure:"upload"`
	Pricing    cost.Rates       `yaml:"pricing" mapstructure:"pricing"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ApifyConfig holds scraping-provider API settings.
type ApifyConfig struct {
	Token   string `yaml:"token" mapstructure:"token"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GeminiConfig holds retrieval-store API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ComplianceConfig locates the banned-pattern artifact. An empty path uses
// the built-in list.
type ComplianceConfig struct {
	BannedPatternsPath string `yaml:"banned_patterns_path" mapstructure:"banned_patterns_path"`
}

// CatalogConfig locates the provider catalog artifact. An empty path uses
// the built-in catalog.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SelectorConfig configures provider selection.
type SelectorConfig struct {
	Weights selector.Weights `yaml:"weights" mapstructure:"weights"`
	TopN    int              `yaml:"top_n" mapstructure:"top_n"`
}

// ScrapeConfig configures provider execution.
type ScrapeConfig struct {
	MaxPages       int `yaml:"max_pages" mapstructure:"max_pages"`
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	TimeoutSecs    int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CacheTTLHours  int `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ConvertConfig configures document conversion.
type ConvertConfig struct {
	WorkDir        string `yaml:"work_dir" mapstructure:"work_dir"`
	MaxConcurrency int    `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// UploadConfig configures retrieval-store uploads.
type UploadConfig struct {
	RatePerSecond   float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	MaxWaitSecs     int     `yaml:"max_wait_secs" mapstructure:"max_wait_secs"`
	PollIntervalSec int     `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KNOWLEDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "knowledge.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("selector.top_n", selector.DefaultTopN)
	v.SetDefault("scrape.max_pages", 100)
	v.SetDefault("scrape.max_concurrency", 5)
	v.SetDefault("scrape.timeout_secs", 600)
	v.SetDefault("scrape.cache_ttl_hours", 24)
	v.SetDefault("convert.work_dir", "/tmp/knowledge-cli/documents")
	v.SetDefault("convert.max_concurrency", 8)
	v.SetDefault("upload.rate_per_second", 2.0)
	v.SetDefault("upload.max_wait_secs", 300)
	v.SetDefault("upload.poll_interval_secs", 2)

	w := selector.DefaultWeights()
	v.SetDefault("selector.weights.success_rate_max", w.SuccessRateMax)
	v.SetDefault("selector.weights.popularity_max", w.PopularityMax)
	v.SetDefault("selector.weights.popularity_base", w.PopularityBase)
	v.SetDefault("selector.weights.popularity_per_log", w.PopularityPerLog)
	v.SetDefault("selector.weights.cost_free", w.CostFree)
	v.SetDefault("selector.weights.cost_paid_premium", w.CostPaidPremium)
	v.SetDefault("selector.weights.target_match", w.TargetMatch)
	v.SetDefault("selector.weights.format_markdown", w.FormatMarkdown)
	v.SetDefault("selector.weights.format_text", w.FormatText)
	v.SetDefault("selector.weights.format_html", w.FormatHTML)

	rates := cost.DefaultRates()
	v.SetDefault("pricing.indexing_per_mtok", rates.IndexingPerMTok)
	v.SetDefault("pricing.price_per_page", rates.PricePerPage)
	v.SetDefault("pricing.start_fee", rates.StartFee)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
