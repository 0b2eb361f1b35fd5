package config

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	APIRateLimit float64 `env:"API_RATE_LIMIT" default:"5"`
	APIRateBurst int     `env:"API_RATE_BURST" default:"10"`

	Source      string `env:"SOURCE" default:"reddit"`
	Classifier  string `env:"CLASSIFIER" default:"inference"`
	LabelScheme string `env:"LABEL_SCHEME" default:"finbert"`
	ScoringMode string `env:"SCORING_MODE" default:"mean"`
	Symbols     string `env:"SYMBOLS" default:"GME,TSLA,NVDA"`

	CacheTTL           time.Duration `env:"CACHE_TTL" default:"3m"`
	FetchTimeout       time.Duration `env:"FETCH_TIMEOUT" default:"15s"`
	MaxCandidates      int           `env:"MAX_CANDIDATES" default:"7"`
	MinTextLength      int           `env:"MIN_TEXT_LENGTH" default:"15"`
	MaxTextLength      int           `env:"MAX_TEXT_LENGTH" default:"2000"`
	RequireSymbol      bool          `env:"REQUIRE_SYMBOL" default:"false"`
	MaxClassifierInput int           `env:"MAX_CLASSIFIER_INPUT" default:"512"`
	RequestsPerSecond  float64       `env:"REQUESTS_PER_SECOND" default:"2"`

	RedditBaseURL     string        `env:"REDDIT_BASE_URL" default:"https://api.pushshift.io/reddit/search/comment"`
	RedditSubreddit   string        `env:"REDDIT_SUBREDDIT" default:"wallstreetbets"`
	StockTwitsBaseURL string        `env:"STOCKTWITS_BASE_URL" default:"https://api.stocktwits.com/api/2/streams/symbol"`
	AlpacaAPIKey      string        `env:"ALPACA_API_KEY"`
	AlpacaAPISecret   string        `env:"ALPACA_API_SECRET"`
	NewsLookback      time.Duration `env:"NEWS_LOOKBACK" default:"24h"`
	FixturesFile      string        `env:"FIXTURES_FILE"`

	InferenceURL   string `env:"INFERENCE_URL"`
	InferenceToken string `env:"INFERENCE_TOKEN"`
	LexiconFile    string `env:"LEXICON_FILE"`

	RedisURL     string `env:"REDIS_URL"`
	KafkaBrokers string `env:"KAFKA_BROKERS"`
	KafkaTopic   string `env:"KAFKA_TOPIC" default:"sentiment.reports"`
}

var symbolRe = regexp.MustCompile(`^[A-Z][A-Z0-9.]{0,9}$`)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// WatchList returns the configured symbols, upper-cased, in order.
func (c *Config) WatchList() []string {
	return SplitList(strings.ToUpper(c.Symbols))
}

func (c *Config) Brokers() []string {
	return SplitList(c.KafkaBrokers)
}

func (c *Config) Mode() domain.ScoringMode {
	mode, _ := domain.ParseScoringMode(c.ScoringMode)
	return mode
}

// SplitList splits a comma-separated value, dropping empty items.
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func validate(cfg *Config) error {
	switch cfg.Source {
	case "reddit", "stocktwits":
	case "alpaca":
		if cfg.AlpacaAPIKey == "" || cfg.AlpacaAPISecret == "" {
			return errors.New("ALPACA_API_KEY and ALPACA_API_SECRET are required for SOURCE=alpaca")
		}
	case "static":
		if cfg.FixturesFile == "" {
			return errors.New("FIXTURES_FILE is required for SOURCE=static")
		}
	default:
		return fmt.Errorf("SOURCE must be one of reddit, stocktwits, alpaca, static, got %q", cfg.Source)
	}

	switch cfg.Classifier {
	case "inference":
		if cfg.InferenceURL == "" {
			return errors.New("INFERENCE_URL is required for CLASSIFIER=inference")
		}
	case "lexicon":
	default:
		return fmt.Errorf("CLASSIFIER must be one of inference, lexicon, got %q", cfg.Classifier)
	}

	if _, ok := domain.ParseScoringMode(cfg.ScoringMode); !ok {
		return fmt.Errorf("SCORING_MODE must be count or mean, got %q", cfg.ScoringMode)
	}

	symbols := cfg.WatchList()
	if len(symbols) == 0 {
		return errors.New("SYMBOLS is required")
	}
	for _, s := range symbols {
		if !symbolRe.MatchString(s) {
			return fmt.Errorf("SYMBOLS contains invalid symbol %q", s)
		}
	}

	if cfg.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	if cfg.FetchTimeout <= 0 {
		return errors.New("FETCH_TIMEOUT must be positive")
	}
	if cfg.MaxCandidates < 1 {
		return errors.New("MAX_CANDIDATES must be at least 1")
	}
	if cfg.MaxTextLength <= cfg.MinTextLength {
		return errors.New("MAX_TEXT_LENGTH must be greater than MIN_TEXT_LENGTH")
	}
	if cfg.MaxClassifierInput < 1 {
		return errors.New("MAX_CLASSIFIER_INPUT must be at least 1")
	}
	if cfg.APIRateLimit <= 0 || cfg.APIRateBurst < 1 {
		return errors.New("API_RATE_LIMIT and API_RATE_BURST must be positive")
	}
	if cfg.RequestsPerSecond <= 0 {
		return errors.New("REQUESTS_PER_SECOND must be positive")
	}

	return nil
}
