package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/alpaca"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/eventpublisher"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/httpserver"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/httpx"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/inference"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/kafka"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/lexicon"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/metrics"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/reddit"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/redis"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/static"
	"github.com/simonboegh/x-sentiment-tracker/internal/adapter/stocktwits"
	"github.com/simonboegh/x-sentiment-tracker/internal/app"
	"github.com/simonboegh/x-sentiment-tracker/internal/candidate"
	"github.com/simonboegh/x-sentiment-tracker/internal/domain"
	"github.com/simonboegh/x-sentiment-tracker/internal/platform/config"
	"github.com/simonboegh/x-sentiment-tracker/internal/platform/logging"
	"github.com/simonboegh/x-sentiment-tracker/internal/sentiment"
)

const cacheEvictionInterval = time.Minute

type metricSet struct {
	analysis *metrics.AnalysisMetrics
	cache    *metrics.CacheMetrics
	upstream *metrics.UpstreamMetrics
	http     *metrics.HTTPMetrics
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(ctx context.Context, cfg *config.Config, recorder redis.OpsRecorder) *goredis.Client {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL, recorder)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

// newHTTPClient builds a paced, breaker-guarded client whose state changes feed
// the circuit breaker gauge.
func newHTTPClient(name string, cfg *config.Config, upstream *metrics.UpstreamMetrics, header http.Header) *httpx.Client {
	opts := httpx.DefaultOptions(name)
	opts.RequestsPerSecond = cfg.RequestsPerSecond
	opts.Header = header
	opts.OnStateChange = func(name string, from, to gobreaker.State) {
		upstream.BreakerStateChanged(name, from, to)
	}
	return httpx.New(opts)
}

func setupSource(cfg *config.Config, clock clockwork.Clock, filter candidate.Filter, upstream *metrics.UpstreamMetrics) (domain.TextSource, *httpx.Client, error) {
	switch cfg.Source {
	case "reddit":
		client := newHTTPClient("reddit", cfg, upstream, nil)
		src := reddit.NewSource(client, cfg.RedditBaseURL, filter, reddit.WithSubreddit(cfg.RedditSubreddit))
		return src, client, nil
	case "stocktwits":
		client := newHTTPClient("stocktwits", cfg, upstream, nil)
		return stocktwits.NewSource(client, cfg.StockTwitsBaseURL, filter), client, nil
	case "alpaca":
		client := alpaca.NewClient(cfg.AlpacaAPIKey, cfg.AlpacaAPISecret)
		return alpaca.NewSource(client, clock, cfg.NewsLookback, filter), nil, nil
	case "static":
		src, err := static.Load(cfg.FixturesFile, filter)
		if err != nil {
			return nil, nil, err
		}
		return src, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

func setupClassifier(cfg *config.Config, upstream *metrics.UpstreamMetrics) (domain.Classifier, *httpx.Client, error) {
	labels, err := sentiment.LabelScheme(cfg.LabelScheme)
	if err != nil {
		return nil, nil, err
	}

	var lex *lexicon.File
	if cfg.LexiconFile != "" {
		lex, err = lexicon.Load(cfg.LexiconFile)
		if err != nil {
			return nil, nil, err
		}
		extra, err := lex.ExtraLabels()
		if err != nil {
			return nil, nil, err
		}
		labels = labels.With(extra)
	}

	switch cfg.Classifier {
	case "inference":
		header := http.Header{}
		if cfg.InferenceToken != "" {
			header.Set("Authorization", "Bearer "+cfg.InferenceToken)
		}
		client := newHTTPClient("inference", cfg, upstream, header)
		model := inference.NewModel(client, cfg.InferenceURL, cfg.MaxClassifierInput)
		return sentiment.Normalize(model, labels), client, nil
	case "lexicon":
		labels = labels.With(map[string]domain.Polarity{
			string(domain.Bullish): domain.Bullish,
			string(domain.Bearish): domain.Bearish,
			string(domain.Neutral): domain.Neutral,
		})
		return sentiment.Normalize(lexicon.NewModel(lex), labels), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown classifier %q", cfg.Classifier)
	}
}

func runGracefulShutdown(srv *httpserver.Server, cleanup func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cleanup()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "source", cfg.Source, "classifier", cfg.Classifier)

	reg := metrics.NewRegistry()
	m := metricSet{
		analysis: metrics.NewAnalysisMetrics(reg),
		cache:    metrics.NewCacheMetrics(reg),
		upstream: metrics.NewUpstreamMetrics(reg),
		http:     metrics.NewHTTPMetrics(reg),
	}

	filter := candidate.Filter{
		MinLength:     cfg.MinTextLength,
		MaxLength:     cfg.MaxTextLength,
		Blocklist:     candidate.DefaultBlocklist,
		RequireSymbol: cfg.RequireSymbol,
		Limit:         cfg.MaxCandidates,
	}

	source, sourceClient, err := setupSource(cfg, clock, filter, m.upstream)
	if err != nil {
		slog.Error("Failed to set up text source", "source", cfg.Source, "error", err)
		os.Exit(1)
	}

	classifier, classifierClient, err := setupClassifier(cfg, m.upstream)
	if err != nil {
		slog.Error("Failed to set up classifier", "classifier", cfg.Classifier, "error", err)
		os.Exit(1)
	}

	var healthChecks, upstreamChecks []httpserver.HealthCheck
	var sinks []eventpublisher.Sink
	cacheOpts := []redis.CacheOption{redis.WithRecorder(m.cache)}
	var cleanups []func()

	if cfg.RedisURL != "" {
		redisClient := setupRedis(context.Background(), cfg, m.upstream)
		cleanups = append(cleanups, func() { _ = redisClient.Close() })

		cacheOpts = append(cacheOpts, redis.WithRedis(redisClient))
		sinks = append(sinks, eventpublisher.Sink{Name: "redis", Publisher: redis.NewPublisher(redisClient)})
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		kafkaPublisher, err := kafka.NewPublisher(brokers, cfg.KafkaTopic)
		if err != nil {
			slog.Error("Failed to create Kafka publisher", "error", err)
			os.Exit(1)
		}
		cleanups = append(cleanups, func() {
			if err := kafkaPublisher.Close(); err != nil {
				slog.Error("Failed to close Kafka publisher", "error", err)
			}
		})
		sinks = append(sinks, eventpublisher.Sink{Name: "kafka", Publisher: kafkaPublisher})
	}

	for _, client := range []*httpx.Client{sourceClient, classifierClient} {
		if client != nil {
			upstreamChecks = append(upstreamChecks, httpserver.HealthCheck{Name: client.Name(), Check: client.Healthy})
		}
	}

	cache := redis.NewResultCache(clock, cacheOpts...)
	stopEviction := cache.StartEvictionTimer(cacheEvictionInterval)
	defer stopEviction()

	publisher := eventpublisher.New(m.upstream, sinks...)
	slog.Info("Report events configured", "sinks", publisher.Len())

	appSvc := app.NewService(source, classifier, cache, publisher, m.analysis, clock, app.Settings{
		Mode:         cfg.Mode(),
		CacheTTL:     cfg.CacheTTL,
		FetchTimeout: cfg.FetchTimeout,
		WatchList:    cfg.WatchList(),
	})

	srv := httpserver.NewServer(cfg, appSvc, healthChecks, upstreamChecks, metrics.Handler(reg), m.http)

	done := runGracefulShutdown(srv, func() {
		for _, fn := range cleanups {
			fn()
		}
	})

	slog.Info("Server starting", "port", cfg.Port, "watchlist", appSvc.WatchList())
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
