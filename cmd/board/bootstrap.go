package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/mobil-koeln/moko-board/internal/api"
	"github.com/mobil-koeln/moko-board/internal/board"
	"github.com/mobil-koeln/moko-board/internal/cache"
	"github.com/mobil-koeln/moko-board/internal/config"
	"github.com/mobil-koeln/moko-board/internal/logging"
	"github.com/mobil-koeln/moko-board/internal/stations"
)

// app holds everything a command needs once configuration is resolved
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	client  *api.Client
	service *board.Service
	closers []io.Closer
}

// Close releases cache connections
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Printf("close failed: %v", err)
		}
	}
}

// loadConfig reads the environment and applies flags the user set explicitly
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()
	flags := cmd.Flags()

	if flags.Changed("addr") {
		cfg.Server.Addr = flagAddr
	}
	if flags.Changed("static") {
		cfg.Server.StaticDir = flagStatic
	}
	if flags.Changed("stations") {
		cfg.Board.StationsFile = flagStations
	}
	if flags.Changed("policy") {
		cfg.Board.FailurePolicy = flagPolicy
	}
	if flags.Changed("window") {
		cfg.Board.WindowMinutes = flagWindow
	}
	if flags.Changed("cache") {
		cfg.Cache.Backend = flagCache
	}
	if flags.Changed("debug") && flagDebug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// bootstrap resolves configuration and wires the client and service. Logs
// go to logw.
func bootstrap(cmd *cobra.Command, logw io.Writer) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.New(
		logging.WithOutput(logw),
		logging.WithPrefix("[board] "),
		logging.WithDebug(logging.IsDebugLevel(cfg.LogLevel)),
	)

	a := &app{cfg: cfg, logger: logger}

	opts, closers, err := clientOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = closers

	a.client, err = api.NewClient(opts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	a.service, err = newService(cfg, a.client, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// clientOptions translates upstream and cache settings into client options
func clientOptions(cfg *config.Config, logger *logging.Logger) ([]api.ClientOption, []io.Closer, error) {
	opts := []api.ClientOption{
		api.WithBaseURL(cfg.Upstream.BaseURL),
		api.WithTimeout(cfg.Upstream.Timeout),
		api.WithRetries(cfg.Upstream.Retries),
		api.WithLogger(logger.Named("[api] ")),
	}

	if cfg.Upstream.RateLimit > 0 {
		opts = append(opts, api.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.Upstream.RateLimit), cfg.Upstream.RateBurst)))
	}

	var closers []io.Closer
	switch cfg.Cache.Backend {
	case config.CacheFile:
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = cache.DefaultCacheDir()
		}
		fc, err := cache.NewFileCache(dir, cfg.Cache.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file cache: %w", err)
		}
		if kept, err := fc.Cleanup(); err != nil {
			logger.Printf("cache cleanup in %s failed: %v", dir, err)
		} else {
			logger.Debugf("file cache %s: %d fresh entries, ttl %s", dir, kept, fc.TTL())
		}
		opts = append(opts, api.WithCache(fc))

	case config.CacheRedis:
		rc, err := cache.NewRedisCache(cache.NewRedisPool(cache.RedisPoolAddr(cfg.Cache.RedisAddr)), cfg.Cache.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		// Unreachable Redis only costs cache misses
		if err := rc.Ping(); err != nil {
			logger.Printf("redis at %s not reachable, continuing without hits: %v", cfg.Cache.RedisAddr, err)
		}
		opts = append(opts, api.WithCache(rc))
		closers = append(closers, rc)
	}

	return opts, closers, nil
}

// newService loads the registry and timezone and assembles the board service
func newService(cfg *config.Config, fetcher board.Fetcher, logger *logging.Logger) (*board.Service, error) {
	registry := stations.Default()
	if cfg.Board.StationsFile != "" {
		var err error
		registry, err = stations.Load(cfg.Board.StationsFile)
		if err != nil {
			return nil, err
		}
	}

	resolver, err := board.LoadTimeResolver(cfg.Board.Timezone, nil)
	if err != nil {
		return nil, err
	}

	policy, err := board.ParseFailurePolicy(cfg.Board.FailurePolicy)
	if err != nil {
		return nil, err
	}

	logger.Debugf("board: %d stops, window %d min, policy %s", registry.Len(), cfg.Board.WindowMinutes, policy)
	for _, id := range registry.StopIDs() {
		if registry.IsRestricted(id) {
			logger.Debugf("stop %s (%s): restricted types", id, registry.LookupName(id))
		} else {
			logger.Debugf("stop %s (%s): all types", id, registry.LookupName(id))
		}
	}

	return board.NewService(registry, resolver, fetcher,
		board.WithPolicy(policy),
		board.WithWindow(cfg.Board.WindowMinutes),
		board.WithLogger(logger.Named("[board] ")),
	), nil
}
