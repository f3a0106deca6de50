// Command apiget issues a single request through the authenticated caching
// client and prints the response body. Configuration comes from HTTPKIT_*
// environment variables; see internal/config.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/corander/httpkit/api"
	"github.com/corander/httpkit/cache"
	"github.com/corander/httpkit/internal/config"
	"github.com/corander/httpkit/token"
)

func main() {
	method := flag.String("method", http.MethodGet, "HTTP method (GET, POST, PUT, DELETE)")
	path := flag.String("path", "/", "request path, resolved against HTTPKIT_BASE_URL")
	body := flag.String("body", "", "request body for POST/PUT")
	noCache := flag.Bool("no-cache", false, "skip the cache for this request")
	force := flag.Bool("force", false, "bypass the cache read but refill on success")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.BaseURL == "" {
		fmt.Fprintln(os.Stderr, "HTTPKIT_BASE_URL is required")
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

	tokens, err := openTokens(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("open token store")
	}

	opts := []api.Option{
		api.WithRefreshURL(cfg.RefreshURL),
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
	}
	if manager, err := openCache(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("open cache")
	} else if manager != nil {
		opts = append(opts, api.WithCache(manager))
	}

	client := api.New(tokens, opts...)

	reqOpts := []api.RequestOption{}
	if *noCache {
		reqOpts = append(reqOpts, api.WithUseCache(false))
	}
	if *force {
		reqOpts = append(reqOpts, api.WithForceRefresh())
	}
	if *body != "" {
		reqOpts = append(reqOpts, api.WithBody(*body))
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/" + strings.TrimLeft(*path, "/")
	ctx := context.Background()

	var resp *api.Response
	switch strings.ToUpper(*method) {
	case http.MethodGet:
		resp, err = client.Get(ctx, url, nil, reqOpts...)
	case http.MethodPost:
		resp, err = client.Post(ctx, url, nil, reqOpts...)
	case http.MethodPut:
		resp, err = client.Put(ctx, url, nil, reqOpts...)
	case http.MethodDelete:
		resp, err = client.Delete(ctx, url, nil, reqOpts...)
	default:
		logger.Fatal().Str("method", *method).Msg("unsupported method")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("request failed")
	}

	if resp.FromCache {
		logger.Info().Msg("served from cache")
	}
	fmt.Println(string(resp.Body))
}

func openTokens(cfg *config.Config) (token.Store, error) {
	if cfg.TokenFile == "" {
		return token.NewMemoryStore(), nil
	}
	return token.NewFileStore(cfg.TokenFile)
}

func openCache(cfg *config.Config, logger zerolog.Logger) (*cache.Manager, error) {
	if !cfg.HasCache() {
		return nil, nil
	}

	var (
		store cache.Store
		err   error
	)
	if cfg.RedisAddr != "" {
		store, err = cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), "")
	} else {
		store, err = cache.NewFileStore(cfg.CacheDir)
	}
	if err != nil {
		return nil, err
	}

	return cache.NewManager(store,
		cache.WithPolicy(cache.NewFixedTTLPolicy(cfg.CacheTTL)),
		cache.WithLogger(logger),
	), nil
}
