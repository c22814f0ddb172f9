// Package bootstrap provides dependency initialization for the video
// generation API.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/brandforge/videogen-api/internal/config"
	"github.com/brandforge/videogen-api/internal/job"
	"github.com/brandforge/videogen-api/internal/keystore"
	"github.com/brandforge/videogen-api/internal/openai"
	"github.com/brandforge/videogen-api/internal/provider"
	"github.com/brandforge/videogen-api/internal/storage"
	"github.com/brandforge/videogen-api/internal/wavespeed"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Service      *job.Service
	Orchestrator *job.Orchestrator
	Registry     *provider.Registry
	KeyStore     provider.KeyStore

	closers []func() error
}

// Close releases held resources (database handles, Redis connections).
func (d *Dependencies) Close() error {
	var firstErr error
	for _, c := range d.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewDependencies creates and initializes all dependencies for the
// application. Backends not present in the config fall back to in-memory
// implementations.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	keys, err := initKeyStore(cfg, logger, deps)
	if err != nil {
		return nil, err
	}

	repo, err := initJobRepository(cfg, logger, deps)
	if err != nil {
		return nil, err
	}

	artifacts, err := initArtifactStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	var openaiOpts []openai.ClientOption
	if cfg.OpenAIBaseURL != "" {
		openaiOpts = append(openaiOpts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}
	var wavespeedOpts []wavespeed.ClientOption
	if cfg.WaveSpeedBaseURL != "" {
		wavespeedOpts = append(wavespeedOpts, wavespeed.WithBaseURL(cfg.WaveSpeedBaseURL))
	}

	registry := provider.NewRegistry(keys,
		provider.NewOpenAIAdapter(openai.NewClient(openaiOpts...)),
		provider.NewWaveSpeedAdapter(wavespeed.NewClient(wavespeedOpts...)),
	)

	pollCfg := job.PollConfig{
		Interval:    cfg.PollInterval,
		MaxDuration: cfg.PollMaxDuration,
		MaxAttempts: cfg.PollMaxAttempts,
	}

	deps.Service = job.NewService(repo, registry, artifacts, logger)
	deps.Orchestrator = job.NewOrchestrator(repo, registry, artifacts, job.NewRealClock(), pollCfg, logger)
	deps.Registry = registry
	deps.KeyStore = keys

	return deps, nil
}

// initKeyStore creates the provider key config store.
func initKeyStore(cfg *config.Config, logger *slog.Logger, deps *Dependencies) (provider.KeyStore, error) {
	if !cfg.RedisEnabled() {
		logger.Info("in-memory key store configured")
		return keystore.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	deps.closers = append(deps.closers, client.Close)
	logger.Info("redis key store configured",
		slog.String("addr", cfg.RedisAddr),
	)
	return keystore.NewRedisStore(client, ""), nil
}

// initJobRepository creates the job store backend.
func initJobRepository(cfg *config.Config, logger *slog.Logger, deps *Dependencies) (job.Repository, error) {
	if !cfg.SQLiteEnabled() {
		logger.Info("in-memory job store configured")
		return job.NewMemoryRepository(), nil
	}

	repo, err := job.NewSQLiteRepository(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("create sqlite job store: %w", err)
	}
	deps.closers = append(deps.closers, repo.Close)
	logger.Info("sqlite job store configured",
		slog.String("path", cfg.SQLitePath),
	)
	return repo, nil
}

// initArtifactStore creates the object storage backend.
func initArtifactStore(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	if !cfg.S3Enabled() {
		logger.Info("in-memory artifact store configured")
		return storage.NewMemoryStore(""), nil
	}

	store, err := storage.NewS3Store(storage.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 artifact store: %w", err)
	}
	logger.Info("S3 artifact store configured",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("endpoint", cfg.S3Endpoint),
	)
	return store, nil
}
