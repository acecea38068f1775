package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"seasonmap/internal/anilist"
	"seasonmap/internal/config"
	"seasonmap/internal/httpretry"
	"seasonmap/internal/logging"
	"seasonmap/internal/mapper"
	"seasonmap/internal/notifications"
	"seasonmap/internal/showindex"
	"seasonmap/internal/tmdb"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		var override string
		if c.logLevelFlag != nil {
			override = *c.logLevelFlag
		}
		logger, err := logging.NewFromConfig(cfg, override)
		if err != nil {
			c.loggerErr = fmt.Errorf("setup logging: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// services bundles the clients one command invocation needs. The show index
// is loaded lazily so single lookups with a known show ID never download it.
type services struct {
	cfg      *config.Config
	logger   *slog.Logger
	executor *httpretry.Executor
	tmdb     *tmdb.Client
	anilist  *anilist.Client
	shows    *showindex.Loader
	mapper   *mapper.Mapper
	notifier notifications.Service
}

func (c *commandContext) newServices(opts ...httpretry.Option) (*services, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	executor := httpretry.New(logger, opts...)
	tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, executor, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "tmdb client initialization failed", "tmdb_client_init_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify tmdb.api_key in config"),
			logging.String(logging.FieldImpact, "mapping cannot proceed"))
		return nil, fmt.Errorf("create TMDB client: %w", err)
	}
	shows := showindex.NewLoader(executor, cfg.Mapping.URL, logger)
	media := anilist.New(executor, cfg.AniList.URL, logger)

	return &services{
		cfg:      cfg,
		logger:   logger,
		executor: executor,
		tmdb:     tmdbClient,
		anilist:  media,
		shows:    shows,
		mapper:   mapper.New(shows, media, tmdbClient, logger),
		notifier: notifications.NewService(cfg, executor),
	}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
