package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/adapters/elastic"
	"github.com/adityaparmar/onebox/internal/adapters/httpapi"
	"github.com/adityaparmar/onebox/internal/adapters/huggingface"
	"github.com/adityaparmar/onebox/internal/adapters/imapsync"
	"github.com/adityaparmar/onebox/internal/adapters/slack"
	"github.com/adityaparmar/onebox/internal/config"
	"github.com/adityaparmar/onebox/internal/core"
	"github.com/adityaparmar/onebox/internal/factory"
	"github.com/adityaparmar/onebox/internal/logging"
	"github.com/adityaparmar/onebox/internal/ports"
	"github.com/adityaparmar/onebox/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewReplyFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}

	// Register the index gateway as both concrete type and port
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*elastic.Client, error) {
		elasticCfg := cfg.GetElastic()
		pingInterval, err := cfg.GetDuration("elastic.ping_interval")
		if err != nil {
			return nil, err
		}
		return elastic.NewClient(elasticCfg.URL, pingInterval, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *elastic.Client) core.EmailIndex { return c }); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.Classifier {
		classifierCfg := cfg.GetClassifier()
		return huggingface.NewClient(classifierCfg.APIURL, classifierCfg.APIToken, logger)
	}); err != nil {
		return nil, err
	}

	// Register reply generator and advisor
	if err := container.Provide(func(f *factory.ReplyFactory) (core.ReplyGenerator, error) {
		return f.CreateReplyGenerator()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(gen core.ReplyGenerator, logger *zap.Logger) *core.ReplyAdvisor {
		return core.NewReplyAdvisor(gen, core.DefaultReferences, logger)
	}); err != nil {
		return nil, err
	}

	// Register category cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.CategoryCache, error) {
		return f.CreateCategoryCache()
	}); err != nil {
		return nil, err
	}

	// Register ingest service
	if err := container.Provide(func(
		classifier core.Classifier,
		index core.EmailIndex,
		cache core.CategoryCache,
		logger *zap.Logger,
		f *factory.CacheFactory,
	) (*core.IngestService, error) {
		ttl, err := f.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		return core.NewIngestService(classifier, index, cache, logger, f.IsCacheEnabled(), ttl), nil
	}); err != nil {
		return nil, err
	}

	// Register notifier
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.Notifier {
		return slack.NewNotifier(cfg.GetNotifier().WebhookURL, logger)
	}); err != nil {
		return nil, err
	}

	// Register sync engine
	if err := container.Provide(func(
		cfg *config.Config,
		svc *core.IngestService,
		index core.EmailIndex,
		notifier core.Notifier,
		logger *zap.Logger,
	) (ports.SyncEngine, error) {
		accounts, err := cfg.GetAccounts()
		if err != nil {
			return nil, err
		}
		backfillWindow, err := cfg.GetDuration("sync.backfill_window")
		if err != nil {
			return nil, err
		}
		lookback, err := cfg.GetDuration("sync.empty_index_lookback")
		if err != nil {
			return nil, err
		}
		return imapsync.NewEngine(accounts, svc, index, notifier, logger, backfillWindow, lookback), nil
	}); err != nil {
		return nil, err
	}

	// Register HTTP API server
	if err := container.Provide(func(
		cfg *config.Config,
		index core.EmailIndex,
		advisor *core.ReplyAdvisor,
		logger *zap.Logger,
	) ports.APIServer {
		return httpapi.NewServer(index, advisor, cfg.GetServer().ListenAddress, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
