package bootstrap

import (
	"context"
	"fmt"
	"time"

	"pazuzu-registry/internal/config"
	"pazuzu-registry/internal/controller"
	"pazuzu-registry/internal/pkg/logger"
	"pazuzu-registry/internal/repository/memory"
	"pazuzu-registry/internal/repository/unitofwork"
	"pazuzu-registry/internal/service"
	catalogEvents "pazuzu-registry/pkg/catalog/events"
	"pazuzu-registry/pkg/catalog/feature"
	"pazuzu-registry/pkg/catalog/tag"
	"pazuzu-registry/pkg/database"
	pktNats "pazuzu-registry/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	FeatureController controller.IFeatureController
	TagController     controller.ITagController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	NatsSubscriber  *pktNats.Subscriber // nil when NATS is unavailable

	Logger logger.ILogger

	closers []func()
}

// NewRepositoryFactory picks the store named by DB_DRIVER.
func NewRepositoryFactory(cfg *config.Config) (unitofwork.RepositoryFactory, error) {
	switch cfg.Database.Driver {
	case "memory":
		return memory.NewRepositoryFactory(memory.NewStore()), nil
	case "postgres", "":
		if cfg.Database.Connection == "" {
			return nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
		}
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(db); err != nil {
				return nil, err
			}
		}
		return unitofwork.NewRepositoryFactory(db), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Database.Driver)
	}
}

func NewContainer(uowFactory unitofwork.RepositoryFactory, cfg *config.Config, sysLogger logger.ILogger) *Container {
	c := &Container{Logger: sysLogger}

	// 1. Event Bus
	// Publishing blocks until the plan cache consumer acked. Plans are also
	// checked against the store revision, so other replicas stay correct
	// without NATS.
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{BlockPublishUntilSubscriberAck: true},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 2. Infrastructure
	var sink catalogEvents.EventSink
	if cfg.Events.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Events.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			sink = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.Events.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
		} else {
			c.NatsSubscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	planCache := memory.NewPlanCache(time.Duration(cfg.Cache.PlanTTLSeconds) * time.Second)

	// 3. Domain
	tagManager := tag.NewManager()
	featureManager := feature.NewManager(tagManager, sysLogger)
	eventPublisher := catalogEvents.NewSinkPublisher(sink, sysLogger)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Events.FeatureTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Events.FeatureTopic, planCache, sysLogger)

	featureService := service.NewFeatureService(
		uowFactory,
		featureManager,
		planCache,
		publisherService,
		eventPublisher,
		sysLogger,
		cfg.Database.TxMaxRetries,
	)
	tagService := service.NewTagService(uowFactory, tagManager, sysLogger, cfg.Database.TxMaxRetries)

	// 5. Controllers
	c.FeatureController = controller.NewFeatureController(featureService)
	c.TagController = controller.NewTagController(tagService)

	return c
}

// Start runs the background consumers. Remote events from other replicas
// only flush the local plan cache.
func (c *Container) Start(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return fmt.Errorf("start plan cache consumer: %w", err)
	}
	if c.NatsSubscriber != nil {
		if err := c.NatsSubscriber.Subscribe(ctx, pktNats.Subject(">"), "", c.ConsumerService.HandleRemoteEvent); err != nil {
			c.Logger.Warn("BOOTSTRAP", "Failed to subscribe to remote feature events", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
