package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	calendarApp "github.com/felixgeelhaar/slotwise/internal/calendar/application"
	"github.com/felixgeelhaar/slotwise/internal/calendar/infrastructure/caldav"
	"github.com/felixgeelhaar/slotwise/internal/calendar/infrastructure/ics"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/queries"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/services"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/subscribers"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	sharedApplication "github.com/felixgeelhaar/slotwise/internal/shared/application"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/slotwise/pkg/config"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	// Focus patterns
	Store        *StoreBackend
	FocusStore   *services.FocusPatternStore
	Engine       *services.RecommendationEngine
	EngineConfig services.EngineConfig

	// Calendar
	Calendar        calendarApp.CommitmentSource
	CalendarBreaker *calendarApp.BreakerSource
	Booker          calendarApp.SlotBooker

	// Events
	Bus            *eventbus.InProcessEventBus
	RabbitMQ       *eventbus.RabbitMQPublisher
	EventPublisher eventbus.Publisher

	// Handlers
	RecommendSlotsHandler   *queries.RecommendSlotsHandler
	RecordCompletionHandler *commands.RecordCompletionHandler
	BookSlotHandler         *commands.BookSlotHandler
	CompletionSubscriber    *subscribers.CompletionSubscriber
}

// NewContainer wires every dependency from cfg. metrics may be nil.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics observability.Metrics) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Health:  observability.NewHealthRegistry(),
	}

	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		return nil, err
	}
	engineCfg, profile, err := applyTuning(services.DefaultEngineConfig(), domain.DefaultFocusProfile(), tuning)
	if err != nil {
		return nil, err
	}
	c.EngineConfig = engineCfg

	store, err := NewRepositoryFactory(cfg, logger).Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open focus pattern store: %w", err)
	}
	c.Store = store
	c.Health.Register("store", observability.PingChecker(store.Driver.String(), observability.HealthStatusUnhealthy, store.Ping))

	c.FocusStore = services.NewFocusPatternStore(store.Repo, nil, logger)
	c.Engine = services.NewRecommendationEngine(engineCfg, c.FocusStore, logger).WithProfile(profile)

	c.initCalendar()

	if err := c.initEvents(); err != nil {
		c.Close()
		return nil, err
	}

	c.RecommendSlotsHandler = queries.NewRecommendSlotsHandler(c.Engine, c.Calendar, metrics, logger)
	c.RecordCompletionHandler = commands.NewRecordCompletionHandler(c.FocusStore, c.EventPublisher, cfg.UserUUID(), metrics, logger)
	if c.Booker != nil {
		c.BookSlotHandler = commands.NewBookSlotHandler(c.Booker, calendarApp.NewConflictDetector(c.Calendar), metrics, logger)
	}

	c.CompletionSubscriber = subscribers.NewCompletionSubscriber(c.RecordCompletionHandler, metrics, logger)
	c.Bus.RegisterConsumer(c.CompletionSubscriber)

	logger.Debug("container ready",
		"store", store.Driver.String(),
		"calendar", cfg.CalendarSource,
		"broker", c.RabbitMQ != nil,
	)
	return c, nil
}

func (c *Container) initCalendar() {
	cfg := c.Config
	var source calendarApp.CommitmentSource

	switch cfg.CalendarSource {
	case config.CalendarSourceICS:
		source = ics.NewSource(cfg.CalendarICSURL, c.Logger)
	case config.CalendarSourceCalDAV:
		dav := caldav.NewSource(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, c.Logger).
			WithCalendarPath(cfg.CalDAVCalendarPath)
		source = dav
		c.Booker = dav
	default:
		c.Calendar = calendarApp.NoCommitments{}
		return
	}

	breakerCfg := calendarApp.DefaultBreakerConfig()
	breakerCfg.Name = cfg.CalendarSource
	breakerCfg.FailureThreshold = cfg.CalendarBreakerFailures
	breakerCfg.Timeout = cfg.CalendarBreakerTimeout
	breakerCfg.Interval = cfg.CalendarBreakerInterval

	c.CalendarBreaker = calendarApp.NewBreakerSource(source, breakerCfg, c.Logger)
	c.Calendar = c.CalendarBreaker
	c.Health.Register("calendar", func(context.Context) observability.HealthCheckResult {
		state := c.CalendarBreaker.State()
		if state == "open" {
			return observability.HealthCheckResult{
				Status:  observability.HealthStatusDegraded,
				Message: cfg.CalendarSource + " circuit open",
			}
		}
		return observability.HealthCheckResult{
			Status:  observability.HealthStatusHealthy,
			Message: cfg.CalendarSource + " circuit " + state,
		}
	})
}

func (c *Container) initEvents() error {
	c.Bus = eventbus.NewInProcessEventBus(c.Logger)
	c.EventPublisher = c.Bus

	if c.Config.RabbitMQURL == "" {
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
		return nil
	}

	c.RabbitMQ = publisher
	c.EventPublisher = publisher
	c.Health.Register("broker", observability.PingChecker("rabbitmq", observability.HealthStatusDegraded, publisher.Ping))
	return nil
}

// EmitTaskCompleted publishes a completion. Without a broker it is handled
// in-process before returning and handler errors are returned.
func (c *Container) EmitTaskCompleted(ctx context.Context, event domain.TaskCompleted) error {
	event.SetMetadata(sharedApplication.NewEventMetadata(ctx, c.Config.UserUUID(), ""))

	if c.RabbitMQ != nil {
		return eventbus.PublishDomainEvent(ctx, c.RabbitMQ, event)
	}

	envelope, err := eventbus.Envelope(event)
	if err != nil {
		return err
	}
	return c.Bus.PublishConsumedEvent(ctx, envelope)
}

// NewCompletionConsumer connects a RabbitMQ consumer that feeds completions
// into the focus-pattern store.
func (c *Container) NewCompletionConsumer() (*eventbus.RabbitMQConsumer, error) {
	if c.Config.RabbitMQURL == "" {
		return nil, errors.New("RABBITMQ_URL is required to run the worker")
	}

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:       c.Config.RabbitMQURL,
		QueueName: c.Config.RabbitMQQueue,
		Prefetch:  c.Config.RabbitMQPrefetch,
		Logger:    c.Logger,
	}, nil)
	if err != nil {
		return nil, err
	}
	consumer.RegisterConsumer(c.CompletionSubscriber)
	return consumer, nil
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.RabbitMQ != nil {
		if err := c.RabbitMQ.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			c.Logger.Warn("error closing focus pattern store", "driver", c.Store.Driver.String(), "error", err)
		} else {
			c.Logger.Debug("focus pattern store closed", "driver", c.Store.Driver.String())
		}
	}
}
