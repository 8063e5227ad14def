package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	commonHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"fairtickets/internal/application/usecases/directory"
	"fairtickets/internal/application/usecases/ledger"
	"fairtickets/internal/application/usecases/marketplace"
	"fairtickets/internal/clock"
	"fairtickets/internal/domain/resale"
	"fairtickets/internal/infrastructure/clients"
	"fairtickets/internal/infrastructure/event_publisher"
	"fairtickets/internal/infrastructure/memory"
	"fairtickets/internal/interfaces/http"
	ticketsMessage "fairtickets/internal/interfaces/message"
	"fairtickets/internal/interfaces/message/events"
	"fairtickets/internal/interfaces/message/outbox"
	"fairtickets/internal/observability"
	"fairtickets/internal/repository"
)

const redisKeyPrefix = "fairtickets:"

type Config struct {
	HTTPAddr            string
	CollaboratorTimeout time.Duration
	JaegerEndpoint      string
}

type collaborators interface {
	resale.VerificationOracle
	http.Registry
}

type balanceBook interface {
	resale.Payments
	http.Wallets
}

type App struct {
	logger        zerolog.Logger
	router        *message.Router
	srv           *http.Server
	forwarder     *outbox.Forwarder
	traceProvider *tracesdk.TracerProvider

	db        *sqlx.DB
	store     *repository.Store
	directory *directory.Directory
	market    *marketplace.Marketplace
}

// NewApp wires the service. redisClient and db are optional: without Redis
// the registry, the balance book and the pub/sub live in process; without
// Postgres nothing survives a restart.
func NewApp(
	config Config,
	watermillLogger watermill.LoggerAdapter,
	redisClient *redis.Client,
	db *sqlx.DB,
) (*App, error) {
	traceProvider, err := observability.ConfigureTraceProvider(config.JaegerEndpoint)
	if err != nil {
		return nil, err
	}

	var (
		brokerPublisher message.Publisher
		newSubscriber   events.SubscriberConstructor
		registry        collaborators
		wallets         balanceBook
	)
	if redisClient != nil {
		brokerPublisher, err = redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: redisClient,
		}, watermillLogger)
		if err != nil {
			return nil, err
		}
		newSubscriber = events.RedisSubscribers(redisClient, watermillLogger)
		registry = clients.NewRedisRegistry(redisClient, redisKeyPrefix)
		wallets = clients.NewRedisWallets(redisClient, redisKeyPrefix)
	} else {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
		brokerPublisher = pubSub
		newSubscriber = events.ChannelSubscribers(pubSub)
		registry = memory.NewRegistry()
		wallets = memory.NewBank()
	}

	var publisher message.Publisher = observability.PublisherWithTracing{Publisher: brokerPublisher}
	publisher = event_publisher.MetadataPublisherDecorator{Publisher: publisher}

	eventBus, err := events.NewEventBus(publisher, watermillLogger)
	if err != nil {
		return nil, err
	}

	deps := ledger.Deps{
		Oracle:   registry,
		Payments: wallets,
		Store:    memory.Store{},
		Tx:       memory.Transactor{},
		Events:   eventBus,
		Clock:    clock.NewSystem(),
	}

	var (
		store      *repository.Store
		fwd        *outbox.Forwarder
		eventsRepo ticketsMessage.EventRepository
	)
	if db != nil {
		getter := trmsqlx.DefaultCtxGetter
		store = repository.NewStore(db, getter)

		deps.Store = store
		deps.Tx = repository.NewTransactor(manager.Must(trmsqlx.NewDefaultFactory(db)))
		deps.Events = outbox.NewTxPublisher(db, getter, watermillLogger)
		eventsRepo = repository.NewEventsRepo(db)

		fwd, err = outbox.NewForwarder(db, brokerPublisher, watermillLogger, outbox.ForwarderConfig{})
		if err != nil {
			return nil, err
		}
	}

	dir := directory.New(deps, ledger.WithCallTimeout(config.CollaboratorTimeout))
	market := marketplace.New(marketplace.Deps{
		Directory: dir,
		Store:     deps.Store,
		Tx:        deps.Tx,
		Events:    deps.Events,
		Clock:     deps.Clock,
	})

	router, err := ticketsMessage.NewRouter(
		watermillLogger,
		ticketsMessage.RouterConfig{
			NewSubscriber: newSubscriber,
			Publisher:     publisher,
			EventsRepo:    eventsRepo,
		},
		events.NewHandler(market),
	)
	if err != nil {
		return nil, err
	}

	srv := http.NewServer(
		commonHTTP.NewEcho(),
		config.HTTPAddr,
		dir,
		market,
		registry,
		wallets,
		router.IsRunning,
	)

	return &App{
		logger:        zerolog.New(os.Stdout).With().Timestamp().Logger(),
		router:        router,
		srv:           srv,
		forwarder:     fwd,
		traceProvider: traceProvider,
		db:            db,
		store:         store,
		directory:     dir,
		market:        market,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info().Msg("starting router")

		return a.router.Run(ctx)
	})

	if a.forwarder != nil {
		g.Go(func() error {
			<-a.router.Running()
			a.logger.Info().Msg("starting outbox forwarder")

			return a.forwarder.Run(ctx)
		})
	}

	g.Go(func() error {
		<-a.router.Running()
		a.logger.Info().Msg("router is running")

		a.logger.Info().Msg("starting server")
		return a.srv.Start()
	})

	g.Go(func() error {
		// Shut down
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := a.srv.Stop(shutdownCtx)
		if err != nil {
			a.logger.Err(err).Msg("error stopping server")
		}

		if tpErr := a.traceProvider.Shutdown(shutdownCtx); tpErr != nil {
			a.logger.Err(tpErr).Msg("error stopping trace provider")
		}

		return err
	})

	// Will block until all goroutines finish
	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// restore creates the schema and reloads committed state into the in-process
// ledgers and listings.
func (a *App) restore(ctx context.Context) error {
	if a.db == nil {
		return nil
	}

	if err := repository.InitializeDBSchema(ctx, a.db); err != nil {
		return err
	}

	snapshots, err := a.store.LoadSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	a.directory.Restore(snapshots)

	listings, err := a.store.LoadListings(ctx)
	if err != nil {
		return fmt.Errorf("load listings: %w", err)
	}
	a.market.Restore(listings)

	a.logger.Info().
		Int("events", len(snapshots)).
		Int("listings", len(listings)).
		Msg("state restored")

	return nil
}
