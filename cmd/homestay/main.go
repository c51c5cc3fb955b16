package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	bookingapp "homestay/internal/app/handlers/booking"
	paymentapp "homestay/internal/app/handlers/payments"
	reviewapp "homestay/internal/app/handlers/reviews"
	"homestay/internal/app/middleware"
	appoutbox "homestay/internal/app/outbox"
	"homestay/internal/app/queries"
	"homestay/internal/app/schedule"
	"homestay/internal/app/uow"
	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/money"
	kafkabroker "homestay/internal/infra/broker/kafka"
	"homestay/internal/infra/config"
	mongodb "homestay/internal/infra/db/mongo"
	"homestay/internal/infra/gateway/chapa"
	ginserver "homestay/internal/infra/http/gin"
	"homestay/internal/infra/obs"
	infraoutbox "homestay/internal/infra/outbox"
	"homestay/internal/infra/storage/memory"
	redisstore "homestay/internal/infra/storage/redis"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("LISTINGS_FIXTURES", filepath.Join("data", "listings.json"))
	if err := app.loadListingFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go schedule.Runner{Interval: cfg.StatsInterval, Logger: logger}.Run(ctx, "listing-count", func(ctx context.Context) error {
		n, err := app.listings.Count(ctx)
		if err != nil {
			return err
		}
		app.metrics.SetListingCount(n)
		return nil
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	listings listing.Repository
	metrics  obs.Metrics
	worker   *infraoutbox.Worker
	ready    func() error
	close    func()
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	app := application{
		metrics: obs.Metrics{},
		ready:   func() error { return nil },
		close:   func() {},
	}

	var (
		uowFactory  uow.UoWFactory
		outboxStore appoutbox.Outbox
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		store := infraoutbox.NewStore(client.DB)
		listingRepo := mongodb.NewListingRepository(client.DB)
		uowFactory = mongodb.Factory{
			DB:          client.DB,
			ListingRepo: listingRepo,
			BookingRepo: mongodb.NewBookingRepository(client.DB),
			PaymentRepo: mongodb.NewPaymentRepository(client.DB),
			ReviewRepo:  mongodb.NewReviewRepository(client.DB),
		}
		outboxStore = store
		app.listings = listingRepo
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafkabroker.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			app.worker = &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Logger:      logger,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Source:      "app://homestay",
				Backoff:     cfg.RetryBackoff,
			}
			app.close = func() { _ = producer.Close() }
		} else {
			logger.Warn("KAFKA_BROKERS not set, outbox events will not be published")
		}

	default:
		listingRepo := memory.NewListingRepository()
		uowFactory = memory.Factory{
			ListingRepo: listingRepo,
			BookingRepo: memory.NewBookingRepository(),
			PaymentRepo: memory.NewPaymentRepository(),
			ReviewRepo:  memory.NewReviewRepository(),
		}
		outboxStore = memory.NewOutbox()
		app.listings = listingRepo
	}

	var idStore middleware.IdempotencyStore
	if cfg.RedisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return application{}, fmt.Errorf("redis connect: %w", err)
		}
		idStore = redisstore.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)
	} else {
		idStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	processor := &chapa.Client{
		HTTPClient: &http.Client{Timeout: cfg.GatewayTimeout},
		BaseURL:    cfg.ChapaBaseURL,
		SecretKey:  cfg.ChapaSecretKey,
		Logger:     logger,
		Metrics:    app.metrics,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Logger:     logger,
	})
	transitions := &bookingapp.TransitionHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Logger:     logger,
	}
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.ConfirmBookingCommand, *bookingapp.TransitionResult](transitions.Confirm))
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CompleteBookingCommand, *bookingapp.TransitionResult](transitions.Complete))
	commands.RegisterHandler(commandBus, paymentapp.InitializePaymentCommand{}.Key(), &paymentapp.InitializePaymentHandler{
		UoWFactory:  uowFactory,
		Processor:   processor,
		Outbox:      outboxStore,
		CallbackURL: cfg.SiteURL + "/api/v1/payments/webhook",
		Logger:      logger,
	})
	commands.RegisterHandler(commandBus, paymentapp.VerifyPaymentCommand{}.Key(), &paymentapp.VerifyPaymentHandler{
		UoWFactory: uowFactory,
		Processor:  processor,
		Outbox:     outboxStore,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, reviewapp.SubmitReviewCommand{}.Key(), &reviewapp.SubmitReviewHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Logger:     logger,
	})

	queryBus := queries.NewInMemoryBus()
	bookingQueries := &bookingapp.QueryHandler{UoWFactory: uowFactory}
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(),
		queries.HandlerFunc[bookingapp.GetBookingQuery, *dto.Booking](bookingQueries.Get))
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(),
		queries.HandlerFunc[bookingapp.ListGuestBookingsQuery, *dto.BookingCollection](bookingQueries.ListByGuest))
	queries.RegisterHandler(queryBus, bookingapp.ListListingBookingsQuery{}.Key(),
		queries.HandlerFunc[bookingapp.ListListingBookingsQuery, *dto.BookingCollection](bookingQueries.ListByListing))
	reviewQueries := &reviewapp.QueryHandler{UoWFactory: uowFactory}
	queries.RegisterHandler(queryBus, reviewapp.ListListingReviewsQuery{}.Key(),
		queries.HandlerFunc[reviewapp.ListListingReviewsQuery, *reviewapp.ReviewCollection](reviewQueries.ListByListing))
	queries.RegisterHandler(queryBus, reviewapp.GetListingStatsQuery{}.Key(),
		queries.HandlerFunc[reviewapp.GetListingStatsQuery, *dto.ListingStats](reviewQueries.Stats))

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(),
		middleware.Idempotency(idStore, nil),
		middleware.Serialize(middleware.NewKeyedLocks()),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus, middleware.QueryValidation())

	app.handlers = ginserver.Handlers{
		Booking: ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Metrics: app.metrics},
		Payment: ginserver.PaymentHandler{Commands: commandBusWithMiddleware, Metrics: app.metrics},
		Review:  ginserver.ReviewHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware},
	}
	return app, nil
}

func (a application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		price, err := money.FromString(fx.NightlyPrice, fx.Currency)
		if err != nil {
			logger.Error("fixture price invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		l, err := listing.New(listing.CreateParams{
			ID:           listing.ListingID(fx.ID),
			Host:         fx.Host,
			Title:        fx.Title,
			NightlyPrice: price,
			MaxGuests:    fx.MaxGuests,
			Available:    fx.Available,
			Now:          now,
		})
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := a.listings.Save(ctx, l); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", l.ID)
	}
	return nil
}

type listingFixture struct {
	ID           string `json:"id"`
	Host         string `json:"host"`
	Title        string `json:"title"`
	NightlyPrice string `json:"nightly_price"`
	Currency     string `json:"currency"`
	MaxGuests    int    `json:"max_guests"`
	Available    bool   `json:"available"`
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
