package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timeswap/config"
	"timeswap/cron"
	"timeswap/database"
	"timeswap/database/repository"
	"timeswap/handlers"
	"timeswap/middleware"
	"timeswap/routes"
	"timeswap/services/availability"
	"timeswap/services/booking"
	"timeswap/services/ledger"
	"timeswap/services/notification"
	"timeswap/services/rating"
	"timeswap/services/slot"
	"timeswap/services/tasks"
	"timeswap/services/user"
	"timeswap/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	shutdownTracing := utils.InitTracing("timeswap", config.AppConfig.OTLPEndpoint)
	defer shutdownTracing()

	notifier := notification.NewLogNotifier(logger)

	var (
		repos       repository.Repositories
		idempotency booking.IdempotencyGateway
		publisher   booking.EventPublisher
		asynqClient *asynq.Client
		worker      *asynq.Server
	)

	if config.UseMemoryStore() {
		logger.Info("main: using in-memory store")
		repos = repository.NewMemoryRepositories()
		idempotency = booking.NewMemoryIdempotencyGateway()
		publisher = &notification.InlinePublisher{Notifier: notifier, Logger: logger}
		utils.StartHealthMonitor(nil, nil, time.Minute)
	} else {
		database.InitDB()
		var err error
		repos, err = repository.NewMongoRepositories()
		if err != nil {
			logger.Fatal("main: failed to prepare repositories", zap.Error(err))
		}

		idemClient := utils.GetIdempotencyClient()
		idempotency = booking.NewRedisIdempotencyGateway(idemClient)

		asynqClient = asynq.NewClient(cron.QueueRedisOpt())
		publisher = tasks.NewAsynqPublisher(asynqClient, logger)
		worker = cron.InitEventWorker(notifier, logger)

		queueOpt := cron.QueueRedisOpt()
		queueClient := redis.NewClient(&redis.Options{Addr: queueOpt.Addr, Password: queueOpt.Password, DB: queueOpt.DB})
		utils.StartHealthMonitor([]*redis.Client{idemClient, queueClient}, database.MongoClient, 30*time.Second)
	}

	// services.
	userService := user.NewUserService(repos.Users, config.AppConfig.SignupCredits, logger)
	rules := slot.DefaultRules
	if len(config.AppConfig.SlotAllowedDurations) > 0 {
		rules = slot.Rules{
			MinCost:          config.AppConfig.SlotMinCost,
			MaxCost:          config.AppConfig.SlotMaxCost,
			AllowedDurations: config.AppConfig.SlotAllowedDurations,
		}
	}
	slotService := slot.NewSlotService(repos.Slots, userService, rules, logger)

	tracker := availability.NewSlotTracker(repos.Slots, logger, config.AppConfig.ReserveMaxRetries)
	bookingService := booking.NewBookingService(
		repos.Bookings,
		repos.Users,
		tracker,
		ledger.NewLedger(repos.Users, logger),
		rating.NewAggregator(repos.Users, logger, config.AppConfig.RatingMaxRetries),
		logger,
	)
	bookingService.Idempotency = idempotency
	bookingService.Events = publisher
	bookingService.ReminderLead = config.ReminderLead()

	sweeper, err := cron.StartExpirySweep(tracker, config.AppConfig.ExpirySweepSchedule, logger)
	if err != nil {
		logger.Fatal("main: failed to schedule expiry sweep", zap.Error(err))
	}

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin, logger))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewUserHandler(userService),
		handlers.NewSlotHandler(slotService),
		handlers.NewBookingHandler(bookingService),
	)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	<-sweeper.Stop().Done()
	if worker != nil {
		worker.Shutdown()
	}
	if asynqClient != nil {
		_ = asynqClient.Close()
	}
	if !config.UseMemoryStore() {
		if err := database.Disconnect(ctx); err != nil {
			logger.Warn("main: mongo disconnect failed", zap.Error(err))
		}
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
