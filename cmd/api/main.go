package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/medcourse-service/internal/api/http"
	"github.com/spec-kit/medcourse-service/internal/api/http/handlers"
	"github.com/spec-kit/medcourse-service/internal/auth"
	"github.com/spec-kit/medcourse-service/internal/cache"
	"github.com/spec-kit/medcourse-service/internal/config"
	"github.com/spec-kit/medcourse-service/internal/domain"
	"github.com/spec-kit/medcourse-service/internal/events"
	"github.com/spec-kit/medcourse-service/internal/observability"
	"github.com/spec-kit/medcourse-service/internal/persistence"
	"github.com/spec-kit/medcourse-service/internal/pipeline"
	"github.com/spec-kit/medcourse-service/internal/repository"
	"github.com/spec-kit/medcourse-service/internal/service"
	"github.com/spec-kit/medcourse-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	slotRepo := repository.NewSlotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	promoRepo := repository.NewPromoRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	queryCache := cache.New(cfg.Cache)
	dispatcher := pipeline.NewDispatcher(
		pipeline.Logging(logger, auditRepo),
		pipeline.Validation(),
		pipeline.Caching(queryCache),
		pipeline.Invalidation(queryCache, logger),
		pipeline.Transaction(pool, cfg.Postgres.TxMaxAttempts, logger),
	)

	eventBus := events.NewInMemoryDispatcher()
	if cfg.AMQP.Enabled() {
		publisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			logger.Fatal("failed to connect amqp", zap.Error(err))
		}
		defer publisher.Close()
		publisher.Attach(eventBus)
	}

	authService := service.NewAuthService(*cfg, userRepo, dispatcher)
	userService := service.NewUserService(userRepo, dispatcher)
	courseService := service.NewCourseService(courseRepo, dispatcher, eventBus)
	scheduleService := service.NewScheduleService(slotRepo, bookingRepo, courseRepo, dispatcher)
	bookingService := service.NewBookingService(bookingRepo, slotRepo, dispatcher, eventBus)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, promoRepo, dispatcher, eventBus)
	paymentService := service.NewPaymentService(paymentRepo, bookingRepo, enrollmentRepo, redis, dispatcher, eventBus)
	reviewService := service.NewReviewService(reviewRepo, enrollmentRepo, courseRepo, dispatcher, eventBus)
	promoService := service.NewPromoService(promoRepo, dispatcher)
	notificationService := service.NewNotificationService(notificationRepo, dispatcher)
	auditService := service.NewAuditService(auditRepo)

	notificationWorker := worker.NewNotificationWorker(notificationService, bookingRepo, slotRepo, courseRepo, cfg.Notification.EmailFrom, logger)
	notificationWorker.Register(eventBus)

	if cfg.AMQP.Enabled() {
		consumer, err := events.NewAMQPConsumer(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, []string{
			domain.EventBookingCreated,
			domain.EventBookingConfirmed,
			domain.EventBookingCancelled,
			domain.EventEnrollmentCreated,
			domain.EventPaymentSucceeded,
			domain.EventPaymentRefunded,
			domain.EventReviewAdded,
		})
		if err != nil {
			logger.Fatal("failed to open amqp consumer", zap.Error(err))
		}
		defer consumer.Close()
		go func() {
			if err := notificationWorker.RunConsumer(ctx, consumer); err != nil {
				logger.Error("notification consumer stopped", zap.Error(err))
			}
		}()
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Courses:        handlers.NewCoursesHandler(courseService, reviewService),
		Slots:          handlers.NewSlotsHandler(scheduleService),
		Bookings:       handlers.NewBookingsHandler(bookingService),
		Enrollments:    handlers.NewEnrollmentsHandler(enrollmentService),
		Payments:       handlers.NewPaymentsHandler(paymentService),
		Promos:         handlers.NewPromosHandler(promoService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Audit:          handlers.NewAuditHandler(auditService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
