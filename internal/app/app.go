package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/clock"
	"github.com/Freeeeeet/coach_scheduler/internal/config"
	"github.com/Freeeeeet/coach_scheduler/internal/controller"
	"github.com/Freeeeeet/coach_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/coach_scheduler/internal/notify"
	"github.com/Freeeeeet/coach_scheduler/internal/repository/cache"
	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App собранный сервис: хранилище, движок, HTTP сервер
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	server  *fiber.App
	closers []func(context.Context) error
}

// New собирает зависимости по конфигурации. При ошибке уже открытые ресурсы закрываются.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	shutdownTracing, err := SetupTracing(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	a.onClose(shutdownTracing)

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error { return st.close() })

	if cfg.SeedDemoUsers {
		if err := seedDemoUsers(ctx, st.users, logger); err != nil {
			return nil, err
		}
	}

	var roles service.UserDirectory = st.users
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.onClose(func(context.Context) error { return rdb.Close() })
		roles = cache.NewRoleCache(st.users, rdb, cfg.RoleCacheTTL, logger.Named("role_cache"))
		logger.Info("Role cache enabled", zap.String("redis_addr", cfg.RedisAddr))
	}

	events, err := a.buildPublisher()
	if err != nil {
		return nil, err
	}

	policy := service.Policy{
		RejectPastBooking:     cfg.BookingRejectPast,
		RequireFeedbackOwner:  cfg.FeedbackRequireOwner,
		RequireElapsedSession: cfg.FeedbackRequireElapsed,
	}
	clk := clock.System{}

	h := handlers.NewHandlers(
		service.NewSlotService(st.slots, roles, clk, events, policy, logger.Named("slots")),
		service.NewQueryService(st.slots, roles, clk),
		service.NewUserService(st.users),
		logger.Named("http"),
	)

	a.server = controller.NewRouter(h, controller.Options{
		CORSOrigins: cfg.CORSOrigins,
		Ready:       st.ping,
	}, logger.Named("http"))

	return a, nil
}

// buildPublisher собирает получателей событий из конфигурации
func (a *App) buildPublisher() (service.EventPublisher, error) {
	var sinks notify.Multi

	if len(a.cfg.KafkaBrokers) > 0 {
		kp := notify.NewKafkaPublisher(notify.NewKafkaWriter(a.cfg.KafkaBrokers, a.cfg.KafkaTopic))
		a.onClose(func(context.Context) error { return kp.Close() })
		sinks = append(sinks, kp)
		a.logger.Info("Kafka events enabled",
			zap.Strings("brokers", a.cfg.KafkaBrokers),
			zap.String("topic", a.cfg.KafkaTopic),
		)
	}

	if a.cfg.TelegramToken != "" {
		b, err := notify.NewTelegramBot(a.cfg.TelegramToken)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, notify.NewTelegramPublisher(b, a.cfg.TelegramChatID))
		a.logger.Info("Telegram notifications enabled", zap.Int64("chat_id", a.cfg.TelegramChatID))
	}

	if len(sinks) == 0 {
		return service.NopPublisher{}, nil
	}

	async := notify.NewAsync(sinks, 0, a.logger.Named("events"))
	a.onClose(async.Close)
	return async, nil
}

// Run обслуживает HTTP до отмены ctx, затем останавливает сервер и закрывает ресурсы
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🚀 HTTP server listening", zap.String("addr", a.cfg.HTTPAddr))
		errCh <- a.server.Listen(a.cfg.HTTPAddr)
	}()

	var runErr error
	select {
	case err := <-errCh:
		if err != nil {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.ShutdownWithContext(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.Close(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	return runErr
}

// Close закрывает ресурсы в обратном порядке открытия
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}
