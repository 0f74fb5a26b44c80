package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"backoffice/internal/domain/audit"
	"backoffice/internal/domain/compensation"
	"backoffice/internal/domain/employee"
	"backoffice/internal/domain/expense"
	"backoffice/internal/domain/ledger"
	"backoffice/internal/domain/payables"
	"backoffice/internal/domain/payroll"
	"backoffice/internal/domain/reconcile"
	"backoffice/internal/platform/apperror"
	"backoffice/internal/platform/config"
	"backoffice/internal/platform/db"
	"backoffice/internal/platform/jobs"
	"backoffice/internal/platform/lock"
	"backoffice/internal/platform/logger"
	"backoffice/internal/platform/metrics"
	"backoffice/internal/platform/outbox"
	"backoffice/internal/transport/http/api"
	audithandler "backoffice/internal/transport/http/handlers/audit"
	compensationhandler "backoffice/internal/transport/http/handlers/compensation"
	employeehandler "backoffice/internal/transport/http/handlers/employee"
	expensehandler "backoffice/internal/transport/http/handlers/expense"
	jobshandler "backoffice/internal/transport/http/handlers/jobs"
	ledgerhandler "backoffice/internal/transport/http/handlers/ledger"
	payableshandler "backoffice/internal/transport/http/handlers/payables"
	payrollhandler "backoffice/internal/transport/http/handlers/payroll"
	"backoffice/internal/transport/http/middleware"
)

// Services is everything the router dispatches to. Jobs and Ready are optional.
type Services struct {
	Employees    *employee.Service
	Compensation *compensation.Service
	Payroll      *payroll.Service
	Expenses     *expense.Service
	Payables     *payables.Service
	Ledger       *ledger.Service
	Audit        *audit.Service
	Jobs         *jobs.Service
	Idempotency  middleware.IdempotencyStore
	Metrics      *metrics.Collector
	Ready        func(ctx context.Context) error
}

func NewRouter(cfg config.Config, log *zap.Logger, svc Services) http.Handler {
	if svc.Metrics == nil {
		svc.Metrics = metrics.New()
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log, svc.Metrics))
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.BulkMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := svc.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.MetricsEnabled {
			r.With(middleware.RequireAuth).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, svc.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
			})
		}

		employeehandler.NewHandler(svc.Employees).RegisterRoutes(r)
		compensationhandler.NewHandler(svc.Compensation).RegisterRoutes(r)
		payrollhandler.NewHandler(svc.Payroll, svc.Idempotency).RegisterRoutes(r)
		expensehandler.NewHandler(svc.Expenses).RegisterRoutes(r)
		payableshandler.NewHandler(svc.Payables).RegisterRoutes(r)
		ledgerhandler.NewHandler(svc.Ledger).RegisterRoutes(r)
		audithandler.NewHandler(svc.Audit, log).RegisterRoutes(r)
		if svc.Jobs != nil {
			jobshandler.NewHandler(svc.Jobs).RegisterRoutes(r)
		}
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusNotFound, apperror.CodeNotFound, "route not found", middleware.GetRequestID(r.Context()))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Fail(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", middleware.GetRequestID(r.Context()))
	})
	return router
}

// Run wires the Postgres stores, optional Redis and Kafka, the job scheduler
// and the HTTP server, and blocks until SIGINT or SIGTERM.
func Run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir, logger.Named(log, "migrate")); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	var locker lock.Locker = lock.Nop{}
	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		locker = lock.NewRedis(rdb, logger.Named(log, "lock"))
	}

	var publisher outbox.Publisher = outbox.LogPublisher{Log: logger.Named(log, "outbox")}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := outbox.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = kafka.Close() }()
		publisher = kafka
	}

	collector := metrics.New()
	auditSvc := audit.NewService(audit.NewStore(pool), logger.Named(log, "audit"), collector, cfg.AuditRetention)
	reconciler := reconcile.New(collector)
	employees := employee.NewStore(pool)

	scheduler := jobs.New(jobs.NewStore(pool), logger.Named(log, "jobs"))
	relay := outbox.NewRelay(outbox.NewStore(pool), publisher, logger.Named(log, "outbox"), collector)
	if err := scheduler.Schedule(cfg.AuditPurgeSchedule, jobs.JobAuditPurge, func(ctx context.Context) (any, error) {
		purged, err := auditSvc.Purge(ctx)
		return map[string]int64{"purged": purged}, err
	}); err != nil {
		return err
	}
	if err := scheduler.Schedule(cfg.OutboxRelaySchedule, jobs.JobOutboxRelay, func(ctx context.Context) (any, error) {
		return relay.Flush(ctx)
	}); err != nil {
		return err
	}

	svc := Services{
		Employees:    employee.NewService(employees, auditSvc),
		Compensation: compensation.NewService(compensation.NewStore(pool), employees, auditSvc),
		Payroll:      payroll.NewService(payroll.NewStore(pool), reconciler, auditSvc, locker, cfg.BulkLockTTL, logger.Named(log, "payroll")),
		Expenses:     expense.NewService(expense.NewStore(pool), employees, reconciler, auditSvc),
		Payables:     payables.NewService(payables.NewStore(pool), reconciler, auditSvc),
		Ledger:       ledger.NewService(ledger.NewStore(pool), auditSvc),
		Audit:        auditSvc,
		Jobs:         scheduler,
		Idempotency:  middleware.NewIdempotencyStore(pool),
		Metrics:      collector,
		Ready:        pool.Ping,
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg, log, svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler.Start(ctx)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			stop()
			scheduler.Stop()
			return fmt.Errorf("server: %w", err)
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown failed", zap.Error(err))
	}
	scheduler.Stop()
	return nil
}
