package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/export"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/grpc/handler"
	redisrepo "github.com/ogurasousui/codex-hr-payroll/internal/adapters/repository/redis"
	"github.com/ogurasousui/codex-hr-payroll/internal/adapters/rest"
	"github.com/ogurasousui/codex-hr-payroll/internal/app"
	"github.com/ogurasousui/codex-hr-payroll/internal/core/timesheet"
	rediscache "github.com/ogurasousui/codex-hr-payroll/internal/platform/cache/redis"
	"github.com/ogurasousui/codex-hr-payroll/internal/platform/config"
	pg "github.com/ogurasousui/codex-hr-payroll/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-hr-payroll/internal/platform/server"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	checks := map[string]rest.HealthCheck{}
	repos := app.MemoryRepositories()
	opts := app.Options{DuplicatePolicy: timesheet.DuplicatePolicy(cfg.Timesheet.DuplicatePolicy)}
	defaults := app.PayrollDefaults(cfg.Payroll)
	opts.PayrollDefaults = &defaults

	if cfg.Storage.Driver == config.StoragePostgres {
		dbPool, err := pg.NewPool(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("failed to initialize database pool: %v", err)
		}
		defer dbPool.Close()

		tx, err := pg.NewTransactionManagerFromConfig(dbPool, cfg.Database)
		if err != nil {
			log.Fatalf("failed to configure transactions: %v", err)
		}

		repos = app.PostgresRepositories(dbPool)
		opts.Tx = tx
		checks["postgres"] = dbPool.Ping
	}

	if cfg.Redis.Enabled() {
		client, err := rediscache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("failed to initialize redis client: %v", err)
		}
		defer client.Close()

		repos.TimerSessions = redisrepo.NewTimerSessionStore(client, cfg.Redis.KeyPrefix, cfg.Redis.SessionTTL)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	svcs := app.NewServices(repos, opts)

	router, err := rest.NewRouter(rest.Services{
		TimeLogs:    svcs.TimeLogs,
		Timer:       svcs.Timer,
		Timesheets:  svcs.Timesheets,
		Payroll:     svcs.Payroll,
		Payslips:    svcs.Payslips,
		Employees:   svcs.Employees,
		Departments: svcs.Departments,
		Leave:       svcs.Leave,
		PayslipPDF:  export.NewPayslipPDF(cfg.Payroll.Organization),
		Register:    export.NewRegister(),
	}, rest.Options{
		RateLimit: cfg.RateLimit.Rate,
		JWTSecret: cfg.Auth.JWTSecret,
		Checks:    checks,
	})
	if err != nil {
		log.Fatalf("failed to build router: %v", err)
	}

	grpcServer := server.New(cfg.Server.ListenAddr, func(s grpc.ServiceRegistrar) {
		handler.RegisterTimeTrackingServer(s, handler.NewTimeTrackingGrpcHandler(svcs.Timer, svcs.TimeLogs, svcs.Timesheets))
		handler.RegisterPayrollServer(s, handler.NewPayrollGrpcHandler(svcs.Payroll, svcs.Payslips))
		handler.RegisterDirectoryServer(s, handler.NewDirectoryGrpcHandler(svcs.Employees, svcs.Departments))
	}, grpc.UnaryInterceptor(handler.LoggingInterceptor()))
	httpServer := server.NewHTTP(cfg.Server.HTTPAddr, router, cfg.Server.ShutdownTimeout)

	log.Printf("gRPC server listening on %s", cfg.Server.ListenAddr)
	log.Printf("HTTP server listening on %s (storage=%s)", cfg.Server.HTTPAddr, cfg.Storage.Driver)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Run(gctx) })
	g.Go(func() error { return httpServer.Run(gctx) })

	if err := g.Wait(); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}
