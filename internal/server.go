package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/BUPE-NONDO/fitstats/internal/auth"
	"github.com/BUPE-NONDO/fitstats/internal/config"
	"github.com/BUPE-NONDO/fitstats/internal/db"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/achievements"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/evaluator"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/goals"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/progress"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/summary"
	"github.com/BUPE-NONDO/fitstats/internal/fitstats/weekly"
	"github.com/BUPE-NONDO/fitstats/internal/middleware"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/metrics"
	"github.com/BUPE-NONDO/fitstats/internal/telemetry/tracing"
	"github.com/BUPE-NONDO/fitstats/internal/users"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	evaluator *evaluator.Evaluator

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("fitstats", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService(auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fitstats-backend", rdb)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		versionInfo: params.VersionInfo,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(auth.DefaultTTL, rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	goalsRepo := goals.NewRepo(s.dbPool)
	progressRepo := progress.NewRepo(s.dbPool)
	weeklyRepo := weekly.NewRepo(s.dbPool)
	awardsRepo := achievements.NewRepo(s.dbPool)
	usersRepo := users.NewRepo(s.dbPool)

	weekStart := weekly.ParseWeekStart(s.config.WeekStart)
	dailyAggregator := progress.NewAggregator(goalsRepo, progressRepo, s.metricsManager)
	weeklyComposer := weekly.NewComposer(progressRepo, weeklyRepo, weekStart)
	badgeEngine := achievements.NewEngine(goalsRepo, progressRepo, awardsRepo, s.metricsManager)

	s.evaluator = evaluator.NewEvaluator(evaluator.NewEvaluatorParams{
		Aggregator:     dailyAggregator,
		WeeklyComposer: weeklyComposer,
		BadgeEngine:    badgeEngine,
		Metrics:        s.metricsManager,
		Workers:        s.config.EvaluatorWorkers,
		QueueSize:      s.config.EvaluatorQueueSize,
	})
	s.evaluator.Start()

	goalsHandler := goals.NewHandler(goalsRepo, s.evaluator, s.metricsManager)
	r.HandleFunc("/goals", goalsHandler.HandleAddGoal).Methods("POST", "OPTIONS").Name("new-goal")
	r.HandleFunc("/goals", goalsHandler.HandleListGoals).Methods("GET", "OPTIONS").Name("list-goals")
	r.HandleFunc("/goals/{id}", goalsHandler.HandleGetGoal).Methods("GET", "OPTIONS").Name("get-goal")
	r.HandleFunc("/goals/{id}", goalsHandler.HandleUpdateGoal).Methods("PUT", "OPTIONS").Name("update-goal")
	r.HandleFunc("/goals/{id}", goalsHandler.HandleDeleteGoal).Methods("DELETE", "OPTIONS").Name("remove-goal")
	r.HandleFunc("/logs", goalsHandler.HandleAddLog).Methods("POST", "OPTIONS").Name("new-log")
	r.HandleFunc("/logs", goalsHandler.HandleListLogs).Methods("GET", "OPTIONS").Name("list-logs")
	r.HandleFunc("/logs/{id}", goalsHandler.HandleDeleteLog).Methods("DELETE", "OPTIONS").Name("remove-log")

	progressHandler := progress.NewHandler(progressRepo)
	r.HandleFunc("/progress", progressHandler.HandleHistory).Methods("GET", "OPTIONS").Name("progress-history")

	weeklyHandler := weekly.NewHandler(weeklyRepo)
	r.HandleFunc("/weeks", weeklyHandler.HandleRecent).Methods("GET", "OPTIONS").Name("recent-weeks")

	badgesHandler := achievements.NewHandler(awardsRepo)
	r.HandleFunc("/badges/catalog", badgesHandler.HandleCatalog).Methods("GET", "OPTIONS").Name("badge-catalog")
	r.HandleFunc("/badges", badgesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-badges")

	statsComposer := summary.NewComposer(progressRepo, awardsRepo, weekStart)
	statsHandler := summary.NewHandler(
		statsComposer,
		s.config.StatsCacheSizeBytes,
		s.config.StatsCacheTTLSeconds,
	)
	r.HandleFunc("/stats", statsHandler.HandleGetStats).Methods("GET", "OPTIONS").Name("get-stats")

	evaluateHandler := evaluator.NewHandler(dailyAggregator, weeklyComposer, badgeEngine)
	r.HandleFunc("/fitstats/evaluate", evaluateHandler.HandleEvaluate).Methods("POST", "OPTIONS").Name("evaluate")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	usersHandler := users.NewHandler(usersRepo, s.authService, s.versionInfo)
	usersHandler.SetupRoutes(r, reqRateLimiter, s.config.LoginRateLimitAllowedPerMin, s.metricsManager)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r, nil
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router, err := s.routerSetup()
	if err != nil {
		log.Fatalf("failed to setup router: %s", err)
	}

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.evaluator != nil {
		log.Debugln("stopping evaluator ...")
		s.evaluator.Stop()
		log.Debugln("evaluator stopped")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
