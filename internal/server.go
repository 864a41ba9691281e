package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/forgefit/forge/internal/config"
	"github.com/forgefit/forge/internal/dashboard"
	"github.com/forgefit/forge/internal/db"
	"github.com/forgefit/forge/internal/fasting"
	"github.com/forgefit/forge/internal/middleware"
	"github.com/forgefit/forge/internal/nutrition"
	"github.com/forgefit/forge/internal/telemetry/metrics"
	"github.com/forgefit/forge/internal/telemetry/tracing"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/internal/weight"
	"github.com/forgefit/forge/internal/wellness"
	"github.com/forgefit/forge/internal/workouts"
	"github.com/forgefit/forge/pkg"

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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool
	loc    *time.Location

	parser     *nutrition.Parser
	usdaClient *nutrition.USDAClient

	redisClient *redis.Client

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	AnthropicAPIKey         string
	USDAAPIKey              string
	RedisPassword           string
	VersionInfo             string
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
		map[string]string{"db_name": "forge_db"},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("forge", "backend", promRegistry)
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

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "forge-backend", rdb)
	if err != nil {
		return nil, err
	}

	loc, err := params.Config.Location()
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	return &Server{
		config:      params.Config,
		dbPool:      dbPool,
		loc:         loc,
		versionInfo: params.VersionInfo,

		parser: nutrition.NewParser(
			params.Config.AnthropicBaseURL,
			params.AnthropicAPIKey,
			params.Config.AnthropicModel,
			tracedHttpClient,
		),
		usdaClient: nutrition.NewUSDAClient(
			params.Config.USDABaseURL,
			params.USDAAPIKey,
			tracedHttpClient,
		),

		redisClient: rdb,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("forge-router"))

	usersRepo := users.NewRepo(s.dbPool)
	weightRepo := weight.NewRepo(s.dbPool)
	nutritionRepo := nutrition.NewRepo(s.dbPool)
	workoutsRepo := workouts.NewRepo(s.dbPool)
	wellnessRepo := wellness.NewRepo(s.dbPool)
	fastingRepo := fasting.NewRepo(s.dbPool)

	weightHandler := weight.NewHandler(weightRepo, usersRepo, s.loc)
	r.HandleFunc("/api/weight", weightHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-weight")
	r.HandleFunc("/api/weight/latest", weightHandler.HandleLatest).Methods("GET", "OPTIONS").Name("latest-weight")
	r.HandleFunc("/api/weight/latest", weightHandler.HandleUndo).Methods("DELETE", "OPTIONS").Name("undo-weight")
	r.HandleFunc("/api/weight/history", weightHandler.HandleHistory).Methods("GET", "OPTIONS").Name("weight-history")
	r.HandleFunc("/api/weight/{id}", weightHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-weight")

	nutritionHandler := nutrition.NewHandler(
		nutritionRepo,
		s.parser,
		s.usdaClient,
		usersRepo,
		s.metricsManager,
		s.loc,
	)
	// every parse request costs an LLM call, hence the rate limit
	parseRateLimit := middleware.RateLimit(
		redis_rate.NewLimiter(s.redisClient),
		"nutrition-parse",
		s.config.ParseRateLimitAllowedPerMin,
		s.metricsManager,
	)
	r.Handle(
		"/api/nutrition/parse",
		parseRateLimit(http.HandlerFunc(nutritionHandler.HandleParse)),
	).Methods("POST", "OPTIONS").Name("parse-nutrition")
	r.HandleFunc("/api/nutrition", nutritionHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-nutrition")
	r.HandleFunc("/api/nutrition/today", nutritionHandler.HandleToday).Methods("GET", "OPTIONS").Name("nutrition-today")
	r.HandleFunc("/api/nutrition/history", nutritionHandler.HandleHistory).Methods("GET", "OPTIONS").Name("nutrition-history")
	r.HandleFunc("/api/nutrition/latest", nutritionHandler.HandleUndo).Methods("DELETE", "OPTIONS").Name("undo-nutrition")
	r.HandleFunc("/api/nutrition/{id}", nutritionHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-nutrition")
	r.HandleFunc("/api/food/search", nutritionHandler.HandleUSDASearch).Methods("GET", "OPTIONS").Name("food-search")
	r.HandleFunc("/api/food/{fdcId}", nutritionHandler.HandleUSDAFood).Methods("GET", "OPTIONS").Name("food-details")

	workoutsHandler := workouts.NewHandler(workoutsRepo, usersRepo, s.loc)
	r.HandleFunc("/api/workouts", workoutsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/api/workouts/today", workoutsHandler.HandleToday).Methods("GET", "OPTIONS").Name("workouts-today")
	r.HandleFunc("/api/workouts/history", workoutsHandler.HandleHistory).Methods("GET", "OPTIONS").Name("workouts-history")
	r.HandleFunc("/api/workouts/{id}", workoutsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-workout")

	wellnessHandler := wellness.NewHandler(wellnessRepo, usersRepo, s.loc)
	r.HandleFunc("/api/metrics", wellnessHandler.HandleUpsert).Methods("POST", "OPTIONS").Name("upsert-metrics")
	r.HandleFunc("/api/metrics/today", wellnessHandler.HandleToday).Methods("GET", "OPTIONS").Name("metrics-today")
	r.HandleFunc("/api/metrics/history", wellnessHandler.HandleHistory).Methods("GET", "OPTIONS").Name("metrics-history")

	fastingHandler := fasting.NewHandler(fastingRepo, usersRepo)
	r.HandleFunc("/api/fasting/start", fastingHandler.HandleStart).Methods("POST", "OPTIONS").Name("start-fast")
	r.HandleFunc("/api/fasting/end", fastingHandler.HandleEnd).Methods("POST", "OPTIONS").Name("end-fast")
	r.HandleFunc("/api/fasting/active", fastingHandler.HandleActive).Methods("GET", "OPTIONS").Name("active-fast")
	r.HandleFunc("/api/fasting/history", fastingHandler.HandleHistory).Methods("GET", "OPTIONS").Name("fasting-history")
	r.HandleFunc("/api/fasting/{id}", fastingHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-fast")

	dashboardHandler := dashboard.NewHandler(
		dashboard.NewSummarizer(weightRepo, nutritionRepo, workoutsRepo, wellnessRepo, s.loc),
		usersRepo,
		s.loc,
	)
	r.HandleFunc("/api/dashboard/today", dashboardHandler.HandleToday).Methods("GET", "OPTIONS").Name("dashboard-today")
	r.HandleFunc("/api/dashboard/week", dashboardHandler.HandleWeek).Methods("GET", "OPTIONS").Name("dashboard-week")
	r.HandleFunc("/api/goals", dashboardHandler.HandleGetGoals).Methods("GET", "OPTIONS").Name("get-goals")
	r.HandleFunc("/api/goals", dashboardHandler.HandleSetGoals).Methods("PUT", "OPTIONS").Name("set-goals")

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteResponse(w, pkg.ContentType.Plain, "forge backend", http.StatusOK)
	}).Methods("GET").Name("root")
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteResponse(w, pkg.ContentType.Plain, "ok: "+s.versionInfo, http.StatusOK)
	}).Methods("GET").Name("health")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

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
