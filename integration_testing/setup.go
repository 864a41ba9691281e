package integration_testing

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/forgefit/forge/internal"
	"github.com/forgefit/forge/internal/config"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverPort = 9000
	serverHost = "localhost"
)

var serverEndpoint = fmt.Sprintf("http://%s:%d", serverHost, serverPort)

type Suite struct {
	DB         *sql.DB
	dockerPool *dockertest.Pool
	server     *internal.Server
	teardown   []func()
}

func newSuite(ctx context.Context) (_ *Suite) {
	var err error
	suite := &Suite{
		teardown: make([]func(), 0),
	}

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		log.Fatalf("could not ping dockertest pool: %s", err)
	}

	redisPort, err := suite.redisSetup()
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup redis: %s", err.Error())
	}

	pgPort, err := suite.postgresSetup()
	if err != nil {
		suite.cleanup()
		log.Fatalf("failed to setup postgres: %s", err)
	}

	cfg := getTestConfig(redisPort, pgPort)
	suite.server, err = internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			AnthropicAPIKey:         "test",
			USDAAPIKey:              "test",
			RedisPassword:           "",
			VersionInfo:             "test-version-info",
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		suite.cleanup()
		log.Fatalf("new server: %s", err)
	}

	suite.server.Serve(ctx, cfg.Host, cfg.Port)

	return suite
}

func (s *Suite) cleanup() {
	if s.DB != nil {
		s.DB.Close()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
	if s.server != nil {
		s.server.GracefulShutdown()
	}
}

func getTestConfig(redisPort, postgresPort string) *config.Config {
	return &config.Config{
		Host:                        serverHost,
		Port:                        serverPort,
		RedisHost:                   "localhost",
		RedisPort:                   redisPort,
		PostgresPort:                postgresPort,
		PostgresHost:                "localhost",
		PostgresDBName:              "forge",
		PrometheusMetricsHost:       "localhost",
		PrometheusMetricsPort:       "9001",
		Timezone:                    "America/New_York",
		AnthropicBaseURL:            "http://localhost:9999",
		AnthropicModel:              "test-model",
		USDABaseURL:                 "http://localhost:9999",
		ParseRateLimitAllowedPerMin: 15,
	}
}

func (s *Suite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		redisResource.Close()
	})

	redisPort := redisResource.GetPort("6379/tcp")
	return redisPort, nil
}

func (s *Suite) postgresSetup() (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_HOST_AUTH_METHOD=trust",
			"POSTGRES_DB=forge",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %s", err)
	}

	s.teardown = append(s.teardown, func() {
		pgResource.Close()
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf("postgres://postgres@localhost:%s/forge?sslmode=disable", pgPort)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return "", fmt.Errorf("open db conn: %s", err)
	}
	s.DB = db

	if _, err := db.Exec(initSQL); err != nil {
		return "", fmt.Errorf("run init script: %s", err)
	}

	if db.Ping() != nil {
		return "", fmt.Errorf("ping db: %s", err)
	}

	return pgPort, nil
}

const initSQL = `
CREATE TABLE public.users
(
    id                 SERIAL PRIMARY KEY,
    discord_id         VARCHAR NOT NULL UNIQUE,
    display_name       VARCHAR NOT NULL,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    target_weight      DOUBLE PRECISION,
    daily_calorie_goal INTEGER,
    daily_protein_goal INTEGER,
    daily_carb_goal    INTEGER,
    daily_fat_goal     INTEGER,
    daily_water_goal   INTEGER
);

ALTER TABLE public.users OWNER TO postgres;

CREATE TABLE public.weight_logs
(
    id         SERIAL PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES public.users (id),
    weight     DOUBLE PRECISION NOT NULL,
    date       DATE NOT NULL,
    notes      VARCHAR,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE public.weight_logs OWNER TO postgres;
CREATE INDEX ix_weight_logs_user_date ON public.weight_logs (user_id, date);

CREATE TABLE public.nutrition_logs
(
    id          SERIAL PRIMARY KEY,
    user_id     INTEGER NOT NULL REFERENCES public.users (id),
    logged_at   TIMESTAMPTZ NOT NULL,
    raw_input   VARCHAR,
    description VARCHAR NOT NULL,
    calories    INTEGER,
    protein_g   DOUBLE PRECISION,
    carbs_g     DOUBLE PRECISION,
    fat_g       DOUBLE PRECISION,
    fiber_g     DOUBLE PRECISION,
    water_oz    DOUBLE PRECISION,
    meal_type   VARCHAR,
    usda_fdc_id INTEGER
);

ALTER TABLE public.nutrition_logs OWNER TO postgres;
CREATE INDEX ix_nutrition_logs_user_logged_at ON public.nutrition_logs (user_id, logged_at);

CREATE TABLE public.workouts
(
    id               SERIAL PRIMARY KEY,
    user_id          INTEGER NOT NULL REFERENCES public.users (id),
    date             DATE NOT NULL,
    workout_type     VARCHAR NOT NULL,
    duration_minutes INTEGER,
    calories_burned  INTEGER,
    description      VARCHAR,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE public.workouts OWNER TO postgres;
CREATE INDEX ix_workouts_user_date ON public.workouts (user_id, date);

CREATE TABLE public.daily_metrics
(
    id            SERIAL PRIMARY KEY,
    user_id       INTEGER NOT NULL REFERENCES public.users (id),
    date          DATE NOT NULL,
    sleep_hours   DOUBLE PRECISION,
    sleep_quality INTEGER,
    mood          INTEGER,
    energy_level  INTEGER,
    notes         VARCHAR,
    UNIQUE (user_id, date)
);

ALTER TABLE public.daily_metrics OWNER TO postgres;

CREATE TABLE public.fasting_windows
(
    id           SERIAL PRIMARY KEY,
    user_id      INTEGER NOT NULL REFERENCES public.users (id),
    started_at   TIMESTAMPTZ NOT NULL,
    ended_at     TIMESTAMPTZ,
    fasting_type VARCHAR NOT NULL,
    notes        VARCHAR
);

ALTER TABLE public.fasting_windows OWNER TO postgres;
CREATE INDEX ix_fasting_windows_user_started_at ON public.fasting_windows (user_id, started_at);
`
