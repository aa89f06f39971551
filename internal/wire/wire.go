// Package wire provides dependency injection for the questline application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	cliadapter "github.com/example/questline/internal/adapters/cli"
	"github.com/example/questline/internal/adapters/events"
	"github.com/example/questline/internal/adapters/httpapi"
	"github.com/example/questline/internal/adapters/oracle"
	"github.com/example/questline/internal/adapters/sqlstore"
	"github.com/example/questline/internal/app"
	"github.com/example/questline/internal/config"
	"github.com/example/questline/internal/db"
	"github.com/example/questline/internal/logging"
	"github.com/example/questline/internal/ports/primary"
	"github.com/example/questline/internal/ports/secondary"
)

const redisConnectTimeout = 3 * time.Second

var (
	configPath string

	cfg            *config.Config
	logger         *logrus.Logger
	database       *sqlx.DB
	redisClient    *redis.Client
	publisher      *events.RedisPublisher
	roadmapService primary.RoadmapService
	profileService primary.ProfileService

	configOnce   sync.Once
	servicesOnce sync.Once
)

// SetConfigPath overrides the config file location. Call before any accessor.
func SetConfigPath(path string) {
	configPath = path
}

// Config returns the loaded configuration.
func Config() *config.Config {
	configOnce.Do(initConfig)
	return cfg
}

// Logger returns the application logger.
func Logger() *logrus.Logger {
	configOnce.Do(initConfig)
	return logger
}

// Database returns the shared database handle, opening and migrating it on first use.
func Database() *sqlx.DB {
	servicesOnce.Do(initServices)
	return database
}

// RoadmapService returns the singleton RoadmapService instance.
func RoadmapService() primary.RoadmapService {
	servicesOnce.Do(initServices)
	return roadmapService
}

// ProfileService returns the singleton ProfileService instance.
func ProfileService() primary.ProfileService {
	servicesOnce.Do(initServices)
	return profileService
}

// initConfig loads .env, the config file and the logger.
func initConfig() {
	if err := config.LoadDotEnv(".env"); err != nil {
		logrus.Fatalf("failed to load environment: %v", err)
	}

	path := configPath
	if path == "" {
		path = config.ResolvePath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	cfg = loaded

	logger, err = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stderr)
	if err != nil {
		logrus.Fatalf("failed to initialize logger: %v", err)
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	c := Config()
	log := Logger()

	// Open database and create repository adapters (secondary ports)
	sqlDB, err := db.Open(db.Options{
		Driver: c.Database.Driver,
		Path:   c.Database.Path,
		DSN:    c.Database.DSN,
		Logger: log,
	})
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	database = sqlx.NewDb(sqlDB, c.Database.Driver)

	roadmapRepo := sqlstore.NewRoadmapRepository(database)
	profileRepo := sqlstore.NewProfileRepository(database)
	auditRepo := sqlstore.NewAuditRepository(database)

	contentOracle, err := oracle.New(oracle.Config{
		Provider:  c.Oracle.Provider,
		APIKey:    c.Oracle.APIKey,
		Model:     c.Oracle.Model,
		BaseURL:   c.Oracle.BaseURL,
		Timeout:   c.Oracle.Timeout,
		StepCount: c.Oracle.StepCount,
	}, log)
	if err != nil {
		log.Fatalf("failed to initialize content oracle: %v", err)
	}

	// Create services (primary ports implementation)
	roadmapService = app.NewRoadmapService(
		roadmapRepo,
		roadmapRepo,
		profileRepo,
		contentOracle,
		eventPublisher(c, log),
		app.NewEffectExecutor(),
		log,
		app.RoadmapOptions{
			OracleTimeout: c.Oracle.Timeout,
			StepCount:     c.Oracle.StepCount,
			CreditCoins:   c.CreditCoins(),
		},
	)
	profileService = app.NewProfileService(profileRepo, auditRepo)
}

// eventPublisher connects to Redis when configured. Publishing is optional,
// so a failed connection only disables it.
func eventPublisher(c *config.Config, log logrus.FieldLogger) secondary.EventPublisher {
	if c.Redis.Addr == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()

	client, err := events.Connect(ctx, c.Redis.Addr)
	if err != nil {
		log.WithError(err).WithField("addr", c.Redis.Addr).Warn("redis unavailable; progression events disabled")
		return nil
	}
	redisClient = client
	publisher = events.NewRedisPublisher(client)
	return publisher
}

// EventTimeline returns the Redis publisher for reading event history,
// or nil when Redis is not configured or unreachable.
func EventTimeline() *events.RedisPublisher {
	servicesOnce.Do(initServices)
	return publisher
}

// HTTPServer builds the API server over the singleton services.
func HTTPServer() (*httpapi.Server, error) {
	c := Config()
	return httpapi.NewServer(httpapi.Config{
		JWTSecret:             c.HTTP.JWTSecret,
		GenerateRatePerMinute: c.HTTP.GenerateRatePerMinute,
	}, RoadmapService(), ProfileService(), Logger())
}

// Close releases the database and Redis connections.
func Close() {
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if database != nil {
		_ = database.Close()
	}
}

// RoadmapAdapter returns a new RoadmapAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func RoadmapAdapter() *cliadapter.RoadmapAdapter {
	return RoadmapAdapterWithOutput(os.Stdout)
}

// RoadmapAdapterWithOutput returns a new RoadmapAdapter writing to the given output.
func RoadmapAdapterWithOutput(out io.Writer) *cliadapter.RoadmapAdapter {
	return cliadapter.NewRoadmapAdapter(RoadmapService(), out)
}

// ProfileAdapter returns a new ProfileAdapter writing to stdout.
func ProfileAdapter() *cliadapter.ProfileAdapter {
	return cliadapter.NewProfileAdapter(ProfileService(), os.Stdout)
}
