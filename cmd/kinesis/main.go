// Kinesis Core - kinetic light installation controller
//
// This is the main entry point for the Kinesis Core application. It drives
// three counter-rotating motor disks, a safety-capped strobe, RGB spotlights,
// and an addressable LED strip from a fixed-cadence control loop, and exposes
// the installation over MQTT, HTTP, and WebSocket.
//
// Safety invariants (strobe frequency ceiling, session cutoff, consent hold)
// are enforced inside the control engine regardless of what any transport
// requests.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lanternworks/kinesis-core/migrations"

	"github.com/lanternworks/kinesis-core/internal/api"
	"github.com/lanternworks/kinesis-core/internal/bridge"
	"github.com/lanternworks/kinesis-core/internal/control"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/config"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/database"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/influxdb"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/logging"
	"github.com/lanternworks/kinesis-core/internal/infrastructure/mqtt"
	"github.com/lanternworks/kinesis-core/internal/preset"
	"github.com/lanternworks/kinesis-core/internal/sessionlog"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// telemetryInterval is how often applied output values are sampled into the
// time-series store.
const telemetryInterval = time.Second

// statusPublishInterval is how often the retained MQTT status is refreshed.
const statusPublishInterval = time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Kinesis Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Build the preset library: builtins plus stored custom presets
	library := preset.NewLibrary()
	presetRepo := preset.NewSQLiteRepository(db.DB)
	skipped, err := preset.LoadCustom(ctx, presetRepo, library)
	if err != nil {
		return fmt.Errorf("loading custom presets: %w", err)
	}
	for _, skipErr := range skipped {
		log.Warn("stored preset skipped", "error", skipErr)
	}
	log.Info("preset library initialised", "presets", len(library.List()))

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the control engine. The MQTT bridge is the primary output sink;
	// telemetry chains behind it when InfluxDB is enabled.
	engineCfg := control.EngineConfig{
		StrobeMaxHz: cfg.Safety.StrobeMaxHz,
		SessionMax:  cfg.SessionMax(),
		FadeOut:     cfg.FadeOut(),
		ConsentHold: cfg.ConsentHold(),
	}

	engine, err := control.NewEngine(engineCfg, library, nil, control.SystemClock(), log)
	if err != nil {
		return fmt.Errorf("creating control engine: %w", err)
	}

	mqttBridge := bridge.New(mqttClient, engine, log)

	var sink control.OutputSink = mqttBridge
	if influxClient != nil {
		telemetrySink := bridge.NewTelemetrySink(influxClient, engine.Status, cfg.Site.ID, telemetryInterval)
		sink = control.MultiSink(mqttBridge, telemetrySink)
	}
	engine.SetSink(sink)

	// Session history recording
	sessionRepo := sessionlog.NewSQLiteRepository(db.DB)
	var telemetry sessionlog.Telemetry
	if influxClient != nil {
		telemetry = influxClient
	}
	recorder := sessionlog.NewRecorder(sessionRepo, telemetry, cfg.Site.ID, log)
	engine.SetRecorder(recorder)
	defer recorder.Flush()

	// Subscribe to inbound commands and start publishing status
	if err := mqttBridge.Start(); err != nil {
		return fmt.Errorf("starting MQTT bridge: %w", err)
	}
	go mqttBridge.RunStatusPublisher(ctx, statusPublishInterval)

	// Start the HTTP API server
	apiServer, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Security:   cfg.Security,
		Logger:     log,
		Engine:     engine,
		Library:    library,
		PresetRepo: presetRepo,
		Sessions:   sessionRepo,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, starting control loop",
		"tick", cfg.TickPeriod().String(),
		"strobe_max_hz", cfg.Safety.StrobeMaxHz,
		"session_max", cfg.SessionMax().String(),
	)

	// The control loop runs on the main goroutine until shutdown.
	loop := control.NewLoop(engine, cfg.TickPeriod(), log)
	if err := loop.Run(ctx); err != nil {
		return fmt.Errorf("control loop: %w", err)
	}

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("Kinesis Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses KINESIS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("KINESIS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
