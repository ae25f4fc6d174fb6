// MeloHub Core - Device Connectivity Coordinator
//
// This is the main entry point for the MeloHub Core application.
// MeloHub Core sits between user interfaces and the device backends,
// coordinating discovery, connection state, and pairing for musical
// instruments and Bluetooth peripherals over an MQTT bus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/melohub/melohub-core/migrations"

	"github.com/melohub/melohub-core/internal/api"
	"github.com/melohub/melohub-core/internal/connectivity"
	"github.com/melohub/melohub-core/internal/executor"
	"github.com/melohub/melohub-core/internal/infrastructure/config"
	"github.com/melohub/melohub-core/internal/infrastructure/database"
	"github.com/melohub/melohub-core/internal/infrastructure/influxdb"
	"github.com/melohub/melohub-core/internal/infrastructure/logging"
	"github.com/melohub/melohub-core/internal/infrastructure/mqtt"
	"github.com/melohub/melohub-core/internal/profile"
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

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting MeloHub Core",
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

	// Profile store (aliases, auto-connect flags)
	profiles := profile.NewSQLiteRepository(db.DB)

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
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Lifecycle event bus over the MQTT client
	bus := mqtt.NewBus(mqttClient)

	// Command executor for the device backend
	exec, err := executor.New(mqttClient, executor.Options{
		Backend: cfg.Backend.Name,
		QoS:     byte(cfg.MQTT.QoS),
		Timeout: time.Duration(cfg.Backend.RequestTimeout) * time.Second,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("creating executor: %w", err)
	}
	log.Info("executor ready", "backend", cfg.Backend.Name)

	// One coordinator per device universe
	instruments := connectivity.NewCoordinator(connectivity.Instruments(), exec, bus, connectivity.Options{
		Aliases: profiles,
		Logger:  log,
	})
	bluetooth := connectivity.NewCoordinator(connectivity.Bluetooth(), exec, bus, connectivity.Options{
		Aliases: profiles,
		Logger:  log,
	})

	// UI intent topics drive the coordinators over the bus
	if err := connectivity.BindIntents(bus, instruments, bluetooth); err != nil {
		return fmt.Errorf("binding intents: %w", err)
	}
	log.Info("intent bindings established")

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

		// Mirror lifecycle events into the time-series store
		if telErr := bindTelemetry(bus, influxClient, instruments, bluetooth, log); telErr != nil {
			log.Warn("telemetry binding failed", "error", telErr)
		}
	} else {
		log.Info("InfluxDB disabled")
	}

	// Start API server
	apiServer, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		Instruments: instruments,
		Bluetooth:   bluetooth,
		MQTT:        mqttClient,
		DB:          db,
		Profiles:    profiles,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Startup connectivity behaviour: initial scan and auto-connect run
	// in the background so a slow backend never blocks startup.
	go startupConnectivity(ctx, cfg.Connectivity, instruments, bluetooth, profiles, log)

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("MeloHub Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MELOHUB_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MELOHUB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
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

// startupConnectivity runs the configured startup behaviour: an initial
// instrument scan, a paired-device refresh, and auto-connect for devices
// whose stored profile requests it. Failures are logged, not fatal — the
// backend may simply not be up yet, and the UI can always rescan.
func startupConnectivity(ctx context.Context, cfg config.ConnectivityConfig, instruments, bluetooth *connectivity.Coordinator, profiles profile.Repository, log *logging.Logger) {
	if !cfg.ScanOnStart {
		return
	}

	if _, err := instruments.Scan(ctx); err != nil {
		log.Warn("startup instrument scan failed", "error", err)
	}
	if err := bluetooth.RefreshPaired(ctx); err != nil {
		log.Warn("startup paired-device refresh failed", "error", err)
	}

	if !cfg.AutoConnect {
		return
	}

	ids, err := profiles.AutoConnectIDs(ctx)
	if err != nil {
		log.Warn("loading auto-connect profiles failed", "error", err)
		return
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if err := instruments.Connect(ctx, id); err != nil {
			log.Warn("auto-connect failed", "device_id", id, "error", err)
		} else {
			log.Info("auto-connected device", "device_id", id)
		}
	}
}
