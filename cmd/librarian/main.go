// librarian is a playback client for a Librarian media server. It owns the
// authoritative playback session, drives the local media element or a cast
// receiver, keeps the server's position in sync and exposes a small status
// API.
//
// Environment Variables:
//   LIBRARIAN_SERVER_URL    URL of the Librarian server
//   LIBRARIAN_SERVER_TOKEN  API token for the server
//   SYNC_INTERVAL           (optional) Go duration string for position sync (e.g., "15s")
//   POSITION_DEBOUNCE       (optional) Minimum position delta in seconds before a sync
//   CAST_DISCOVERY_TIMEOUT  (optional) Cast discovery timeout (e.g., "10s")
//   LOG_LEVEL               (optional) Log level (debug, info, warn, error)
//   LOG_FORMAT              (optional) Log format (json, console)
//   STATUS_PORT             (optional) Port for the status server (default: 8080)
//   DEVICE_DB_PATH          (optional) Path to the cast device database
//   STATE_FILE              (optional) Path to the playback snapshot file
//
// Endpoints:
//   GET /healthz            # Health check
//   GET /api/nowplaying     # Active session, metadata and authority
//   GET /api/queue          # Queue items and active index
//   GET /api/devices        # Known cast devices
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dastari/librarian/internal/api/librarian"
	"github.com/Dastari/librarian/internal/config"
	"github.com/Dastari/librarian/internal/devices"
	"github.com/Dastari/librarian/internal/logger"
	"github.com/Dastari/librarian/internal/playback"
	"github.com/Dastari/librarian/internal/playback/state"
	"github.com/Dastari/librarian/internal/resolver"
	"github.com/Dastari/librarian/internal/server"
	"github.com/Dastari/librarian/internal/transport/cast"
	"github.com/Dastari/librarian/internal/transport/local"
)

var (
	version = "dev" // Set during build
)

func main() {
	flags := parseFlags()

	if flags.help {
		showHelp()
		return
	}
	if flags.version {
		showVersion()
		return
	}

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     logger.ParseLogFormat(cfg.Logging.Format),
		Output:     os.Stdout,
		TimeFormat: time.RFC3339,
	})
	log := logger.Get()

	log.Info("Starting librarian", map[string]interface{}{
		"version":    version,
		"server_url": cfg.Server.URL,
		"log_level":  cfg.Logging.Level,
	})

	// Signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// API client
	client := librarian.NewClient(cfg.Server.URL, cfg.Server.Token, log)

	// Cast device registry
	db, err := devices.NewDatabase(cfg.Paths.DeviceDB, log)
	if err != nil {
		log.Error("Failed to open device database", map[string]interface{}{
			"path":  cfg.Paths.DeviceDB,
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer db.Close()
	registry := devices.NewRepository(db, log)

	// Transports
	element := local.NewClockElement(log)
	castTransport := cast.New(client, int(cfg.Cast.DiscoveryTimeout.Seconds()), log)

	// Playback service. The local transport needs the service as its
	// session sink and the service needs the transport, so the transport
	// is created against the element first and the sink is the service.
	res := resolver.New(client, log)
	snapshots := state.NewStore(cfg.Paths.StateFile)

	var svc *playback.Service
	localTransport := local.New(element, client, sinkFunc{playing: func(p bool) { svc.PlayingChanged(p) },
		duration: func(d float64) { svc.DurationLoaded(d) },
		ended:    func() { svc.Ended() }}, log)
	element.AttachEvents(localTransport)

	svc = playback.NewService(client, client, res, localTransport, castTransport, snapshots, playback.Options{
		SyncInterval:     cfg.Playback.SyncInterval,
		PositionDebounce: cfg.Playback.PositionDebounce,
	}, log)

	// Adopt the server's sync interval when it publishes one
	if seconds, err := client.GetSyncIntervalSeconds(ctx); err == nil {
		svc.ApplySyncInterval(seconds)
	}

	// Re-adopt any session the server already has
	if err := svc.Refresh(ctx); err != nil {
		log.Warn("Initial session refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initial cast discovery and registry reconcile
	go func() {
		if err := castTransport.Discover(ctx); err != nil {
			log.Warn("Cast discovery failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if err := registry.Reconcile(castTransport.Devices()); err != nil {
			log.Warn("Device registry reconcile failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Status server
	errCh := make(chan error, 1)
	srv := server.New(fmt.Sprintf(":%s", cfg.Status.Port), svc, registry, log)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("failed to start status server: %w", err)
		}
	}()

	// Wait for shutdown signal or fatal error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received", nil)
	case err := <-errCh:
		log.Error("Fatal error occurred", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Initiating graceful shutdown...", map[string]interface{}{
		"timeout": cfg.Status.ShutdownTimeout.String(),
	})
	stop()

	svc.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Status.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Shutdown completed", nil)
}

// sinkFunc adapts the playback service's methods to the local transport's
// sink interface without a circular construction order
type sinkFunc struct {
	playing  func(bool)
	duration func(float64)
	ended    func()
}

func (s sinkFunc) PlayingChanged(isPlaying bool) { s.playing(isPlaying) }
func (s sinkFunc) DurationLoaded(d float64)      { s.duration(d) }
func (s sinkFunc) Ended()                        { s.ended() }

func showHelp() {
	fmt.Println("Librarian playback client")
	fmt.Println("\nUsage:")
	fmt.Println("  librarian [flags]")

	fmt.Println("\nRequired Configuration (can be provided via flags or environment variables):")
	fmt.Println("  --server-url URL")
	fmt.Println("  \tLibrarian server URL")
	fmt.Println("  \tEnvironment: LIBRARIAN_SERVER_URL")

	fmt.Println("  --server-token TOKEN")
	fmt.Println("  \tLibrarian API token")
	fmt.Println("  \tEnvironment: LIBRARIAN_SERVER_TOKEN")

	fmt.Println("\nOptional Configuration:")
	fmt.Println("  --config PATH")
	fmt.Println("  \tPath to a YAML config file")
	fmt.Println("  --port PORT")
	fmt.Println("  \tStatus server port (default: 8080)")
	fmt.Println("  \tEnvironment: STATUS_PORT")
	fmt.Println("  --log-level LEVEL")
	fmt.Println("  \tLog level: debug, info, warn, error")
	fmt.Println("  \tEnvironment: LOG_LEVEL")
}

func showVersion() {
	fmt.Printf("librarian %s\n", version)
}
