package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"huddle/auth"
	"huddle/contract"
	"huddle/infrastructure/api"
	"huddle/infrastructure/grpc/server"
	"huddle/infrastructure/storage"
	"huddle/infrastructure/ws"
	"huddle/internal"
	"huddle/moderation"
	"huddle/observability"
	"huddle/repositories"
	"huddle/runtime"
	"huddle/runtime/workers"
	"huddle/services"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until SIGINT or SIGTERM.
// Deferred cleanups run before main exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage
	store, err := openStore(config, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// 3. Moderation
	replacement, _ := internal.CharacterRune(config.CharReplacement)
	moderator, err := moderation.NewModerator(moderation.ParseWords(config.CensoredWords), replacement, log)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 4. Supervision & rooms
	sup := workers.NewSupervisor(log, config.RestartInterval)
	manager := runtime.NewManager(log, sup, runtime.RoomActorConfig{
		Rooms:      repositories.NewRoomRepository(store, log, nil),
		Invites:    auth.NewInviteManager(repositories.NewInviteRepository(store), config.InviteTTL, log, nil),
		Filter:     moderator,
		Limits:     config.Limits(),
		BufferSize: config.CommandBufferSize,
	})
	service := services.NewRoomService(manager)

	// 5. Listeners
	httpAddress := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpListener, err := net.Listen("tcp", httpAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", httpAddress, err)
	}
	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	grpcListener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		_ = httpListener.Close()
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}

	origins := config.AllowedOrigins()
	handler := api.NewHandler(service, ws.NewUpgrader(origins, config.ConnectionBufferSize, log), manager.Stats, log)
	sup.Add(
		api.NewServer(httpListener, api.NewRouter(handler, origins, log), log),
		server.NewHealthServer(grpcListener, log),
		workers.NewReporterWorker(observability.NewMonitor(manager.Stats, log), config.MetricInterval, log),
	)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Run until stopped. Room actors close their connections on the way out.
	log.Info("Starting huddle", "http", httpAddress, "grpc", grpcAddress, "store", config.StoreBackend)
	sup.Run(ctx)
	log.Info("Program stopped cleanly")
	return nil
}

func openStore(config internal.Config, log *slog.Logger) (contract.KeyValueStore, error) {
	switch config.StoreBackend {
	case internal.StoreValkey:
		store, err := storage.OpenValkey(config.ValkeyAddr, config.ValkeyPassword, log)
		if err != nil {
			return nil, fmt.Errorf("valkey connection failed: %w", err)
		}
		return store, nil
	default:
		store, err := storage.OpenBadger(config.BadgerFilepath, log)
		if err != nil {
			return nil, fmt.Errorf("database opening failed: %w", err)
		}
		return store, nil
	}
}
