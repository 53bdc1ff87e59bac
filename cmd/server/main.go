package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Tyrowin/strangerchat/internal/lobby"
	"github.com/Tyrowin/strangerchat/internal/logger"
	"github.com/Tyrowin/strangerchat/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	loaded, err := server.LoadConfig(".env")
	if err != nil {
		return err
	}
	server.SetConfig(loaded)
	config := server.CurrentConfig()

	log := logger.New(logger.Config{Level: config.LogLevel, Pretty: config.LogPretty})
	log.Info().Msg("Starting stranger chat server...")

	metrics := lobby.NewMetrics()
	engine := lobby.New(lobby.WithLogger(log), lobby.WithMetrics(metrics))
	hub := server.NewHub(engine, log)
	httpServer := server.CreateServer(config.Port, server.SetupRoutes(hub, metrics))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run()
		return nil
	})
	g.Go(func() error {
		return server.StartServer(httpServer)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down gracefully...")
		// Stop accepting upgrades before tearing down live sessions.
		httpErr := server.ShutdownServer(httpServer, config.ShutdownTimeout)
		if err := hub.Shutdown(config.ShutdownTimeout); err != nil {
			return err
		}
		return httpErr
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("Server stopped cleanly")
	return nil
}
