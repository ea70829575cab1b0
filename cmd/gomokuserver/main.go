// Command gomokuserver runs the gomoku3d HTTP API and, optionally, the line
// protocol listener.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/gomoku3d/internal/config"
	"github.com/yourusername/gomoku3d/pkg/api"
	"github.com/yourusername/gomoku3d/pkg/external"
)

const version = "0.1.0"

func main() {
	// Command line flags override the config file and environment.
	configFile := flag.String("config", "", "Path to config file (default: search XDG config dirs)")
	host := flag.String("host", "localhost", "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", 8080, "Port to listen on")
	boardSize := flag.Int("size", 14, "Board size N (N+1 intersections per side)")
	winLength := flag.Int("win", 5, "Stones in a row needed to win")
	maxSessions := flag.Int("max-sessions", 1000, "Maximum concurrent games (0 = unlimited)")
	protocolPort := flag.Int("protocol-port", 0, "Also serve the line protocol on this port")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", 30*time.Second, "HTTP write timeout")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("gomoku3d API Server v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Server.Host = *host
		case "port":
			cfg.Server.Port = *port
		case "size":
			cfg.Game.BoardSize = *boardSize
		case "win":
			cfg.Game.WinLength = *winLength
		case "max-sessions":
			cfg.Server.MaxSessions = *maxSessions
		case "protocol-port":
			cfg.Protocol.Enabled = true
			cfg.Protocol.Port = *protocolPort
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	log.Printf("gomoku3d API Server v%s", version)
	log.Printf("New games: board %d, win length %d", cfg.Game.BoardSize, cfg.Game.WinLength)

	store := api.NewSessionStore(cfg.EngineOptions(), cfg.Server.MaxSessions)

	serverConfig := api.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    *readTimeout,
		WriteTimeout:   *writeTimeout,
		IdleTimeout:    60 * time.Second,
		MaxFastWorkers: cfg.Server.MaxFastWorkers,
		MaxSlowWorkers: cfg.Server.MaxSlowWorkers,
	}
	server := api.NewServer(store, serverConfig, version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx)
	})
	if cfg.Protocol.Enabled {
		protocol := external.NewServer(external.ServerOptions{
			Host:          cfg.Server.Host,
			Port:          cfg.Protocol.Port,
			BoardSize:     cfg.Game.BoardSize,
			WinLength:     cfg.Game.WinLength,
			PromptEnabled: cfg.Protocol.Prompt,
		})
		g.Go(func() error {
			return protocol.ListenAndServe(ctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Printf("Server stopped")
}
