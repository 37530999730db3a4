package main

import (
	"context"
	"fmt"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/moderation"
	"github.com/Tyrowin/roomchat/internal/server"
)

func main() {
	_ = godotenv.Load()

	config, err := server.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	replacement, err := config.ReplacementRune()
	if err != nil {
		log.Error("Invalid profanity replacement", "error", err)
		os.Exit(1)
	}
	filter, err := moderation.NewFilter(config.ExtraProfaneWords(), replacement)
	if err != nil {
		log.Error("Failed to build profanity filter", "error", err)
		os.Exit(1)
	}

	hub := server.NewHub(log, server.HubOptionsFromConfig(config))
	controller := chat.NewSessionController(
		log,
		chat.NewRegistry(),
		hub,
		filter,
		chat.NewMessageFactory(),
		chat.Options{ProfanityMode: config.ProfanityMode()},
	)
	hub.Attach(controller)
	go hub.Run()

	handlers := server.NewHandlers(log, hub, controller, config.Origins())
	httpServer := server.CreateServer(config.Addr(), server.SetupRoutes(handlers))

	go func() {
		if err := server.StartServer(log, httpServer); err != nil {
			log.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		config.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return server.ShutdownServer(ctx, log, httpServer)
			},
			"hub": func(context.Context) error {
				return hub.Shutdown(config.ShutdownTimeout)
			},
		},
	)

	exitCode := <-wait
	log.Info("Chat server exited", "code", exitCode)
	os.Exit(exitCode)
}
