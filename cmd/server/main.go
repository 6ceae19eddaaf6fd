package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tidechat/relay/internal/server"
	"github.com/tidechat/relay/internal/store/sqlite"
)

func main() {
	fmt.Println("Starting chat relay server...")

	// Load configuration from the environment
	config, err := server.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	server.SetConfig(config)

	// Open the message store
	store, err := sqlite.Open(config.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open message store: %v", err)
	}

	// Wire the chat core and start the hub
	server.SetupChat(store)
	server.StartHub()

	// Setup routes and start the server
	mux := server.SetupRoutes()
	httpServer := server.CreateServer(config.Port, mux)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.StartServer(httpServer)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	if err := server.ShutdownServer(httpServer, config.ShutdownTimeout); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if err := server.GetHub().Shutdown(config.ShutdownTimeout); err != nil {
		log.Printf("Hub shutdown error: %v", err)
	}
	if err := store.Close(); err != nil {
		log.Printf("Store close error: %v", err)
	}
}
