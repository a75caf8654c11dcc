package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solar_monitor/internal/config"
	"solar_monitor/internal/deye"
	"solar_monitor/internal/handlers"
	"solar_monitor/internal/logger"
	"solar_monitor/internal/notify"
	"solar_monitor/internal/repository"
	"solar_monitor/internal/server"
	"solar_monitor/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// load config (.env + configs/config.yml + env overrides)
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(cfg.LogLevel)

	// open DB
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer closeDB(db, log)

	// wire dependencies
	repos := repository.NewRepository(db)
	client := deye.New(cfg.Deye, log)
	notifier := notify.NewTelegram(cfg.Telegram, log)
	services := service.NewService(repos, client, notifier, cfg, log)
	apiHandler := handlers.NewHandler(services, log)

	// start the background poller (restores alert state before the first tick)
	services.Poller.Start()

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(services.Poller, srv, log)
}

func closeDB(db *sql.DB, log *logger.Logger) {
	if cerr := db.Close(); cerr != nil {
		log.Errorw("failed to close sqlite", "err", cerr)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals, stops the poller and
// drains in-flight HTTP requests.
func waitForShutdown(poller service.Poller, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")

	poller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
