package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/horizon-sh/horizon/internal/activity"
	"github.com/horizon-sh/horizon/internal/calendar"
	"github.com/horizon-sh/horizon/internal/config"
	"github.com/horizon-sh/horizon/internal/refresh"
	"github.com/horizon-sh/horizon/internal/server"
	"github.com/horizon-sh/horizon/internal/store"
)

var (
	listenAddr string
	dbPath     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Horizon daemon",
	Long:  `Starts the Horizon daemon which serves the timeline and task API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address for the API server (overrides config)")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Println("Starting Horizon daemon...")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}

	journal := activity.NewJournal(s)

	var provider calendar.Provider
	if cfg.Calendar.Enabled {
		srv, err := calendar.NewGoogleService(cmd.Context(), cfg.Calendar.Credentials, cfg.Calendar.Token)
		if err != nil {
			log.Printf("Warning: calendar disabled: %v", err)
		} else {
			provider = calendar.NewGoogleProvider(srv, cfg.Calendar.CalendarID)
		}
	}

	refresher := refresh.New(provider, &refresh.Config{
		Interval:   cfg.Refresh.Interval,
		PastDays:   cfg.Refresh.PastDays,
		WindowDays: cfg.Refresh.WindowDays,
	})
	refresher.Start()
	defer refresher.Stop()

	service := server.NewService(s, journal, refresher)
	srv := server.NewServer(service, s, cfg.Listen)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		err := srv.Start()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server error: %v", err)
			s.Close()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Closing database connection...")
	if err := s.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}
