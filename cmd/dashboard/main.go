package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgefit/forge/internal/forgeapi"
	"github.com/forgefit/forge/internal/logging"
	"github.com/forgefit/forge/internal/webdash"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	fmt.Println("starting forge dashboard ...")

	host := flag.String("host", "", "host to bind to")
	port := flag.Int("port", 3000, "port to listen on")
	apiURL := flag.String("api-url", "http://localhost:8080", "base URL of the forge backend")
	timezone := flag.String("timezone", "America/New_York", "civil day timezone")
	logLevel := flag.String("log-level", "trace", "log level")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      "",
		LogToStdout:      true,
		LogLevel:         *logLevel,
		LogFormatJSON:    false,
		Environment:      "dashboard",
		SentryEnabled:    false,
		SentryDSN:        "",
		SentryServerName: "forge-dashboard",
	})

	discordID := os.Getenv("DEFAULT_DISCORD_ID")
	if discordID == "" {
		discordID = "default_user"
		log.Warnf("DEFAULT_DISCORD_ID not set, using %q", discordID)
	}

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		log.Fatalf("load timezone %q: %s", *timezone, err)
	}

	apiClient := forgeapi.NewClient(*apiURL, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	})

	handler, err := webdash.NewHandler(apiClient, discordID, loc)
	if err != nil {
		log.Fatalf("new dashboard handler: %s", err)
	}

	router := mux.NewRouter()
	handler.SetupRoutes(router)

	addr := net.JoinHostPort(*host, fmt.Sprintf("%d", *port))
	httpServer := &http.Server{
		Handler:      router,
		Addr:         addr,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	go func() {
		log.Infof(" > dashboard listening on: [%s]", addr)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("dashboard, listen and serve: %s", err)
		}
	}()

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)
	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, shutting down ...", receivedSig)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("failed to gracefully shutdown dashboard server: %s", err)
	}
}
