package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgefit/forge/internal/bot"
	"github.com/forgefit/forge/internal/forgeapi"
	"github.com/forgefit/forge/internal/logging"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	fmt.Println("starting forge bot ...")

	apiURL := flag.String("api-url", "http://localhost:8080", "base URL of the forge backend")
	logsPath := flag.String("logs-path", "", "path to the log file (empty for stdout only)")
	logLevel := flag.String("log-level", "trace", "log level")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      *logsPath,
		LogToStdout:      true,
		LogLevel:         *logLevel,
		LogFormatJSON:    false,
		Environment:      "bot",
		SentryEnabled:    false,
		SentryDSN:        "",
		SentryServerName: "forge-bot",
	})

	discordToken := os.Getenv("DISCORD_TOKEN")
	if discordToken == "" {
		log.Fatalf("discord token not set, use DISCORD_TOKEN env var to set it")
	}

	apiClient := forgeapi.NewClient(*apiURL, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	})

	forgeBot, err := bot.New(discordToken, apiClient)
	if err != nil {
		log.Fatalf("new bot: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := forgeBot.Start(ctx); err != nil {
		log.Fatalf("start bot: %s", err)
	}
	log.Infof("bot running, backend at %s", *apiURL)

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)
	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, stopping bot ...", receivedSig)

	if err := forgeBot.Stop(); err != nil {
		log.Errorf("stop bot: %s", err)
	}
}
