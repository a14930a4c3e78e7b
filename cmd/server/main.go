package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/blockfall/pkg/api"
	"github.com/cbodonnell/blockfall/pkg/display"
	"github.com/cbodonnell/blockfall/pkg/game/constants"
	"github.com/cbodonnell/blockfall/pkg/input"
	"github.com/cbodonnell/blockfall/pkg/launcher"
	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/network"
	"github.com/cbodonnell/blockfall/pkg/queue"
	"github.com/cbodonnell/blockfall/pkg/scheduler"
	"github.com/cbodonnell/blockfall/pkg/version"
)

// The server plays a headless game driven by a serial device and streams it
// to viewers at /stream, next to the api.
func main() {
	serialDevice := flag.String("serial", "/dev/ttyUSB0", "Serial device to read keys from")
	baud := flag.Int("baud", 115200, "Baud rate of the serial device")
	port := flag.Int("port", 9090, "Port to serve the api and render stream on")
	label := flag.String("label", os.Getenv("BLOCKFALL_LABEL"), "Label recorded with the scores")
	migrations := flag.String("migrations", "./migrations", "Directory holding the database migrations")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	keys := input.NewKeys(queue.NewInMemoryQueue(constants.KeyQueueSize), nil)
	serialKeys, err := input.OpenSerialKeys(*serialDevice, *baud, keys)
	if err != nil {
		panic(fmt.Sprintf("Failed to open serial keys: %v", err))
	}
	defer serialKeys.Close()
	serialKeys.Start(ctx)

	hub := network.NewRenderHub()
	l, err := launcher.NewLauncher(ctx, launcher.NewLauncherOptions{
		DatabaseURL: os.Getenv("BLOCKFALL_DATABASE_URL"),
		Migrations:  *migrations,
		Label:       *label,
		Keys:        keys,
		Sinks:       []display.RenderSink{hub},
		Listeners:   []scheduler.StatusListener{launcher.PublishStatus(hub)},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to start: %v", err))
	}
	l.Start(ctx)

	server := api.NewAPIServer(api.NewAPIServerOptions{
		Port:       *port,
		Repository: l.Repository(),
		Stream:     hub,
	})
	go server.Start()

	log.Info("Starting scheduler")
	if err := l.Scheduler().Run(ctx, constants.TickInterval, nil); err != nil {
		log.Error("Scheduler stopped: %v", err)
	}

	stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := server.Stop(stopCtx); err != nil {
		log.Error("Failed to stop server: %v", err)
	}
	if err := l.Close(stopCtx); err != nil {
		log.Error("Failed to close: %v", err)
	}
}
