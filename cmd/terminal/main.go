package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cbodonnell/blockfall/client/terminal"
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
	"github.com/gdamore/tcell/v2"
)

func main() {
	serialDevice := flag.String("serial", "", "Serial device to read keys from, in addition to the keyboard")
	baud := flag.Int("baud", 115200, "Baud rate of the serial device")
	watch := flag.String("watch", "", "URL of a render stream to watch instead of playing")
	port := flag.Int("port", 0, "Port to serve the api and render stream on, 0 to disable")
	label := flag.String("label", os.Getenv("BLOCKFALL_LABEL"), "Label recorded with your scores")
	migrations := flag.String("migrations", "./migrations", "Directory holding the database migrations")
	seed := flag.Uint64("seed", 0, "Seed for the piece generator, 0 for a random one")
	logFile := flag.String("log-file", "blockfall.log", "File to log to, the screen belongs to the game")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(fmt.Sprintf("Failed to open log file: %v", err))
		}
		defer f.Close()
		out = f
	}
	logger := log.New(out, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting terminal version %s", version.Get())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	screen, err := tcell.NewScreen()
	if err != nil {
		panic(fmt.Sprintf("Failed to create screen: %v", err))
	}
	if err := screen.Init(); err != nil {
		panic(fmt.Sprintf("Failed to initialize screen: %v", err))
	}
	defer screen.Fini()

	if *watch != "" {
		runViewer(ctx, cancel, screen, *watch)
		return
	}

	keys := input.NewKeys(queue.NewInMemoryQueue(constants.KeyQueueSize), nil)
	term := terminal.New(screen, keys)

	if *serialDevice != "" {
		serialKeys, err := input.OpenSerialKeys(*serialDevice, *baud, keys)
		if err != nil {
			screen.Fini()
			panic(fmt.Sprintf("Failed to open serial keys: %v", err))
		}
		defer serialKeys.Close()
		serialKeys.Start(ctx)
	}

	opts := launcher.NewLauncherOptions{
		DatabaseURL: os.Getenv("BLOCKFALL_DATABASE_URL"),
		Migrations:  *migrations,
		Label:       *label,
		Seed:        *seed,
		Keys:        keys,
		Sinks:       []display.RenderSink{term},
		Listeners:   []scheduler.StatusListener{term},
	}
	var hub *network.RenderHub
	if *port > 0 {
		hub = network.NewRenderHub()
		opts.Sinks = append(opts.Sinks, hub)
		opts.Listeners = append(opts.Listeners, launcher.PublishStatus(hub))
	}

	l, err := launcher.NewLauncher(ctx, opts)
	if err != nil {
		screen.Fini()
		panic(fmt.Sprintf("Failed to start: %v", err))
	}
	l.Start(ctx)

	if hub != nil {
		server := api.NewAPIServer(api.NewAPIServerOptions{
			Port:       *port,
			Repository: l.Repository(),
			Stream:     hub,
		})
		go server.Start()
		defer func() {
			stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			if err := server.Stop(stopCtx); err != nil {
				log.Error("Failed to stop server: %v", err)
			}
		}()
	}

	go term.PollEvents(cancel)

	if err := l.Scheduler().Run(ctx, constants.TickInterval, term.TakeRedraw); err != nil {
		log.Error("Scheduler stopped: %v", err)
	}

	if err := l.Close(context.Background()); err != nil {
		log.Error("Failed to close: %v", err)
	}
}

// runViewer draws a remote game until the stream ends or the viewer quits.
func runViewer(ctx context.Context, cancel context.CancelFunc, screen tcell.Screen, url string) {
	term := terminal.New(screen, nil)
	go term.PollEvents(cancel)

	log.Info("Watching %s", url)
	err := network.Watch(ctx, url, network.ViewerHandlers{
		Frame:  term.RenderFrame,
		Status: term.DrawRemoteStatus,
	})
	if err != nil {
		log.Error("Render stream failed: %v", err)
	}
}
