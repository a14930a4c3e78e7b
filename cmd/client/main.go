package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cbodonnell/blockfall/client/game"
	"github.com/cbodonnell/blockfall/client/input"
	"github.com/cbodonnell/blockfall/pkg/game/constants"
	gameinput "github.com/cbodonnell/blockfall/pkg/input"
	"github.com/cbodonnell/blockfall/pkg/launcher"
	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/queue"
	"github.com/cbodonnell/blockfall/pkg/version"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug overlay")
	label := flag.String("label", os.Getenv("BLOCKFALL_LABEL"), "Label recorded with your scores")
	migrations := flag.String("migrations", "./migrations", "Directory holding the database migrations")
	seed := flag.Uint64("seed", 0, "Seed for the piece generator, 0 for a random one")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting client version %s", version.Get())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	devices := &input.Devices{
		Buttons:  gameinput.NewButtons(queue.NewInMemoryQueue(constants.ButtonQueueSize)),
		Joystick: gameinput.NewJoystick(constants.JoystickDeadZone),
		Keys:     gameinput.NewKeys(queue.NewInMemoryQueue(constants.KeyQueueSize), nil),
	}

	l, err := launcher.NewLauncher(ctx, launcher.NewLauncherOptions{
		DatabaseURL: os.Getenv("BLOCKFALL_DATABASE_URL"),
		Migrations:  *migrations,
		Label:       *label,
		Seed:        *seed,
		Buttons:     devices.Buttons,
		Joystick:    devices.Joystick,
		Keys:        devices.Keys,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to start: %v", err))
	}
	l.Start(ctx)

	g, err := game.NewGame(game.NewGameOptions{
		Debug:     *debug,
		Context:   ctx,
		Scheduler: l.Scheduler(),
		Devices:   devices,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create game: %v", err))
	}

	ebiten.SetWindowSize(game.DefaultScreenWidth, game.DefaultScreenHeight)
	ebiten.SetWindowTitle("Blockfall")
	if err := ebiten.RunGame(g); err != nil {
		log.Error("Failed to run game: %v", err)
	}

	cancel()
	if err := l.Close(context.Background()); err != nil {
		log.Error("Failed to close: %v", err)
	}
}
