package launcher

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cbodonnell/blockfall/pkg/display"
	"github.com/cbodonnell/blockfall/pkg/game"
	"github.com/cbodonnell/blockfall/pkg/game/constants"
	"github.com/cbodonnell/blockfall/pkg/input"
	"github.com/cbodonnell/blockfall/pkg/log"
	"github.com/cbodonnell/blockfall/pkg/messages"
	"github.com/cbodonnell/blockfall/pkg/network"
	"github.com/cbodonnell/blockfall/pkg/repositories"
	"github.com/cbodonnell/blockfall/pkg/scheduler"
	"github.com/cbodonnell/blockfall/pkg/state"
	"github.com/cbodonnell/blockfall/pkg/workers"
)

// Launcher owns everything a front end needs around a scheduler: the
// repository, the save slot and the scoreboard.
type Launcher struct {
	repository   repositories.Repository
	stateManager *state.InMemoryStateManager
	saveWorker   *workers.SaveSnapshotWorker
	scoreWorker  *workers.ScoreWorker
	scheduler    *scheduler.Scheduler

	wg sync.WaitGroup
}

type NewLauncherOptions struct {
	// Repository is used as is when set, otherwise DatabaseURL is opened
	Repository  repositories.Repository
	DatabaseURL string
	// Migrations is the directory holding the sqlite and postgres migrations
	Migrations string
	// Slot is the save slot. Defaults to constants.DefaultSnapshotSlot.
	Slot string
	// SaveInterval is how often the save slot is written even without a save
	SaveInterval time.Duration
	// Label is recorded with every score
	Label string
	// Seed seeds the piece generator. Zero picks a random seed.
	Seed uint64

	Clock     scheduler.Clock
	Buttons   input.ButtonSource
	Joystick  input.JoystickSource
	Keys      input.KeySource
	Sinks     []display.RenderSink
	Listeners []scheduler.StatusListener
}

// NewLauncher opens the repository, restores the save slot and the
// scoreboard, and builds the scheduler. Call Start to run the workers and
// Close when done.
func NewLauncher(ctx context.Context, opts NewLauncherOptions) (*Launcher, error) {
	repository := opts.Repository
	if repository == nil {
		var err error
		repository, err = repositories.Open(ctx, opts.DatabaseURL, opts.Migrations)
		if err != nil {
			return nil, fmt.Errorf("failed to open repository: %v", err)
		}
	}

	slot := opts.Slot
	if slot == "" {
		slot = constants.DefaultSnapshotSlot
	}

	stateManager := state.NewInMemoryStateManager()
	saveWorker := workers.NewSaveSnapshotWorker(workers.NewSaveSnapshotWorkerOptions{
		Repository:   repository,
		StateManager: stateManager,
		Slot:         slot,
		Interval:     opts.SaveInterval,
	})
	if err := saveWorker.Restore(ctx); err != nil {
		repository.Close(ctx)
		return nil, fmt.Errorf("failed to restore save slot: %v", err)
	}

	scoreWorker := workers.NewScoreWorker(workers.NewScoreWorkerOptions{
		Repository: repository,
	})
	if err := scoreWorker.Init(ctx); err != nil {
		repository.Close(ctx)
		return nil, fmt.Errorf("failed to load scoreboard: %v", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	log.Debug("Seeding pieces with %d", seed)
	session := game.NewSession(game.NewSessionOptions{
		Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	})

	s := scheduler.NewScheduler(scheduler.NewSchedulerOptions{
		Session:   session,
		Clock:     opts.Clock,
		Buttons:   opts.Buttons,
		Joystick:  opts.Joystick,
		Keys:      opts.Keys,
		Sinks:     opts.Sinks,
		Store:     stateManager,
		Scores:    scoreWorker,
		Listeners: opts.Listeners,
		Label:     opts.Label,
	})

	return &Launcher{
		repository:   repository,
		stateManager: stateManager,
		saveWorker:   saveWorker,
		scoreWorker:  scoreWorker,
		scheduler:    s,
	}, nil
}

func (l *Launcher) Scheduler() *scheduler.Scheduler {
	return l.scheduler
}

func (l *Launcher) Repository() repositories.Repository {
	return l.repository
}

func (l *Launcher) ScoreWorker() *workers.ScoreWorker {
	return l.scoreWorker
}

// Start runs the workers until ctx is done.
func (l *Launcher) Start(ctx context.Context) {
	l.wg.Add(2)
	go func() {
		defer l.wg.Done()
		l.saveWorker.Start(ctx)
	}()
	go func() {
		defer l.wg.Done()
		l.scoreWorker.Start(ctx)
	}()
}

// Close waits for the workers to finish, which they do once the context
// given to Start is done, and closes the repository.
func (l *Launcher) Close(ctx context.Context) error {
	l.wg.Wait()
	return l.repository.Close(ctx)
}

// StatusMessage converts a scheduler status to its wire form.
func StatusMessage(status scheduler.Status) messages.Status {
	return messages.Status{
		State:       status.State.String(),
		Score:       status.Score,
		HighScore:   status.HighScore,
		RowsCleared: status.RowsCleared,
	}
}

// PublishStatus returns a listener that forwards every status to the hub's viewers.
func PublishStatus(hub *network.RenderHub) scheduler.StatusListener {
	return scheduler.StatusListenerFunc(func(status scheduler.Status) {
		hub.PublishStatus(StatusMessage(status))
	})
}
