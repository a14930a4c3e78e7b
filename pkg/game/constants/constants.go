package constants

import "time"

const (
	// RowBonus is awarded for every completed row
	RowBonus uint32 = 100
	// SoftDropBonus is awarded for every row a piece is dropped by the player
	SoftDropBonus uint32 = 1

	// GravityBaseInterval is the gravity interval before any row is cleared
	GravityBaseInterval = 600 * time.Millisecond
	// GravityStep is how much faster gravity gets per cleared row
	GravityStep = 15 * time.Millisecond
	// GravityMinInterval is the fastest gravity gets
	GravityMinInterval = 100 * time.Millisecond

	// InitialRepeatDelay is how long a held input waits before repeating
	InitialRepeatDelay = 500 * time.Millisecond
	// RepeatInterval is the time between repeats of a held input
	RepeatInterval = 50 * time.Millisecond

	// TickInterval is how often the scheduler loop runs
	TickInterval = 5 * time.Millisecond

	// ButtonQueueSize is the depth of the button press queue
	ButtonQueueSize = 8
	// KeyQueueSize is the depth of the decoded key queue
	KeyQueueSize = 64

	// JoystickDeadZone is the normalized axis magnitude below which the stick is centered.
	// Raw 10-bit readings below 300 or above 700 fall outside it.
	JoystickDeadZone = 0.36

	// TopScoreCount is the number of entries on the scoreboard
	TopScoreCount = 5
	// MaxLabelLength is the longest label a score entry can carry
	MaxLabelLength = 3
	// DefaultLabel is used when a player has not set a label
	DefaultLabel = "AAA"

	// DefaultSnapshotSlot is the save slot used by the front ends
	DefaultSnapshotSlot = "default"
)
