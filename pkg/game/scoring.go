package game

import (
	"time"

	"github.com/cbodonnell/blockfall/pkg/game/constants"
)

// ScoringPolicy sets the points awarded by a session.
type ScoringPolicy struct {
	// RowBonus is awarded per completed row
	RowBonus uint32
	// SoftDropBonus is awarded per row of a player requested drop. Zero disables it.
	SoftDropBonus uint32
}

func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		RowBonus:      constants.RowBonus,
		SoftDropBonus: constants.SoftDropBonus,
	}
}

// GravityInterval returns how long a piece hangs before falling one row after
// rowsCleared rows have been cleared. It shrinks by constants.GravityStep per row
// until it reaches constants.GravityMinInterval.
func GravityInterval(rowsCleared uint32) time.Duration {
	step := time.Duration(rowsCleared) * constants.GravityStep
	if step >= constants.GravityBaseInterval-constants.GravityMinInterval {
		return constants.GravityMinInterval
	}
	return constants.GravityBaseInterval - step
}
