package models

// Snapshot is a serialized game stored in a save slot.
type Snapshot struct {
	Slot      string `json:"slot"`
	UpdatedAt int64  `json:"updated_at"`
	Data      []byte `json:"-"`
}
