package messages

import (
	"math/rand/v2"
	"reflect"
	"testing"

	snapshotfb "github.com/cbodonnell/blockfall/flatbuffers/snapshot"
	"github.com/cbodonnell/blockfall/pkg/blocks"
	"github.com/cbodonnell/blockfall/pkg/display"
	"github.com/cbodonnell/blockfall/pkg/game"
	"github.com/cbodonnell/blockfall/pkg/game/types"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playedSnapshot(t *testing.T, moves int) *types.Snapshot {
	t.Helper()
	s := game.NewSession(game.NewSessionOptions{Rand: rand.New(rand.NewPCG(3, 5))})
	s.NewGame()
	for i := 0; i < moves && !s.GameOver(); i++ {
		switch i % 4 {
		case 0:
			s.AttemptMove(blocks.DirectionLeft)
		case 1:
			s.AttemptRotate()
		default:
			s.HardDrop()
		}
	}
	return s.Snapshot(int64(1700000000000 + moves))
}

func TestSerializeDeserializeSnapshot(t *testing.T) {
	type args struct {
		snapshot *types.Snapshot
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			name: "Empty snapshot",
			args: args{
				snapshot: &types.Snapshot{},
			},
		},
		{
			name: "New game",
			args: args{
				snapshot: playedSnapshot(t, 0),
			},
		},
		{
			name: "Game in progress",
			args: args{
				snapshot: playedSnapshot(t, 40),
			},
		},
		{
			name: "Finished game",
			args: args{
				snapshot: playedSnapshot(t, 10000),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := SerializeSnapshot(tt.args.snapshot)
			if (err != nil) != tt.wantErr {
				t.Errorf("SerializeSnapshot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			got, err := DeserializeSnapshot(b)
			if (err != nil) != tt.wantErr {
				t.Errorf("DeserializeSnapshot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !reflect.DeepEqual(got, tt.args.snapshot) {
				t.Errorf("DeserializeSnapshot() = %+v, want %+v", got, tt.args.snapshot)
			}
		})
	}
}

func TestDeserializedSnapshotRestores(t *testing.T) {
	snapshot := playedSnapshot(t, 40)
	b, err := SerializeSnapshot(snapshot)
	require.NoError(t, err)
	got, err := DeserializeSnapshot(b)
	require.NoError(t, err)

	s := game.NewSession(game.NewSessionOptions{Rand: rand.New(rand.NewPCG(1, 1))})
	require.NoError(t, s.Restore(got))
	assert.Equal(t, snapshot.Score, s.Score())
	assert.Equal(t, snapshot.Rows, s.Snapshot(0).Rows)
}

func TestDeserializeSnapshot_invalid(t *testing.T) {
	shortRows := func() []byte {
		builder := flatbuffers.NewBuilder(0)
		snapshotfb.SnapshotStartRowsVector(builder, 3)
		for i := 0; i < 3; i++ {
			builder.PrependUint16(0)
		}
		rows := builder.EndVector(3)
		snapshotfb.SnapshotStart(builder)
		snapshotfb.SnapshotAddRows(builder, rows)
		builder.Finish(snapshotfb.SnapshotEnd(builder))
		return builder.FinishedBytes()
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "too short", data: []byte{1, 2}},
		{name: "missing cells", data: shortRows()},
		{name: "garbage", data: []byte{0xff, 0xff, 0xff, 0x7f, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeSnapshotFlatbuffer(tt.data)
			assert.Error(t, err)
		})
	}

	_, err := DeserializeSnapshot([]byte("not zstd"))
	assert.Error(t, err)
}

func TestFrame(t *testing.T) {
	cache := display.New()
	p := blocks.NewPiece(2, 0, 3, 0)
	cache.Install(p)

	frame := NewFrame(cache, []display.RowRange{{Start: 3, End: 5}})
	require.Len(t, frame.Rows, 2)
	assert.Equal(t, 3, frame.Rows[0].Row)
	assert.Equal(t, uint8(blocks.ColorGreen), frame.Rows[0].Cells[7])
	assert.Equal(t, uint8(blocks.ColorGreen), frame.Rows[1].Cells[6])
	assert.Equal(t, uint8(blocks.ColorEmpty), frame.Rows[1].Cells[5])

	var cells [16][8]uint8
	require.NoError(t, frame.Apply(&cells))
	assert.Equal(t, frame.Rows[1].Cells, cells[4])
	assert.Equal(t, [8]uint8{}, cells[5])

	frame.Rows[0].Row = 16
	assert.Error(t, frame.Apply(&cells))
}

func TestNewMessage(t *testing.T) {
	m, err := NewMessage(MessageTypeServerStatus, &Status{State: "Running", Score: 42})
	require.NoError(t, err)
	assert.Equal(t, MessageTypeServerStatus, m.Type)
	assert.JSONEq(t, `{"state":"Running","score":42,"highScore":0,"rowsCleared":0}`, string(m.Payload))
}
