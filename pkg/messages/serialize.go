package messages

import (
	"bytes"
	"fmt"
	"io"

	snapshotfb "github.com/cbodonnell/blockfall/flatbuffers/snapshot"
	"github.com/cbodonnell/blockfall/pkg/board"
	"github.com/cbodonnell/blockfall/pkg/game/types"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
)

// SerializeSnapshot encodes a snapshot as a zstd compressed flatbuffer.
func SerializeSnapshot(s *types.Snapshot) ([]byte, error) {
	b := SerializeSnapshotFlatbuffer(s)

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

// DeserializeSnapshot decodes the output of SerializeSnapshot. The result has
// the right shape but is not checked against the game rules; Restore does that.
func DeserializeSnapshot(data []byte) (*types.Snapshot, error) {
	compReader, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()
	b, err := io.ReadAll(compReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read decompressed snapshot: %v", err)
	}

	snapshot, err := DeserializeSnapshotFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot: %v", err)
	}

	return snapshot, nil
}

func SerializeSnapshotFlatbuffer(s *types.Snapshot) []byte {
	builder := flatbuffers.NewBuilder(256)

	cells := make([]byte, 0, board.Rows*board.Cols)
	for _, row := range s.Cells {
		cells = append(cells, row[:]...)
	}
	cellsVector := builder.CreateByteVector(cells)

	snapshotfb.SnapshotStartRowsVector(builder, board.Rows)
	for i := board.Rows - 1; i >= 0; i-- {
		builder.PrependUint16(s.Rows[i])
	}
	rowsVector := builder.EndVector(board.Rows)

	current := serializePieceFlatbuffer(builder, s.Current)
	next := serializePieceFlatbuffer(builder, s.Next)

	snapshotfb.SnapshotStart(builder)
	snapshotfb.SnapshotAddTimestamp(builder, s.Timestamp)
	snapshotfb.SnapshotAddRows(builder, rowsVector)
	snapshotfb.SnapshotAddCells(builder, cellsVector)
	snapshotfb.SnapshotAddCurrent(builder, current)
	snapshotfb.SnapshotAddHasCurrent(builder, s.HasCurrent)
	snapshotfb.SnapshotAddNext(builder, next)
	snapshotfb.SnapshotAddScore(builder, s.Score)
	snapshotfb.SnapshotAddRowsCleared(builder, s.RowsCleared)
	snapshotfb.SnapshotAddGameOver(builder, s.GameOver)
	snapshot := snapshotfb.SnapshotEnd(builder)
	builder.Finish(snapshot)

	return builder.FinishedBytes()
}

func serializePieceFlatbuffer(builder *flatbuffers.Builder, p types.PieceState) flatbuffers.UOffsetT {
	snapshotfb.PieceStart(builder)
	snapshotfb.PieceAddShape(builder, byte(p.Shape))
	snapshotfb.PieceAddRotation(builder, byte(p.Rotation))
	snapshotfb.PieceAddRow(builder, byte(p.Row))
	snapshotfb.PieceAddColumn(builder, byte(p.Column))
	return snapshotfb.PieceEnd(builder)
}

func DeserializeSnapshotFlatbuffer(b []byte) (snapshot *types.Snapshot, err error) {
	if len(b) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("buffer too short: %d bytes", len(b))
	}
	// a corrupt buffer makes the accessors index out of range
	defer func() {
		if r := recover(); r != nil {
			snapshot, err = nil, fmt.Errorf("corrupt snapshot buffer: %v", r)
		}
	}()

	fb := snapshotfb.GetRootAsSnapshot(b, 0)
	if n := fb.RowsLength(); n != board.Rows {
		return nil, fmt.Errorf("expected %d rows, got %d", board.Rows, n)
	}
	cells := fb.CellsBytes()
	if len(cells) != board.Rows*board.Cols {
		return nil, fmt.Errorf("expected %d cells, got %d", board.Rows*board.Cols, len(cells))
	}

	snapshot = &types.Snapshot{
		Timestamp:   fb.Timestamp(),
		HasCurrent:  fb.HasCurrent(),
		Score:       fb.Score(),
		RowsCleared: fb.RowsCleared(),
		GameOver:    fb.GameOver(),
	}
	for i := 0; i < board.Rows; i++ {
		snapshot.Rows[i] = fb.Rows(i)
		copy(snapshot.Cells[i][:], cells[i*board.Cols:(i+1)*board.Cols])
	}
	snapshot.Current = pieceStateFromFlatbuffer(fb.Current(nil))
	snapshot.Next = pieceStateFromFlatbuffer(fb.Next(nil))

	return snapshot, nil
}

func pieceStateFromFlatbuffer(fb *snapshotfb.Piece) types.PieceState {
	if fb == nil {
		return types.PieceState{}
	}
	return types.PieceState{
		Shape:    int(fb.Shape()),
		Rotation: int(fb.Rotation()),
		Row:      int(fb.Row()),
		Column:   int(fb.Column()),
	}
}
