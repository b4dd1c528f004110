package storage

import (
	"fmt"

	"github.com/daviszhen/matidx/pkg/common"
)

// Chunk is a horizontal partition of a table, one segment per column.
type Chunk struct {
	_segments []Segment
	_size     int
}

func NewChunk(segments []Segment) (*Chunk, error) {
	ret := &Chunk{
		_segments: segments,
	}
	for i, seg := range segments {
		if i == 0 {
			ret._size = seg.Size()
		} else if seg.Size() != ret._size {
			return nil, fmt.Errorf("segment %d has %d rows, expected %d", i, seg.Size(), ret._size)
		}
	}
	return ret, nil
}

func (chunk *Chunk) Size() int {
	return chunk._size
}

func (chunk *Chunk) ColumnCount() int {
	return len(chunk._segments)
}

func (chunk *Chunk) GetSegment(colId common.ColumnID) (Segment, error) {
	if int(colId) >= chunk.ColumnCount() {
		return nil, fmt.Errorf("%w: column %d of %d", common.ErrColumnNotFound, colId, chunk.ColumnCount())
	}
	return chunk._segments[colId], nil
}

func (chunk *Chunk) MemoryUsage() int {
	ret := 0
	for _, seg := range chunk._segments {
		ret += seg.MemoryUsage()
	}
	return ret
}

// ChunkEntry pairs a chunk with its id in the owning table.
type ChunkEntry struct {
	Id    common.ChunkID
	Chunk *Chunk
}
