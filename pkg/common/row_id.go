package common

import (
	"fmt"
	"unsafe"
)

type ChunkID uint32

type ChunkOffset uint32

type ColumnID uint16

// RowID addresses one row of one chunk.
type RowID struct {
	ChunkID     ChunkID
	ChunkOffset ChunkOffset
}

var RowIDSize = int(unsafe.Sizeof(RowID{}))

func (rid RowID) String() string {
	return fmt.Sprintf("(%d,%d)", rid.ChunkID, rid.ChunkOffset)
}

func RowIDLess(a, b RowID) bool {
	if a.ChunkID != b.ChunkID {
		return a.ChunkID < b.ChunkID
	}
	return a.ChunkOffset < b.ChunkOffset
}

// PosList is an unordered collection of row ids.
type PosList []RowID
