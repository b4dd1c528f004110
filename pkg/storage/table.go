package storage

import (
	"fmt"

	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/util"
)

const (
	DefaultTargetChunkSize = 65535
)

type ColumnDefinition struct {
	Name     string
	Type     common.LType
	Nullable bool
}

// Table is an append-only list of chunks.
type Table struct {
	_colDefs         []*ColumnDefinition
	_chunks          []*Chunk
	_targetChunkSize int
	_lock            *util.ReentryLock
}

func NewTable(colDefs []*ColumnDefinition, targetChunkSize int) *Table {
	if targetChunkSize <= 0 {
		targetChunkSize = DefaultTargetChunkSize
	}
	return &Table{
		_colDefs:         colDefs,
		_targetChunkSize: targetChunkSize,
		_lock:            util.NewReentryLock(),
	}
}

func (table *Table) ColumnDefinitions() []*ColumnDefinition {
	return table._colDefs
}

func (table *Table) ColumnCount() int {
	return len(table._colDefs)
}

func (table *Table) ColumnType(colId common.ColumnID) (common.LType, error) {
	if int(colId) >= len(table._colDefs) {
		return common.LType{}, fmt.Errorf("%w: column %d of %d", common.ErrColumnNotFound, colId, len(table._colDefs))
	}
	return table._colDefs[colId].Type, nil
}

func (table *Table) ColumnIdByName(name string) (common.ColumnID, error) {
	for i, def := range table._colDefs {
		if def.Name == name {
			return common.ColumnID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s", common.ErrColumnNotFound, name)
}

func (table *Table) TargetChunkSize() int {
	return table._targetChunkSize
}

func (table *Table) ChunkCount() common.ChunkID {
	table._lock.Lock()
	defer table._lock.Unlock()
	return common.ChunkID(len(table._chunks))
}

func (table *Table) GetChunk(id common.ChunkID) (*Chunk, error) {
	table._lock.Lock()
	defer table._lock.Unlock()
	if int(id) >= len(table._chunks) {
		return nil, fmt.Errorf("%w: chunk %d of %d", common.ErrChunkNotFound, id, len(table._chunks))
	}
	return table._chunks[id], nil
}

func (table *Table) RowCountOf(id common.ChunkID) (int, error) {
	chunk, err := table.GetChunk(id)
	if err != nil {
		return 0, err
	}
	return chunk.Size(), nil
}

func (table *Table) RowCount() int {
	table._lock.Lock()
	defer table._lock.Unlock()
	ret := 0
	for _, chunk := range table._chunks {
		ret += chunk.Size()
	}
	return ret
}

// ChunkEntries returns the chunks with the given ids, all chunks if none given.
func (table *Table) ChunkEntries(ids ...common.ChunkID) ([]ChunkEntry, error) {
	table._lock.Lock()
	defer table._lock.Unlock()
	if len(ids) == 0 {
		ret := make([]ChunkEntry, len(table._chunks))
		for i, chunk := range table._chunks {
			ret[i] = ChunkEntry{Id: common.ChunkID(i), Chunk: chunk}
		}
		return ret, nil
	}
	ret := make([]ChunkEntry, 0, len(ids))
	for _, id := range ids {
		chunk, err := table.GetChunk(id)
		if err != nil {
			return nil, err
		}
		ret = append(ret, ChunkEntry{Id: id, Chunk: chunk})
	}
	return ret, nil
}

// AppendChunk validates segments against the column definitions and adds them
// as a new chunk.
func (table *Table) AppendChunk(segments ...Segment) (common.ChunkID, error) {
	if len(segments) != len(table._colDefs) {
		return 0, fmt.Errorf("chunk has %d segments, table has %d columns", len(segments), len(table._colDefs))
	}
	for i, seg := range segments {
		want := table._colDefs[i].Type.PTyp
		if seg.DataType() != want {
			return 0, fmt.Errorf("%w: segment %d is %s, column %s is %s",
				common.ErrTypeMismatch, i, seg.DataType(), table._colDefs[i].Name, want)
		}
		if seg.Size() > table._targetChunkSize {
			return 0, fmt.Errorf("segment %d has %d rows, chunk size is %d", i, seg.Size(), table._targetChunkSize)
		}
	}
	chunk, err := NewChunk(segments)
	if err != nil {
		return 0, err
	}

	table._lock.Lock()
	defer table._lock.Unlock()
	table._chunks = append(table._chunks, chunk)
	return common.ChunkID(len(table._chunks) - 1), nil
}

// AppendChunks adds every chunk or none of them.
func (table *Table) AppendChunks(chunks [][]Segment) error {
	table._lock.Lock()
	defer table._lock.Unlock()
	before := len(table._chunks)
	for _, segments := range chunks {
		if _, err := table.AppendChunk(segments...); err != nil {
			clear(table._chunks[before:])
			table._chunks = table._chunks[:before]
			return err
		}
	}
	return nil
}

func (table *Table) MemoryUsage() int {
	table._lock.Lock()
	defer table._lock.Unlock()
	ret := 0
	for _, chunk := range table._chunks {
		ret += chunk.MemoryUsage()
	}
	return ret
}
