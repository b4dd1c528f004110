package index

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/storage"
)

// TableIndex is a PartialHashIndex whose element type is chosen at runtime.
// Probe values are common.Value and must carry the indexed physical type.
type TableIndex interface {
	ColumnID() common.ColumnID
	IsIndexFor(colId common.ColumnID) bool
	DataType() common.PhyType
	Add(chunks []storage.ChunkEntry) (int, error)
	Remove(ids []common.ChunkID) int
	Equals(v common.Value) (IteratorPair, error)
	NotEquals(v common.Value) (IteratorPair, IteratorPair, error)
	CBegin() Iterator
	CEnd() Iterator
	NullCBegin() Iterator
	NullCEnd() Iterator
	Rows() IteratorPair
	NullRows() IteratorPair
	MemoryConsumption() int
	GetIndexedChunks() []common.ChunkID
	Print(tree treeprint.Tree)
	String() string
}

type valueIndex[T common.Scalar] struct {
	*PartialHashIndex[T]
}

func (idx valueIndex[T]) Equals(v common.Value) (IteratorPair, error) {
	x, err := common.ValueAs[T](v)
	if err != nil {
		return IteratorPair{}, err
	}
	return idx.PartialHashIndex.Equals(x), nil
}

func (idx valueIndex[T]) NotEquals(v common.Value) (IteratorPair, IteratorPair, error) {
	x, err := common.ValueAs[T](v)
	if err != nil {
		return IteratorPair{}, IteratorPair{}, err
	}
	lhs, rhs := idx.PartialHashIndex.NotEquals(x)
	return lhs, rhs, nil
}

func newValueIndex[T common.Scalar](chunks []storage.ChunkEntry, colId common.ColumnID) (TableIndex, error) {
	idx, err := NewPartialHashIndex[T](chunks, colId)
	if err != nil {
		return nil, err
	}
	return valueIndex[T]{idx}, nil
}

// NewTableIndex indexes column colId of chunks, whose physical type is typ.
func NewTableIndex(typ common.PhyType, chunks []storage.ChunkEntry, colId common.ColumnID) (TableIndex, error) {
	switch typ {
	case common.INT32:
		return newValueIndex[int32](chunks, colId)
	case common.INT64:
		return newValueIndex[int64](chunks, colId)
	case common.FLOAT:
		return newValueIndex[float32](chunks, colId)
	case common.DOUBLE:
		return newValueIndex[float64](chunks, colId)
	case common.VARCHAR:
		return newValueIndex[string](chunks, colId)
	default:
		return nil, fmt.Errorf("%w: no index for type %s", common.ErrTypeMismatch, typ)
	}
}

// NewTableIndexOf indexes column colId of the given chunks of table. No ids means every chunk.
func NewTableIndexOf(table *storage.Table, colId common.ColumnID, ids ...common.ChunkID) (TableIndex, error) {
	typ, err := table.ColumnType(colId)
	if err != nil {
		return nil, err
	}
	chunks, err := table.ChunkEntries(ids...)
	if err != nil {
		return nil, err
	}
	return NewTableIndex(typ.PTyp, chunks, colId)
}
