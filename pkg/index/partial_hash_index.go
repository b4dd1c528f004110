// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package index

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"
	"go.uber.org/zap"

	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/storage"
	"github.com/daviszhen/matidx/pkg/util"
)

const (
	hashSize        = 8
	sliceHeaderSize = int(unsafe.Sizeof([]common.RowID(nil)))
	chunkIdSize     = int(unsafe.Sizeof(common.ChunkID(0)))
)

type bucket[T common.Scalar] struct {
	key  T
	rows []common.RowID
}

// PartialHashIndex maps the values of one column of a subset of the chunks
// of a table to the row ids holding them.
//
// Buckets are kept in insertion order. NaN keys share one bucket.
// The index is not synchronized: one writer, or many readers without writer.
type PartialHashIndex[T common.Scalar] struct {
	_colId         common.ColumnID
	_buckets       []bucket[T]
	_positions     map[T]int
	_nanPos        int
	_nullRows      []common.RowID
	_entryCount    int
	_indexedChunks *roaring.Bitmap
}

// NewPartialHashIndex indexes column colId of chunks.
func NewPartialHashIndex[T common.Scalar](chunks []storage.ChunkEntry, colId common.ColumnID) (*PartialHashIndex[T], error) {
	idx := &PartialHashIndex[T]{
		_colId:         colId,
		_positions:     make(map[T]int),
		_nanPos:        -1,
		_indexedChunks: roaring.New(),
	}
	if _, err := idx.Add(chunks); err != nil {
		return nil, err
	}
	return idx, nil
}

func isNaN[T common.Scalar](v T) bool {
	return v != v
}

func (idx *PartialHashIndex[T]) find(v T) (int, bool) {
	if isNaN(v) {
		return idx._nanPos, idx._nanPos >= 0
	}
	pos, has := idx._positions[v]
	return pos, has
}

func (idx *PartialHashIndex[T]) setPos(v T, pos int) {
	if isNaN(v) {
		idx._nanPos = pos
		return
	}
	idx._positions[v] = pos
}

func (idx *PartialHashIndex[T]) delPos(v T) {
	if isNaN(v) {
		idx._nanPos = -1
		return
	}
	delete(idx._positions, v)
}

func (idx *PartialHashIndex[T]) insert(v T, rowId common.RowID) {
	pos, has := idx.find(v)
	if !has {
		pos = len(idx._buckets)
		idx._buckets = append(idx._buckets, bucket[T]{key: v})
		idx.setPos(v, pos)
	}
	idx._buckets[pos].rows = append(idx._buckets[pos].rows, rowId)
	idx._entryCount++
}

type scannedChunk[T common.Scalar] struct {
	values []T
	rows   []common.RowID
	nulls  []common.RowID
}

func (idx *PartialHashIndex[T]) scan(entry storage.ChunkEntry) (*scannedChunk[T], error) {
	seg, err := entry.Chunk.GetSegment(idx._colId)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", entry.Id, err)
	}
	ret := &scannedChunk[T]{
		values: make([]T, 0, seg.Size()),
		rows:   make([]common.RowID, 0, seg.Size()),
	}
	err = storage.SegmentIterate(seg, func(pos storage.SegmentPosition[T]) {
		rowId := common.RowID{ChunkID: entry.Id, ChunkOffset: pos.Offset}
		if pos.IsNull {
			ret.nulls = append(ret.nulls, rowId)
			return
		}
		ret.values = append(ret.values, pos.Value)
		ret.rows = append(ret.rows, rowId)
	})
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", entry.Id, err)
	}
	return ret, nil
}

// Add indexes the chunks that are not indexed yet and returns how many were added.
// A chunk that fails to scan is not indexed. The chunks before it stay indexed.
func (idx *PartialHashIndex[T]) Add(chunks []storage.ChunkEntry) (int, error) {
	start := time.Now()
	added := 0
	for _, entry := range chunks {
		if idx.IsIndexed(entry.Id) {
			continue
		}
		scanned, err := idx.scan(entry)
		if err != nil {
			return added, err
		}
		for i, v := range scanned.values {
			idx.insert(v, scanned.rows[i])
		}
		idx._nullRows = append(idx._nullRows, scanned.nulls...)
		idx._indexedChunks.Add(uint32(entry.Id))
		added++
	}
	if added > 0 {
		util.Debug("partial hash index add",
			zap.Uint16("column", uint16(idx._colId)),
			zap.Int("added", added),
			zap.Int("buckets", len(idx._buckets)),
			zap.Int("entries", idx._entryCount),
			zap.Int("nulls", len(idx._nullRows)),
			zap.Duration("cost", time.Since(start)),
		)
	}
	return added, nil
}

// Remove drops every row of the indexed chunks among ids and returns how many
// chunks were removed. All chunks are removed in one pass over the index.
func (idx *PartialHashIndex[T]) Remove(ids []common.ChunkID) int {
	start := time.Now()
	removing := roaring.New()
	for _, id := range ids {
		if idx.IsIndexed(id) {
			removing.Add(uint32(id))
		}
	}
	if removing.IsEmpty() {
		return 0
	}
	idx._indexedChunks.AndNot(removing)

	pred := func(rowId common.RowID) bool {
		return removing.Contains(uint32(rowId.ChunkID))
	}
	kept := 0
	for i := range idx._buckets {
		b := idx._buckets[i]
		before := len(b.rows)
		b.rows = util.RemoveIf(b.rows, pred)
		idx._entryCount -= before - len(b.rows)
		if len(b.rows) == 0 {
			idx.delPos(b.key)
			continue
		}
		idx._buckets[kept] = b
		if kept != i {
			idx.setPos(b.key, kept)
		}
		kept++
	}
	clear(idx._buckets[kept:])
	idx._buckets = idx._buckets[:kept]
	idx._nullRows = util.RemoveIf(idx._nullRows, pred)

	cnt := int(removing.GetCardinality())
	util.Debug("partial hash index remove",
		zap.Uint16("column", uint16(idx._colId)),
		zap.Int("removed", cnt),
		zap.Int("buckets", len(idx._buckets)),
		zap.Int("entries", idx._entryCount),
		zap.Duration("cost", time.Since(start)),
	)
	return cnt
}

func (idx *PartialHashIndex[T]) at(pos int) Iterator {
	return Iterator{_src: bucketSource[T]{idx}, _list: pos}
}

func (idx *PartialHashIndex[T]) CBegin() Iterator {
	return idx.at(0)
}

func (idx *PartialHashIndex[T]) CEnd() Iterator {
	return idx.at(len(idx._buckets))
}

func (idx *PartialHashIndex[T]) NullCBegin() Iterator {
	return Iterator{_src: nullSource[T]{idx}}
}

func (idx *PartialHashIndex[T]) NullCEnd() Iterator {
	return Iterator{_src: nullSource[T]{idx}, _list: nullSource[T]{idx}.listCount()}
}

// Rows is the whole bucket range.
func (idx *PartialHashIndex[T]) Rows() IteratorPair {
	return IteratorPair{Begin: idx.CBegin(), End: idx.CEnd()}
}

func (idx *PartialHashIndex[T]) NullRows() IteratorPair {
	return IteratorPair{Begin: idx.NullCBegin(), End: idx.NullCEnd()}
}

// Equals returns the rows holding v.
func (idx *PartialHashIndex[T]) Equals(v T) IteratorPair {
	pos, has := idx.find(v)
	if !has {
		return IteratorPair{Begin: idx.CEnd(), End: idx.CEnd()}
	}
	return IteratorPair{Begin: idx.at(pos), End: idx.at(pos + 1)}
}

// NotEquals returns the rows before and after the bucket of v in bucket order.
// Rows with NULL are in neither range.
func (idx *PartialHashIndex[T]) NotEquals(v T) (IteratorPair, IteratorPair) {
	pos, has := idx.find(v)
	if !has {
		return idx.Rows(), IteratorPair{Begin: idx.CEnd(), End: idx.CEnd()}
	}
	return IteratorPair{Begin: idx.CBegin(), End: idx.at(pos)},
		IteratorPair{Begin: idx.at(pos + 1), End: idx.CEnd()}
}

// MemoryConsumption estimates the bytes held by the index.
func (idx *PartialHashIndex[T]) MemoryConsumption() int {
	ret := int(unsafe.Sizeof(*idx._indexedChunks))
	ret += chunkIdSize * int(idx._indexedChunks.GetCardinality())
	ret += int(unsafe.Sizeof(idx._positions)) + sliceHeaderSize
	ret += (hashSize + sliceHeaderSize) * len(idx._buckets)
	ret += common.RowIDSize * idx._entryCount
	ret += sliceHeaderSize
	ret += common.RowIDSize * len(idx._nullRows)
	return ret
}

// GetIndexedChunks returns the indexed chunk ids in ascending order.
func (idx *PartialHashIndex[T]) GetIndexedChunks() []common.ChunkID {
	ret := make([]common.ChunkID, 0, idx._indexedChunks.GetCardinality())
	it := idx._indexedChunks.Iterator()
	for it.HasNext() {
		ret = append(ret, common.ChunkID(it.Next()))
	}
	return ret
}

func (idx *PartialHashIndex[T]) IsIndexed(id common.ChunkID) bool {
	return idx._indexedChunks.Contains(uint32(id))
}

func (idx *PartialHashIndex[T]) ColumnID() common.ColumnID {
	return idx._colId
}

func (idx *PartialHashIndex[T]) IsIndexFor(colId common.ColumnID) bool {
	return idx._colId == colId
}

func (idx *PartialHashIndex[T]) DataType() common.PhyType {
	return common.PhyTypeOf[T]()
}

func (idx *PartialHashIndex[T]) BucketCount() int {
	return len(idx._buckets)
}

func (idx *PartialHashIndex[T]) EntryCount() int {
	return idx._entryCount
}
