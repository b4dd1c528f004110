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

package compute

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/scheduler"
	"github.com/daviszhen/matidx/pkg/storage"
	"github.com/daviszhen/matidx/pkg/util"
)

const (
	DefaultSamplesPerChunk = 10
)

type MaterializedValue[T common.Scalar] struct {
	RowId common.RowID
	Value T
}

// MaterializedSegment holds the non-null rows of one chunk.
type MaterializedSegment[T common.Scalar] []MaterializedValue[T]

// MaterializedColumn is index-aligned with chunk ids.
type MaterializedColumn[T common.Scalar] []MaterializedSegment[T]

func (col MaterializedColumn[T]) Size() int {
	ret := 0
	for _, seg := range col {
		ret += len(seg)
	}
	return ret
}

type MaterializeOptions struct {
	Sort             bool
	CollectNulls     bool
	SamplesPerChunk  int
	EstimateDistinct bool
}

func DefaultMaterializeOptions() MaterializeOptions {
	return MaterializeOptions{
		Sort:            true,
		CollectNulls:    true,
		SamplesPerChunk: DefaultSamplesPerChunk,
	}
}

type MaterializeResult[T common.Scalar] struct {
	Segments MaterializedColumn[T]
	NullRows common.PosList
	Samples  []T
	//nil unless EstimateDistinct is set
	Distinct *DistinctStats
}

// chunkState is what one chunk task writes besides its segment.
// Every task owns its state, the caller merges them after the join.
type chunkState[T common.Scalar] struct {
	nullRows common.PosList
	samples  []T
	distinct *DistinctStats
}

// ColumnMaterializer turns one column of a table into per-chunk value lists,
// one scheduled task per chunk.
type ColumnMaterializer[T common.Scalar] struct {
	_opts  MaterializeOptions
	_sched scheduler.Scheduler
}

// NewColumnMaterializer uses the current scheduler when sched is nil.
func NewColumnMaterializer[T common.Scalar](opts MaterializeOptions, sched scheduler.Scheduler) *ColumnMaterializer[T] {
	if sched == nil {
		sched = scheduler.Current()
	}
	if opts.SamplesPerChunk < 0 {
		opts.SamplesPerChunk = 0
	}
	return &ColumnMaterializer[T]{
		_opts:  opts,
		_sched: sched,
	}
}

func (mat *ColumnMaterializer[T]) Materialize(table *storage.Table, colId common.ColumnID) (*MaterializeResult[T], error) {
	start := time.Now()
	typ, err := table.ColumnType(colId)
	if err != nil {
		return nil, err
	}
	if typ.PTyp != common.PhyTypeOf[T]() {
		return nil, fmt.Errorf("%w: column %d is %s, materialized as %s",
			common.ErrTypeMismatch, colId, typ, common.PhyTypeOf[T]())
	}

	chunkCount := table.ChunkCount()
	output := make(MaterializedColumn[T], chunkCount)
	states := make([]chunkState[T], chunkCount)

	tasks := make([]scheduler.Task, 0, chunkCount)
	for chunkId := common.ChunkID(0); chunkId < chunkCount; chunkId++ {
		tasks = append(tasks, mat._sched.Schedule(func() error {
			return mat.materializeChunk(table, chunkId, colId, &output[chunkId], &states[chunkId])
		}))
	}
	if err = mat._sched.WaitForTasks(tasks); err != nil {
		return nil, fmt.Errorf("materialize column %d: %w", colId, err)
	}

	ret := &MaterializeResult[T]{
		Segments: output,
	}
	nullParts := make([][]common.RowID, chunkCount)
	sampleParts := make([][]T, chunkCount)
	for i := range states {
		nullParts[i] = states[i].nullRows
		sampleParts[i] = states[i].samples
	}
	ret.NullRows = util.Concat(nullParts)
	ret.Samples = util.Concat(sampleParts)
	if mat._opts.EstimateDistinct {
		ret.Distinct = NewDistinctStats()
		for i := range states {
			if err = ret.Distinct.Merge(states[i].distinct); err != nil {
				return nil, err
			}
		}
	}

	util.Debug("materialize column",
		zap.Uint16("column", uint16(colId)),
		zap.Uint32("chunks", uint32(chunkCount)),
		zap.Int("rows", output.Size()),
		zap.Int("nulls", len(ret.NullRows)),
		zap.Int("samples", len(ret.Samples)),
		zap.Bool("sort", mat._opts.Sort),
		zap.Duration("cost", time.Since(start)))
	return ret, nil
}

func (mat *ColumnMaterializer[T]) materializeChunk(
	table *storage.Table,
	chunkId common.ChunkID,
	colId common.ColumnID,
	output *MaterializedSegment[T],
	state *chunkState[T],
) error {
	chunk, err := table.GetChunk(chunkId)
	if err != nil {
		return err
	}
	segment, err := chunk.GetSegment(colId)
	if err != nil {
		return fmt.Errorf("chunk %d: %w", chunkId, err)
	}
	if state.distinct == nil && mat._opts.EstimateDistinct {
		state.distinct = NewDistinctStats()
	}

	//capacity for every row, nulls only make it shorter
	values := make(MaterializedSegment[T], 0, segment.Size())
	var buf []byte
	err = storage.SegmentIterate[T](segment, func(pos storage.SegmentPosition[T]) {
		rowId := common.RowID{ChunkID: chunkId, ChunkOffset: pos.Offset}
		if pos.IsNull {
			if mat._opts.CollectNulls {
				state.nullRows = append(state.nullRows, rowId)
			}
			return
		}
		values = append(values, MaterializedValue[T]{RowId: rowId, Value: pos.Value})
		if state.distinct != nil {
			buf = appendValueBytes(buf[:0], pos.Value)
			state.distinct.Insert(buf)
		}
	})
	if err != nil {
		return fmt.Errorf("chunk %d: %w", chunkId, err)
	}

	if mat._opts.Sort {
		slices.SortFunc(values, func(a, b MaterializedValue[T]) int {
			return cmp.Compare(a.Value, b.Value)
		})
	}

	state.samples = gatherSamples(values, mat._opts.SamplesPerChunk)
	*output = values
	return nil
}

// gatherSamples picks min(samplesToCollect, len(segment)) values at an even stride.
func gatherSamples[T common.Scalar](segment MaterializedSegment[T], samplesToCollect int) []T {
	samplesToCollect = min(samplesToCollect, len(segment))
	if samplesToCollect <= 0 {
		return nil
	}
	stride := len(segment) / samplesToCollect
	collected := make([]T, 0, samplesToCollect)
	for k := 0; k < samplesToCollect; k++ {
		collected = append(collected, segment[k*stride].Value)
	}
	return collected
}
