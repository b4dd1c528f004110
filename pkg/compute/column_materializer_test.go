package compute

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/scheduler"
	"github.com/daviszhen/matidx/pkg/storage"
)

func testSchedulers(t *testing.T) map[string]scheduler.Scheduler {
	nq, err := scheduler.NewNodeQueueScheduler(4)
	require.NoError(t, err)
	t.Cleanup(nq.Close)
	return map[string]scheduler.Scheduler{
		"immediate": scheduler.NewImmediateScheduler(),
		"nodeQueue": nq,
	}
}

// newInt32Table cuts values into chunks of the given sizes. A nil value is NULL.
func newInt32Table(t *testing.T, enc storage.EncodingType, chunks ...[]*int32) *storage.Table {
	table := storage.NewTable([]*storage.ColumnDefinition{
		{Name: "x", Type: common.IntegerType(), Nullable: true},
	}, storage.DefaultTargetChunkSize)
	for _, chunk := range chunks {
		values := make([]int32, len(chunk))
		nulls := make([]bool, len(chunk))
		for i, v := range chunk {
			if v == nil {
				nulls[i] = true
			} else {
				values[i] = *v
			}
		}
		_, err := table.AppendChunk(storage.EncodeSegment(values, nulls, enc))
		require.NoError(t, err)
	}
	return table
}

func vals(xs ...any) []*int32 {
	ret := make([]*int32, len(xs))
	for i, x := range xs {
		if x != nil {
			v := int32(x.(int))
			ret[i] = &v
		}
	}
	return ret
}

func seq(from, to int) []*int32 {
	ret := make([]*int32, 0, to-from)
	for i := from; i < to; i++ {
		v := int32(i)
		ret = append(ret, &v)
	}
	return ret
}

func reversed(xs []*int32) []*int32 {
	ret := slices.Clone(xs)
	slices.Reverse(ret)
	return ret
}

func TestMaterializeRowCount(t *testing.T) {
	for name, sched := range testSchedulers(t) {
		for _, chunkSize := range []int{1, 3, 7, 20, 64} {
			t.Run(fmt.Sprintf("%s/%d", name, chunkSize), func(t *testing.T) {
				all := seq(0, 20)
				var chunks [][]*int32
				for i := 0; i < len(all); i += chunkSize {
					chunks = append(chunks, all[i:min(i+chunkSize, len(all))])
				}
				table := newInt32Table(t, storage.EncodingUnencoded, chunks...)

				mat := NewColumnMaterializer[int32](DefaultMaterializeOptions(), sched)
				res, err := mat.Materialize(table, 0)
				require.NoError(t, err)
				require.Len(t, res.Segments, len(chunks))
				assert.Equal(t, table.RowCount(), res.Segments.Size())
				assert.Empty(t, res.NullRows)
				for i, seg := range res.Segments {
					assert.Len(t, seg, len(chunks[i]))
				}
			})
		}
	}
}

func TestMaterializeSorted(t *testing.T) {
	input := [][]*int32{
		vals(5, 3, nil, 9, 1, 3),
		vals(2, nil, nil),
		reversed(seq(0, 50)),
	}
	for name, sched := range testSchedulers(t) {
		for _, enc := range []storage.EncodingType{storage.EncodingUnencoded, storage.EncodingDictionary, storage.EncodingRunLength} {
			t.Run(name+"/"+enc.String(), func(t *testing.T) {
				table := newInt32Table(t, enc, input...)
				mat := NewColumnMaterializer[int32](DefaultMaterializeOptions(), sched)
				res, err := mat.Materialize(table, 0)
				require.NoError(t, err)
				require.Len(t, res.Segments, 3)

				for chunkId, seg := range res.Segments {
					assert.True(t, slices.IsSortedFunc(seg, func(a, b MaterializedValue[int32]) int {
						return int(a.Value) - int(b.Value)
					}))
					for _, mv := range seg {
						assert.Equal(t, common.ChunkID(chunkId), mv.RowId.ChunkID)
						orig := input[chunkId][mv.RowId.ChunkOffset]
						require.NotNil(t, orig)
						assert.Equal(t, *orig, mv.Value)
					}
				}
				assert.Len(t, res.Segments[0], 5)
				assert.Len(t, res.Segments[1], 1)
				assert.Len(t, res.Segments[2], 50)

				assert.ElementsMatch(t, common.PosList{
					{ChunkID: 0, ChunkOffset: 2},
					{ChunkID: 1, ChunkOffset: 1},
					{ChunkID: 1, ChunkOffset: 2},
				}, res.NullRows)
			})
		}
	}
}

func TestMaterializeUnsortedKeepsStorageOrder(t *testing.T) {
	table := newInt32Table(t, storage.EncodingUnencoded, vals(4, nil, 2, 8))
	opts := MaterializeOptions{SamplesPerChunk: 2}
	res, err := NewColumnMaterializer[int32](opts, nil).Materialize(table, 0)
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, MaterializedSegment[int32]{
		{RowId: common.RowID{ChunkID: 0, ChunkOffset: 0}, Value: 4},
		{RowId: common.RowID{ChunkID: 0, ChunkOffset: 2}, Value: 2},
		{RowId: common.RowID{ChunkID: 0, ChunkOffset: 3}, Value: 8},
	}, res.Segments[0])
	//nulls not collected
	assert.Empty(t, res.NullRows)
	//stride 3/2 = 1
	assert.Equal(t, []int32{4, 2}, res.Samples)
	assert.Nil(t, res.Distinct)
}

func TestMaterializeSamples(t *testing.T) {
	table := newInt32Table(t, storage.EncodingDictionary,
		seq(0, 10),
		vals(7, 3),
		vals(),
		reversed(seq(100, 125)),
	)
	for name, sched := range testSchedulers(t) {
		t.Run(name, func(t *testing.T) {
			opts := DefaultMaterializeOptions()
			opts.SamplesPerChunk = 3
			res, err := NewColumnMaterializer[int32](opts, sched).Materialize(table, 0)
			require.NoError(t, err)
			//chunk 0: stride 10/3=3 -> 0,3,6
			//chunk 1: clipped to 2 -> 3,7
			//chunk 2: empty
			//chunk 3: stride 25/3=8 -> 100,108,116
			assert.Equal(t, []int32{0, 3, 6, 3, 7, 100, 108, 116}, res.Samples)
			assert.Empty(t, res.Segments[2])

			opts.SamplesPerChunk = 0
			res, err = NewColumnMaterializer[int32](opts, sched).Materialize(table, 0)
			require.NoError(t, err)
			assert.Empty(t, res.Samples)

			opts.SamplesPerChunk = 1000
			res, err = NewColumnMaterializer[int32](opts, sched).Materialize(table, 0)
			require.NoError(t, err)
			assert.Len(t, res.Samples, table.RowCount())
		})
	}
}

func TestMaterializeManyChunks(t *testing.T) {
	sched, err := scheduler.NewNodeQueueScheduler(8)
	require.NoError(t, err)
	defer sched.Close()

	defs := []*storage.ColumnDefinition{
		{Name: "a", Type: common.VarcharType(), Nullable: true},
	}
	table, err := storage.GenerateTable(defs, storage.GenerateOptions{
		RowCount:  5000,
		ChunkSize: 37,
		Distinct:  300,
		NullRatio: 0.1,
		Seed:      3,
		Encoding:  storage.EncodingDictionary,
	})
	require.NoError(t, err)

	opts := DefaultMaterializeOptions()
	opts.EstimateDistinct = true
	res, err := NewColumnMaterializer[string](opts, sched).Materialize(table, 0)
	require.NoError(t, err)
	assert.Equal(t, table.RowCount(), res.Segments.Size()+len(res.NullRows))

	seen := make(map[common.RowID]bool)
	for _, rid := range res.NullRows {
		assert.False(t, seen[rid])
		seen[rid] = true
	}
	for _, seg := range res.Segments {
		for _, mv := range seg {
			assert.False(t, seen[mv.RowId])
			seen[mv.RowId] = true
		}
	}
	assert.Len(t, seen, table.RowCount())

	expectSamples := 0
	for _, seg := range res.Segments {
		expectSamples += min(DefaultSamplesPerChunk, len(seg))
	}
	assert.Len(t, res.Samples, expectSamples)

	require.NotNil(t, res.Distinct)
	assert.Equal(t, uint64(res.Segments.Size()), res.Distinct.TotalCount())
	assert.InDelta(t, 300, float64(res.Distinct.Count()), 15)
	assert.Contains(t, res.String(), fmt.Sprintf("%d of %d", res.Distinct.Count(), res.Distinct.TotalCount()))
}

func TestMaterializeSamplesSkipNulls(t *testing.T) {
	for name, sched := range testSchedulers(t) {
		t.Run(name, func(t *testing.T) {
			table := newInt32Table(t, storage.EncodingRunLength,
				vals(1, nil, nil),
				vals(nil, nil),
				vals(nil, 8, nil, 6, nil, nil),
			)
			res, err := NewColumnMaterializer[int32](DefaultMaterializeOptions(), sched).Materialize(table, 0)
			require.NoError(t, err)
			//the quota is bounded by the non-null values of a chunk
			assert.Equal(t, []int32{1, 6, 8}, res.Samples)
			assert.Len(t, res.NullRows, 8)
		})
	}
}

func TestMaterializeErrors(t *testing.T) {
	table := newInt32Table(t, storage.EncodingUnencoded, vals(1, 2))
	mat := NewColumnMaterializer[int64](DefaultMaterializeOptions(), nil)
	_, err := mat.Materialize(table, 0)
	assert.ErrorIs(t, err, common.ErrTypeMismatch)

	_, err = NewColumnMaterializer[int32](DefaultMaterializeOptions(), nil).Materialize(table, 1)
	assert.ErrorIs(t, err, common.ErrColumnNotFound)

	corrupt := storage.NewTable([]*storage.ColumnDefinition{
		{Name: "x", Type: common.BigintType(), Nullable: true},
	}, 16)
	_, err = corrupt.AppendChunk(storage.NewRunLengthSegment([]int64{1, 2}, nil))
	require.NoError(t, err)
	_, err = corrupt.AppendChunk(storage.NewRunLengthSegmentFromParts(
		[]int64{1}, []bool{false}, []common.ChunkOffset{9}, 3))
	require.NoError(t, err)

	for name, sched := range testSchedulers(t) {
		t.Run(name, func(t *testing.T) {
			res, err := NewColumnMaterializer[int64](DefaultMaterializeOptions(), sched).Materialize(corrupt, 0)
			assert.ErrorIs(t, err, common.ErrCorruptSegment)
			assert.Nil(t, res)
		})
	}
}

func TestMaterializeEmptyTable(t *testing.T) {
	table := newInt32Table(t, storage.EncodingUnencoded)
	res, err := NewColumnMaterializer[int32](DefaultMaterializeOptions(), nil).Materialize(table, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Segments)
	assert.Empty(t, res.NullRows)
	assert.Empty(t, res.Samples)
	assert.Contains(t, res.String(), "Materialized:")
}

func TestPickSplitValues(t *testing.T) {
	samples := []int32{9, 1, 8, 2, 7, 3, 6, 4, 5, 0}
	bounds := PickSplitValues(samples, 4)
	assert.Equal(t, []int32{2, 5, 7}, bounds)
	//input untouched
	assert.Equal(t, int32(9), samples[0])

	assert.Equal(t, 0, PartitionOf(bounds, int32(0)))
	assert.Equal(t, 0, PartitionOf(bounds, int32(2)))
	assert.Equal(t, 1, PartitionOf(bounds, int32(3)))
	assert.Equal(t, 3, PartitionOf(bounds, int32(100)))

	assert.Nil(t, PickSplitValues(samples, 1))
	assert.Nil(t, PickSplitValues([]int32{}, 4))
	assert.Equal(t, []string{"b", "b"}, PickSplitValues([]string{"b", "b", "a"}, 3))
}
