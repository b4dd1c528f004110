package storage

import (
	"fmt"

	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/util"
)

// RunLengthSegment stores one value, one null flag and the inclusive end
// offset per run of equal rows.
type RunLengthSegment[T common.Scalar] struct {
	_values       []T
	_nulls        []bool
	_endPositions []common.ChunkOffset
	_size         int
}

func NewRunLengthSegment[T common.Scalar](values []T, nulls []bool) *RunLengthSegment[T] {
	util.AssertFunc(nulls == nil || len(nulls) == len(values))
	seg := &RunLengthSegment[T]{
		_size: len(values),
	}
	isNull := func(i int) bool {
		return nulls != nil && nulls[i]
	}
	for i, v := range values {
		last := len(seg._values) - 1
		if last >= 0 && seg._nulls[last] == isNull(i) && (isNull(i) || seg._values[last] == v) {
			seg._endPositions[last] = common.ChunkOffset(i)
			continue
		}
		if isNull(i) {
			var zero T
			v = zero
		}
		seg._values = append(seg._values, v)
		seg._nulls = append(seg._nulls, isNull(i))
		seg._endPositions = append(seg._endPositions, common.ChunkOffset(i))
	}
	return seg
}

func NewRunLengthSegmentFromParts[T common.Scalar](
	values []T,
	nulls []bool,
	endPositions []common.ChunkOffset,
	size int,
) *RunLengthSegment[T] {
	return &RunLengthSegment[T]{
		_values:       values,
		_nulls:        nulls,
		_endPositions: endPositions,
		_size:         size,
	}
}

func (seg *RunLengthSegment[T]) DataType() common.PhyType {
	return common.PhyTypeOf[T]()
}

func (seg *RunLengthSegment[T]) Size() int {
	return seg._size
}

func (seg *RunLengthSegment[T]) MemoryUsage() int {
	return valueMemoryUsage(seg._values) + len(seg._nulls) + 4*len(seg._endPositions)
}

func (seg *RunLengthSegment[T]) Encoding() (EncodingDescriptor, bool) {
	return EncodingDescriptor{Type: EncodingRunLength}, true
}

func (seg *RunLengthSegment[T]) RunCount() int {
	return len(seg._values)
}

func (seg *RunLengthSegment[T]) Iterate(visit func(pos SegmentPosition[T])) error {
	if len(seg._values) != len(seg._nulls) || len(seg._values) != len(seg._endPositions) {
		return fmt.Errorf("%w: run length parts differ in length", common.ErrCorruptSegment)
	}
	offset := 0
	for run, end := range seg._endPositions {
		if int(end) < offset || int(end) >= seg._size {
			return fmt.Errorf("%w: run %d ends at %d, expected in [%d,%d)",
				common.ErrCorruptSegment, run, end, offset, seg._size)
		}
		for ; offset <= int(end); offset++ {
			visit(SegmentPosition[T]{
				Value:  seg._values[run],
				IsNull: seg._nulls[run],
				Offset: common.ChunkOffset(offset),
			})
		}
	}
	if offset != seg._size {
		return fmt.Errorf("%w: runs cover %d of %d rows", common.ErrCorruptSegment, offset, seg._size)
	}
	return nil
}
