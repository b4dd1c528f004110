package storage

import (
	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/util"
)

// ValueSegment stores plain values and a validity mask.
type ValueSegment[T common.Scalar] struct {
	_values []T
	_mask   util.Bitmap
}

func NewValueSegment[T common.Scalar](values []T, nulls []bool) *ValueSegment[T] {
	util.AssertFunc(nulls == nil || len(nulls) == len(values))
	seg := &ValueSegment[T]{
		_values: values,
	}
	for i, null := range nulls {
		if null {
			if seg._mask.Invalid() {
				seg._mask.Init(len(values))
			}
			seg._mask.SetInvalid(uint64(i))
		}
	}
	return seg
}

func (seg *ValueSegment[T]) DataType() common.PhyType {
	return common.PhyTypeOf[T]()
}

func (seg *ValueSegment[T]) Size() int {
	return len(seg._values)
}

func (seg *ValueSegment[T]) MemoryUsage() int {
	return valueMemoryUsage(seg._values) + len(seg._mask.Bits)
}

func (seg *ValueSegment[T]) Encoding() (EncodingDescriptor, bool) {
	return EncodingDescriptor{}, false
}

func (seg *ValueSegment[T]) Iterate(visit func(pos SegmentPosition[T])) error {
	if seg._mask.AllValid() {
		for i, v := range seg._values {
			visit(SegmentPosition[T]{Value: v, Offset: common.ChunkOffset(i)})
		}
		return nil
	}
	var zero T
	for i, v := range seg._values {
		if !seg._mask.RowIsValid(uint64(i)) {
			visit(SegmentPosition[T]{Value: zero, IsNull: true, Offset: common.ChunkOffset(i)})
			continue
		}
		visit(SegmentPosition[T]{Value: v, Offset: common.ChunkOffset(i)})
	}
	return nil
}
