package storage

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/tidwall/btree"

	"github.com/daviszhen/matidx/pkg/common"
)

type attributeVector interface {
	Get(i int) uint32
	Len() int
	Width() int
}

type fixedWidthVector[U uint8 | uint16 | uint32] []U

func (vec fixedWidthVector[U]) Get(i int) uint32 {
	return uint32(vec[i])
}

func (vec fixedWidthVector[U]) Len() int {
	return len(vec)
}

func (vec fixedWidthVector[U]) Width() int {
	var zero U
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	default:
		return 4
	}
}

func compressAttributes[U uint8 | uint16 | uint32](ids []uint32) fixedWidthVector[U] {
	ret := make(fixedWidthVector[U], len(ids))
	for i, id := range ids {
		ret[i] = U(id)
	}
	return ret
}

// newAttributeVector picks the narrowest width holding every id up to maxId.
func newAttributeVector(ids []uint32, maxId uint32) attributeVector {
	switch {
	case maxId <= 0xFF:
		return compressAttributes[uint8](ids)
	case maxId <= 0xFFFF:
		return compressAttributes[uint16](ids)
	default:
		return compressAttributes[uint32](ids)
	}
}

// DictionarySegment stores a sorted dictionary of distinct values and one
// attribute id per row. The id len(dictionary) marks a null row.
type DictionarySegment[T common.Scalar] struct {
	_dictionary []T
	_attributes attributeVector
}

func NewDictionarySegment[T common.Scalar](values []T, nulls []bool) *DictionarySegment[T] {
	distinct := btree.NewBTreeG[T](func(a, b T) bool {
		return cmp.Less(a, b)
	})
	for i, v := range values {
		if nulls != nil && nulls[i] {
			continue
		}
		distinct.Set(v)
	}
	dict := make([]T, 0, distinct.Len())
	distinct.Scan(func(item T) bool {
		dict = append(dict, item)
		return true
	})

	nullId := uint32(len(dict))
	ids := make([]uint32, len(values))
	for i, v := range values {
		if nulls != nil && nulls[i] {
			ids[i] = nullId
			continue
		}
		pos, found := slices.BinarySearch(dict, v)
		if !found {
			panic(fmt.Sprintf("value %v missing from dictionary", v))
		}
		ids[i] = uint32(pos)
	}
	return NewDictionarySegmentFromParts(dict, newAttributeVector(ids, nullId))
}

func NewDictionarySegmentFromParts[T common.Scalar](dict []T, attrs attributeVector) *DictionarySegment[T] {
	return &DictionarySegment[T]{
		_dictionary: dict,
		_attributes: attrs,
	}
}

func (seg *DictionarySegment[T]) DataType() common.PhyType {
	return common.PhyTypeOf[T]()
}

func (seg *DictionarySegment[T]) Size() int {
	return seg._attributes.Len()
}

func (seg *DictionarySegment[T]) MemoryUsage() int {
	return valueMemoryUsage(seg._dictionary) + seg._attributes.Len()*seg._attributes.Width()
}

func (seg *DictionarySegment[T]) Encoding() (EncodingDescriptor, bool) {
	return EncodingDescriptor{
		Type:        EncodingDictionary,
		Compression: VectorCompressionFixedWidthInteger,
		Width:       seg._attributes.Width(),
	}, true
}

func (seg *DictionarySegment[T]) Dictionary() []T {
	return seg._dictionary
}

func (seg *DictionarySegment[T]) NullValueId() uint32 {
	return uint32(len(seg._dictionary))
}

func (seg *DictionarySegment[T]) Iterate(visit func(pos SegmentPosition[T])) error {
	var zero T
	nullId := seg.NullValueId()
	for i := 0; i < seg._attributes.Len(); i++ {
		id := seg._attributes.Get(i)
		switch {
		case id == nullId:
			visit(SegmentPosition[T]{Value: zero, IsNull: true, Offset: common.ChunkOffset(i)})
		case id > nullId:
			return fmt.Errorf("%w: attribute id %d at offset %d exceeds dictionary size %d",
				common.ErrCorruptSegment, id, i, len(seg._dictionary))
		default:
			visit(SegmentPosition[T]{Value: seg._dictionary[id], Offset: common.ChunkOffset(i)})
		}
	}
	return nil
}
