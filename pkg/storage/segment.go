package storage

import (
	"fmt"
	"strings"

	"github.com/daviszhen/matidx/pkg/common"
)

type EncodingType uint8

const (
	EncodingUnencoded  EncodingType = 0
	EncodingDictionary EncodingType = 1
	EncodingRunLength  EncodingType = 2
)

var encodingNames = map[EncodingType]string{
	EncodingUnencoded:  "value",
	EncodingDictionary: "dictionary",
	EncodingRunLength:  "runLength",
}

func (enc EncodingType) String() string {
	if s, has := encodingNames[enc]; has {
		return s
	}
	return fmt.Sprintf("EncodingType(%d)", uint8(enc))
}

func ParseEncodingType(s string) (EncodingType, error) {
	for enc, name := range encodingNames {
		if strings.EqualFold(name, s) {
			return enc, nil
		}
	}
	return EncodingUnencoded, fmt.Errorf("unknown encoding %q", s)
}

type VectorCompressionType uint8

const (
	VectorCompressionNone              VectorCompressionType = 0
	VectorCompressionFixedWidthInteger VectorCompressionType = 1
)

// EncodingDescriptor describes how an encoded segment stores its values.
// Width is the byte width of the compressed vector, 0 when not compressed.
type EncodingDescriptor struct {
	Type        EncodingType
	Compression VectorCompressionType
	Width       int
}

// Segment is one column of one chunk.
type Segment interface {
	DataType() common.PhyType
	Size() int
	MemoryUsage() int
	// Encoding reports the encoding descriptor of encoded segments.
	// Plain segments return false.
	Encoding() (EncodingDescriptor, bool)
}

type SegmentPosition[T common.Scalar] struct {
	Value  T
	IsNull bool
	Offset common.ChunkOffset
}

// TypedSegment can be iterated as values of T in storage order.
type TypedSegment[T common.Scalar] interface {
	Segment
	Iterate(visit func(pos SegmentPosition[T])) error
}

// SegmentIterate visits every position of seg as type T.
func SegmentIterate[T common.Scalar](seg Segment, visit func(pos SegmentPosition[T])) error {
	typed, ok := seg.(TypedSegment[T])
	if !ok {
		return fmt.Errorf("%w: segment of type %s iterated as %s",
			common.ErrTypeMismatch, seg.DataType(), common.PhyTypeOf[T]())
	}
	return typed.Iterate(visit)
}

// EncodeSegment encodes values with enc. nulls is either nil or as long as values.
func EncodeSegment[T common.Scalar](values []T, nulls []bool, enc EncodingType) TypedSegment[T] {
	switch enc {
	case EncodingDictionary:
		return NewDictionarySegment(values, nulls)
	case EncodingRunLength:
		return NewRunLengthSegment(values, nulls)
	default:
		return NewValueSegment(values, nulls)
	}
}

func valueMemoryUsage[T common.Scalar](values []T) int {
	var zero T
	size := common.PhyTypeOf[T]().Size() * len(values)
	if _, ok := any(zero).(string); ok {
		for _, v := range values {
			size += len(any(v).(string))
		}
	}
	return size
}
