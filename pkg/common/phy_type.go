package common

import (
	"fmt"
	"strings"
	"unsafe"
)

type PhyType int

const (
	INVALID PhyType = 0
	INT32   PhyType = 7
	INT64   PhyType = 9
	FLOAT   PhyType = 11
	DOUBLE  PhyType = 12
	VARCHAR PhyType = 200
)

var pTypeToStr = map[PhyType]string{
	INVALID: "INVALID",
	INT32:   "INT32",
	INT64:   "INT64",
	FLOAT:   "FLOAT",
	DOUBLE:  "DOUBLE",
	VARCHAR: "VARCHAR",
}

var (
	Int32Size   = int(unsafe.Sizeof(int32(0)))
	Int64Size   = int(unsafe.Sizeof(int64(0)))
	Float32Size = int(unsafe.Sizeof(float32(0)))
	Float64Size = int(unsafe.Sizeof(float64(0)))
	VarcharSize = int(unsafe.Sizeof(""))
)

func (pt PhyType) String() string {
	if s, has := pTypeToStr[pt]; has {
		return s
	}
	return fmt.Sprintf("PhyType(%d)", int(pt))
}

// Size is the in-memory width of one value. VARCHAR counts the string header only.
func (pt PhyType) Size() int {
	switch pt {
	case INT32:
		return Int32Size
	case INT64:
		return Int64Size
	case FLOAT:
		return Float32Size
	case DOUBLE:
		return Float64Size
	case VARCHAR:
		return VarcharSize
	default:
		panic(fmt.Sprintf("usp %s", pt))
	}
}

func ParsePhyType(s string) (PhyType, error) {
	for pt, name := range pTypeToStr {
		if pt != INVALID && strings.EqualFold(name, s) {
			return pt, nil
		}
	}
	return INVALID, fmt.Errorf("unknown physical type %q", s)
}

// Scalar lists the Go types a column can be materialized or indexed as.
type Scalar interface {
	int32 | int64 | float32 | float64 | string
}

// PhyTypeOf maps a Go scalar type to its physical type.
func PhyTypeOf[T Scalar]() PhyType {
	var zero T
	switch any(zero).(type) {
	case int32:
		return INT32
	case int64:
		return INT64
	case float32:
		return FLOAT
	case float64:
		return DOUBLE
	case string:
		return VARCHAR
	}
	panic("usp")
}
