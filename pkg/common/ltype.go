package common

import (
	"fmt"
	"strconv"
	"strings"
)

type LTypeId int

const (
	LTID_INVALID LTypeId = iota
	LTID_INTEGER
	LTID_BIGINT
	LTID_FLOAT
	LTID_DOUBLE
	LTID_VARCHAR
	LTID_DECIMAL
)

// LType is a logical column type. DECIMAL is stored as its unscaled INT64.
type LType struct {
	Id    LTypeId
	PTyp  PhyType
	Width int
	Scale int
}

func MakeLType(id LTypeId) LType {
	ret := LType{Id: id}
	ret.PTyp = ret.GetInternalType()
	return ret
}

func IntegerType() LType {
	return MakeLType(LTID_INTEGER)
}

func BigintType() LType {
	return MakeLType(LTID_BIGINT)
}

func FloatType() LType {
	return MakeLType(LTID_FLOAT)
}

func DoubleType() LType {
	return MakeLType(LTID_DOUBLE)
}

func VarcharType() LType {
	return MakeLType(LTID_VARCHAR)
}

func DecimalType(width, scale int) LType {
	ret := MakeLType(LTID_DECIMAL)
	ret.Width = width
	ret.Scale = scale
	return ret
}

func (lt LType) GetInternalType() PhyType {
	switch lt.Id {
	case LTID_INTEGER:
		return INT32
	case LTID_BIGINT, LTID_DECIMAL:
		return INT64
	case LTID_FLOAT:
		return FLOAT
	case LTID_DOUBLE:
		return DOUBLE
	case LTID_VARCHAR:
		return VARCHAR
	default:
		return INVALID
	}
}

func (lt LType) String() string {
	switch lt.Id {
	case LTID_INTEGER:
		return "INT32"
	case LTID_BIGINT:
		return "INT64"
	case LTID_FLOAT:
		return "FLOAT"
	case LTID_DOUBLE:
		return "DOUBLE"
	case LTID_VARCHAR:
		return "VARCHAR"
	case LTID_DECIMAL:
		return fmt.Sprintf("DECIMAL(%d,%d)", lt.Width, lt.Scale)
	default:
		return "INVALID"
	}
}

// ParseLType accepts a physical type name or DECIMAL(width,scale).
func ParseLType(s string) (LType, error) {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "DECIMAL") {
		args := strings.TrimSuffix(strings.TrimPrefix(upper, "DECIMAL("), ")")
		parts := strings.Split(args, ",")
		if len(parts) != 2 {
			return LType{}, fmt.Errorf("invalid decimal type %q", s)
		}
		width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return LType{}, fmt.Errorf("invalid decimal width in %q: %w", s, err)
		}
		scale, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return LType{}, fmt.Errorf("invalid decimal scale in %q: %w", s, err)
		}
		if width <= 0 || width > 18 || scale < 0 || scale > width {
			return LType{}, fmt.Errorf("decimal %q out of range", s)
		}
		return DecimalType(width, scale), nil
	}
	pt, err := ParsePhyType(upper)
	if err != nil {
		return LType{}, err
	}
	switch pt {
	case INT32:
		return IntegerType(), nil
	case INT64:
		return BigintType(), nil
	case FLOAT:
		return FloatType(), nil
	case DOUBLE:
		return DoubleType(), nil
	default:
		return VarcharType(), nil
	}
}
