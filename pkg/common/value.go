package common

import (
	"fmt"
	"math"
	"strconv"

	"github.com/govalues/decimal"
)

// Value is a tagged scalar. Only the field matching Typ.PTyp is meaningful.
type Value struct {
	Typ    LType
	IsNull bool
	//value
	I64 int64
	F64 float64
	Str string
}

func NullValue(typ LType) Value {
	return Value{Typ: typ, IsNull: true}
}

func (val Value) String() string {
	if val.IsNull {
		return "NULL"
	}
	switch val.Typ.Id {
	case LTID_INTEGER, LTID_BIGINT:
		return strconv.FormatInt(val.I64, 10)
	case LTID_FLOAT:
		return strconv.FormatFloat(val.F64, 'g', -1, 32)
	case LTID_DOUBLE:
		return strconv.FormatFloat(val.F64, 'g', -1, 64)
	case LTID_VARCHAR:
		return val.Str
	case LTID_DECIMAL:
		d, err := decimal.New(val.I64, val.Typ.Scale)
		if err != nil {
			return fmt.Sprintf("%d(scale %d)", val.I64, val.Typ.Scale)
		}
		return d.String()
	default:
		return "INVALID"
	}
}

// ValueOf wraps a Go scalar into a Value of the matching physical type.
func ValueOf[T Scalar](x T) Value {
	switch v := any(x).(type) {
	case int32:
		return Value{Typ: IntegerType(), I64: int64(v)}
	case int64:
		return Value{Typ: BigintType(), I64: v}
	case float32:
		return Value{Typ: FloatType(), F64: float64(v)}
	case float64:
		return Value{Typ: DoubleType(), F64: v}
	case string:
		return Value{Typ: VarcharType(), Str: v}
	}
	panic("usp")
}

// ValueAs extracts the scalar held by val. It fails when val is NULL or its
// physical type is not the one of T.
func ValueAs[T Scalar](val Value) (T, error) {
	var zero T
	want := PhyTypeOf[T]()
	if val.Typ.PTyp != want {
		return zero, fmt.Errorf("%w: value of type %s requested as %s", ErrTypeMismatch, val.Typ, want)
	}
	if val.IsNull {
		return zero, fmt.Errorf("%w: %s", ErrNullValue, val.Typ)
	}
	var ret any
	switch want {
	case INT32:
		ret = int32(val.I64)
	case INT64:
		ret = val.I64
	case FLOAT:
		ret = float32(val.F64)
	case DOUBLE:
		ret = val.F64
	case VARCHAR:
		ret = val.Str
	}
	return ret.(T), nil
}

// ParseValue parses text into a value of typ. Empty text is NULL.
func ParseValue(typ LType, text string) (Value, error) {
	if text == "" {
		return NullValue(typ), nil
	}
	val := Value{Typ: typ}
	switch typ.Id {
	case LTID_INTEGER:
		i, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return Value{}, err
		}
		val.I64 = i
	case LTID_BIGINT:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, err
		}
		val.I64 = i
	case LTID_FLOAT:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{}, err
		}
		val.F64 = f
	case LTID_DOUBLE:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, err
		}
		val.F64 = f
	case LTID_VARCHAR:
		val.Str = text
	case LTID_DECIMAL:
		d, err := decimal.Parse(text)
		if err != nil {
			return Value{}, err
		}
		coef, err := DecimalToInt64(d, typ.Scale)
		if err != nil {
			return Value{}, err
		}
		val.I64 = coef
	default:
		return Value{}, fmt.Errorf("usp type %s", typ)
	}
	return val, nil
}

// DecimalToInt64 rescales d to scale and returns its unscaled coefficient.
func DecimalToInt64(d decimal.Decimal, scale int) (int64, error) {
	whole, frac, ok := d.Int64(scale)
	if !ok {
		return 0, fmt.Errorf("decimal %s does not fit int64 at scale %d", d, scale)
	}
	p := int64(1)
	for i := 0; i < scale; i++ {
		p *= 10
	}
	if whole > math.MaxInt64/p || whole < math.MinInt64/p {
		return 0, fmt.Errorf("decimal %s does not fit int64 at scale %d", d, scale)
	}
	ret := whole * p
	if (ret > 0 && frac > math.MaxInt64-ret) || (ret < 0 && frac < math.MinInt64-ret) {
		return 0, fmt.Errorf("decimal %s does not fit int64 at scale %d", d, scale)
	}
	return ret + frac, nil
}
