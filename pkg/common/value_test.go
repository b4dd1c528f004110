package common

import (
	"math"
	"testing"

	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueAs(t *testing.T) {
	v := ValueOf(int32(7))
	i, err := ValueAs[int32](v)
	require.NoError(t, err)
	assert.Equal(t, int32(7), i)

	_, err = ValueAs[int64](v)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = ValueAs[string](v)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = ValueAs[int32](NullValue(IntegerType()))
	assert.ErrorIs(t, err, ErrNullValue)

	s, err := ValueAs[string](ValueOf("abc"))
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	f, err := ValueAs[float32](ValueOf(float32(1.5)))
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)

	d, err := ValueAs[float64](ValueOf(2.25))
	require.NoError(t, err)
	assert.Equal(t, 2.25, d)
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(IntegerType(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())

	v, err = ParseValue(IntegerType(), "")
	require.NoError(t, err)
	assert.True(t, v.IsNull)
	assert.Equal(t, "NULL", v.String())

	_, err = ParseValue(IntegerType(), "x")
	assert.Error(t, err)

	dtyp := DecimalType(15, 2)
	v, err = ParseValue(dtyp, "12.5")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), v.I64)
	assert.Equal(t, "12.50", v.String())
	coef, err := ValueAs[int64](v)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), coef)

	v, err = ParseValue(dtyp, "-3.07")
	require.NoError(t, err)
	assert.Equal(t, int64(-307), v.I64)
}

func TestDecimalToInt64(t *testing.T) {
	coef, err := DecimalToInt64(decimal.MustParse("92233720368547758.07"), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), coef)

	coef, err = DecimalToInt64(decimal.MustParse("-92233720368547758.08"), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), coef)

	_, err = DecimalToInt64(decimal.MustParse("92233720368547758.08"), 2)
	assert.Error(t, err)
	_, err = DecimalToInt64(decimal.MustParse("-92233720368547758.09"), 2)
	assert.Error(t, err)
	_, err = DecimalToInt64(decimal.MustParse("100000000000000000"), 2)
	assert.Error(t, err)

	_, err = ParseValue(DecimalType(18, 2), "100000000000000000")
	assert.Error(t, err)
}

func TestParseLType(t *testing.T) {
	typ, err := ParseLType("int32")
	require.NoError(t, err)
	assert.Equal(t, INT32, typ.PTyp)

	typ, err = ParseLType("DECIMAL(15, 2)")
	require.NoError(t, err)
	assert.Equal(t, LTID_DECIMAL, typ.Id)
	assert.Equal(t, INT64, typ.PTyp)
	assert.Equal(t, 2, typ.Scale)
	assert.Equal(t, "DECIMAL(15,2)", typ.String())

	_, err = ParseLType("decimal(40,2)")
	assert.Error(t, err)
	_, err = ParseLType("blob")
	assert.Error(t, err)
}

func TestRowID(t *testing.T) {
	a := RowID{ChunkID: 1, ChunkOffset: 2}
	b := RowID{ChunkID: 1, ChunkOffset: 3}
	assert.True(t, RowIDLess(a, b))
	assert.False(t, RowIDLess(b, a))
	assert.Equal(t, "(1,2)", a.String())
	assert.Equal(t, 8, RowIDSize)

	set := map[RowID]bool{a: true}
	assert.True(t, set[RowID{ChunkID: 1, ChunkOffset: 2}])
}
