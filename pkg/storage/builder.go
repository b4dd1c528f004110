package storage

import (
	"fmt"

	"github.com/daviszhen/matidx/pkg/common"
)

// ColumnBuilder collects dynamically typed values into a segment.
type ColumnBuilder interface {
	Append(val common.Value) error
	Len() int
	// Finish encodes the collected values and resets the builder.
	Finish(enc EncodingType) Segment
}

type typedColumnBuilder[T common.Scalar] struct {
	_typ     common.LType
	_values  []T
	_nulls   []bool
	_hasNull bool
}

func (builder *typedColumnBuilder[T]) Append(val common.Value) error {
	if val.Typ.PTyp != builder._typ.PTyp {
		return fmt.Errorf("%w: append %s to %s column", common.ErrTypeMismatch, val.Typ, builder._typ)
	}
	if val.IsNull {
		var zero T
		builder._values = append(builder._values, zero)
		builder._nulls = append(builder._nulls, true)
		builder._hasNull = true
		return nil
	}
	v, err := common.ValueAs[T](val)
	if err != nil {
		return err
	}
	builder._values = append(builder._values, v)
	builder._nulls = append(builder._nulls, false)
	return nil
}

func (builder *typedColumnBuilder[T]) Len() int {
	return len(builder._values)
}

func (builder *typedColumnBuilder[T]) Finish(enc EncodingType) Segment {
	nulls := builder._nulls
	if !builder._hasNull {
		nulls = nil
	}
	seg := EncodeSegment(builder._values, nulls, enc)
	builder._values = nil
	builder._nulls = nil
	builder._hasNull = false
	return seg
}

func NewColumnBuilder(typ common.LType) (ColumnBuilder, error) {
	switch typ.PTyp {
	case common.INT32:
		return &typedColumnBuilder[int32]{_typ: typ}, nil
	case common.INT64:
		return &typedColumnBuilder[int64]{_typ: typ}, nil
	case common.FLOAT:
		return &typedColumnBuilder[float32]{_typ: typ}, nil
	case common.DOUBLE:
		return &typedColumnBuilder[float64]{_typ: typ}, nil
	case common.VARCHAR:
		return &typedColumnBuilder[string]{_typ: typ}, nil
	default:
		return nil, fmt.Errorf("usp type %s", typ)
	}
}

// TableBuilder cuts appended rows into chunks of the target size.
type TableBuilder struct {
	_table    *Table
	_builders []ColumnBuilder
	_encoding EncodingType
	_pending  [][]Segment
}

func NewTableBuilder(colDefs []*ColumnDefinition, chunkSize int, enc EncodingType) (*TableBuilder, error) {
	if len(colDefs) == 0 {
		return nil, fmt.Errorf("table without columns")
	}
	ret := &TableBuilder{
		_table:    NewTable(colDefs, chunkSize),
		_encoding: enc,
	}
	for _, def := range colDefs {
		builder, err := NewColumnBuilder(def.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", def.Name, err)
		}
		ret._builders = append(ret._builders, builder)
	}
	return ret, nil
}

func (builder *TableBuilder) AppendRow(row []common.Value) error {
	defs := builder._table.ColumnDefinitions()
	if len(row) != len(defs) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(defs))
	}
	//check the whole row first so that a bad row leaves the columns aligned
	for i, val := range row {
		if val.IsNull && !defs[i].Nullable {
			return fmt.Errorf("%w: column %s is not nullable", common.ErrNullValue, defs[i].Name)
		}
		if val.Typ.PTyp != defs[i].Type.PTyp {
			return fmt.Errorf("%w: append %s to column %s of %s",
				common.ErrTypeMismatch, val.Typ, defs[i].Name, defs[i].Type)
		}
	}
	for i, val := range row {
		if err := builder._builders[i].Append(val); err != nil {
			return fmt.Errorf("column %s: %w", defs[i].Name, err)
		}
	}
	if builder._builders[0].Len() >= builder._table.TargetChunkSize() {
		builder.cut()
	}
	return nil
}

func (builder *TableBuilder) cut() {
	segments := make([]Segment, len(builder._builders))
	for i, colBuilder := range builder._builders {
		segments[i] = colBuilder.Finish(builder._encoding)
	}
	builder._pending = append(builder._pending, segments)
}

// Finish flushes the last partial chunk and returns the table.
func (builder *TableBuilder) Finish() (*Table, error) {
	if len(builder._builders) > 0 && builder._builders[0].Len() > 0 {
		builder.cut()
	}
	if err := builder._table.AppendChunks(builder._pending); err != nil {
		return nil, err
	}
	builder._pending = nil
	return builder._table, nil
}
