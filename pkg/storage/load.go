package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	pqLocal "github.com/xitongsys/parquet-go-source/local"
	pqReader "github.com/xitongsys/parquet-go/reader"
	"go.uber.org/zap"

	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/util"
)

// ParseColumnDefinitions parses "name:TYPE,name:TYPE". Every column is nullable.
func ParseColumnDefinitions(s string) ([]*ColumnDefinition, error) {
	var ret []*ColumnDefinition
	for _, part := range splitColumns(s) {
		name, typName, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("column %q misses a type", part)
		}
		typ, err := common.ParseLType(typName)
		if err != nil {
			return nil, err
		}
		ret = append(ret, &ColumnDefinition{
			Name:     strings.TrimSpace(name),
			Type:     typ,
			Nullable: true,
		})
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("no columns in %q", s)
	}
	return ret, nil
}

// splitColumns splits on commas outside parentheses.
func splitColumns(s string) []string {
	var ret []string
	depth := 0
	start := 0
	for i, c := range s {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					ret = append(ret, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		ret = append(ret, part)
	}
	return ret
}

// LoadCSV reads a header-less csv file. An empty field is NULL.
func LoadCSV(path string, colDefs []*ColumnDefinition, chunkSize int, enc EncodingType) (*Table, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0755)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	builder, err := NewTableBuilder(colDefs, chunkSize, enc)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(colDefs)
	row := make([]common.Value, len(colDefs))
	for line := 1; ; line++ {
		fields, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		for i, field := range fields {
			row[i], err = common.ParseValue(colDefs[i].Type, field)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, colDefs[i].Name, err)
			}
		}
		if err = builder.AppendRow(row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	table, err := builder.Finish()
	if err != nil {
		return nil, err
	}
	util.Info("load csv",
		zap.String("path", path),
		zap.Int("rows", table.RowCount()),
		zap.Uint32("chunks", uint32(table.ChunkCount())))
	return table, nil
}

// LoadParquet reads the first len(colDefs) flat columns of a parquet file.
func LoadParquet(path string, colDefs []*ColumnDefinition, chunkSize int, enc EncodingType) (*Table, error) {
	file, err := pqLocal.NewLocalFileReader(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader, err := pqReader.NewParquetColumnReader(file, 1)
	if err != nil {
		return nil, err
	}
	defer reader.ReadStop()

	builder, err := NewTableBuilder(colDefs, chunkSize, enc)
	if err != nil {
		return nil, err
	}
	total := int(reader.GetNumRows())
	if total == 0 {
		return builder.Finish()
	}
	columns := make([][]interface{}, len(colDefs))
	for j := range colDefs {
		values, _, _, err := reader.ReadColumnByIndex(int64(j), int64(total))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", colDefs[j].Name, err)
		}
		if len(values) != total {
			return nil, fmt.Errorf("column %s has %d values, file has %d rows", colDefs[j].Name, len(values), total)
		}
		columns[j] = values
	}

	row := make([]common.Value, len(colDefs))
	for i := 0; i < total; i++ {
		for j, def := range colDefs {
			row[j], err = parquetColToValue(columns[j][i], def.Type)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, def.Name, err)
			}
		}
		if err = builder.AppendRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	table, err := builder.Finish()
	if err != nil {
		return nil, err
	}
	util.Info("load parquet",
		zap.String("path", path),
		zap.Int("rows", table.RowCount()),
		zap.Uint32("chunks", uint32(table.ChunkCount())))
	return table, nil
}

func parquetColToValue(field any, lTyp common.LType) (common.Value, error) {
	if field == nil {
		return common.NullValue(lTyp), nil
	}
	val := common.Value{
		Typ: lTyp,
	}
	switch lTyp.PTyp {
	case common.INT32, common.INT64:
		switch fVal := field.(type) {
		case int32:
			val.I64 = int64(fVal)
		case int64:
			val.I64 = fVal
		default:
			return common.Value{}, fmt.Errorf("%w: parquet %T as %s", common.ErrTypeMismatch, field, lTyp)
		}
	case common.FLOAT, common.DOUBLE:
		switch fVal := field.(type) {
		case float32:
			val.F64 = float64(fVal)
		case float64:
			val.F64 = fVal
		default:
			return common.Value{}, fmt.Errorf("%w: parquet %T as %s", common.ErrTypeMismatch, field, lTyp)
		}
	case common.VARCHAR:
		switch fVal := field.(type) {
		case string:
			val.Str = fVal
		case []byte:
			val.Str = string(fVal)
		default:
			return common.Value{}, fmt.Errorf("%w: parquet %T as %s", common.ErrTypeMismatch, field, lTyp)
		}
	default:
		return common.Value{}, fmt.Errorf("usp type %s", lTyp)
	}
	return val, nil
}
