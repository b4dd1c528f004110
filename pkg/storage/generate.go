package storage

import (
	"fmt"
	"math/rand/v2"

	"github.com/daviszhen/matidx/pkg/common"
)

type GenerateOptions struct {
	RowCount  int
	ChunkSize int
	// Distinct bounds the number of distinct non-null values per column.
	Distinct  int
	NullRatio float64
	Seed      int64
	Encoding  EncodingType
}

// GenerateTable fills every column with uniformly drawn values. The same
// options always produce the same table.
func GenerateTable(colDefs []*ColumnDefinition, opts GenerateOptions) (*Table, error) {
	builder, err := NewTableBuilder(colDefs, opts.ChunkSize, opts.Encoding)
	if err != nil {
		return nil, err
	}
	distinct := max(opts.Distinct, 1)
	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)^0x9e3779b97f4a7c15))
	row := make([]common.Value, len(colDefs))
	for i := 0; i < opts.RowCount; i++ {
		for j, def := range colDefs {
			if def.Nullable && rng.Float64() < opts.NullRatio {
				row[j] = common.NullValue(def.Type)
				continue
			}
			row[j], err = randomValue(rng, def.Type, distinct)
			if err != nil {
				return nil, err
			}
		}
		if err = builder.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return builder.Finish()
}

func randomValue(rng *rand.Rand, typ common.LType, distinct int) (common.Value, error) {
	k := rng.IntN(distinct)
	val := common.Value{Typ: typ}
	switch typ.PTyp {
	case common.INT32, common.INT64:
		val.I64 = int64(k)
	case common.FLOAT, common.DOUBLE:
		val.F64 = float64(k) / 4
	case common.VARCHAR:
		val.Str = fmt.Sprintf("v%06d", k)
	default:
		return common.Value{}, fmt.Errorf("usp type %s", typ)
	}
	return val, nil
}
