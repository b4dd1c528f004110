package compute

import (
	"encoding/binary"
	"math"

	hll "github.com/axiomhq/hyperloglog"

	"github.com/daviszhen/matidx/pkg/common"
)

// DistinctStats estimates the number of distinct values with a hyperloglog sketch.
type DistinctStats struct {
	_log   *hll.Sketch
	_count uint64
}

func NewDistinctStats() *DistinctStats {
	return &DistinctStats{
		_log: hll.New14(),
	}
}

func (stats *DistinctStats) Insert(data []byte) {
	stats._log.Insert(data)
	stats._count++
}

// Count is the distinct estimate, never above the number of inserted values.
func (stats *DistinctStats) Count() uint64 {
	if stats._count == 0 {
		return 0
	}
	return min(stats._log.Estimate(), stats._count)
}

func (stats *DistinctStats) TotalCount() uint64 {
	return stats._count
}

func (stats *DistinctStats) Merge(other *DistinctStats) error {
	if other == nil {
		return nil
	}
	if err := stats._log.Merge(other._log); err != nil {
		return err
	}
	stats._count += other._count
	return nil
}

func appendValueBytes[T common.Scalar](buf []byte, v T) []byte {
	switch val := any(v).(type) {
	case int32:
		return binary.LittleEndian.AppendUint32(buf, uint32(val))
	case int64:
		return binary.LittleEndian.AppendUint64(buf, uint64(val))
	case float32:
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(val))
	case float64:
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(val))
	case string:
		return append(buf, val...)
	}
	panic("usp")
}
