package compute

import (
	"cmp"
	"slices"

	"github.com/daviszhen/matidx/pkg/common"
)

// PickSplitValues sorts the gathered samples and picks partitions-1 evenly
// spaced boundaries for range partitioning. Partition i takes values v with
// bound[i-1] < v <= bound[i].
func PickSplitValues[T common.Scalar](samples []T, partitions int) []T {
	if partitions <= 1 || len(samples) == 0 {
		return nil
	}
	sorted := slices.Clone(samples)
	slices.SortFunc(sorted, cmp.Compare[T])
	ret := make([]T, 0, partitions-1)
	for i := 1; i < partitions; i++ {
		ret = append(ret, sorted[i*len(sorted)/partitions])
	}
	return ret
}

// PartitionOf returns the partition a value falls into for the given bounds.
func PartitionOf[T common.Scalar](bounds []T, v T) int {
	idx, _ := slices.BinarySearch(bounds, v)
	return idx
}
