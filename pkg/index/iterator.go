package index

import (
	"iter"

	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/util"
)

// rowSource is a sequence of non-empty row id lists.
type rowSource interface {
	listCount() int
	list(i int) []common.RowID
}

type bucketSource[T common.Scalar] struct {
	idx *PartialHashIndex[T]
}

func (src bucketSource[T]) listCount() int {
	return len(src.idx._buckets)
}

func (src bucketSource[T]) list(i int) []common.RowID {
	return src.idx._buckets[i].rows
}

type nullSource[T common.Scalar] struct {
	idx *PartialHashIndex[T]
}

func (src nullSource[T]) listCount() int {
	if len(src.idx._nullRows) == 0 {
		return 0
	}
	return 1
}

func (src nullSource[T]) list(i int) []common.RowID {
	return src.idx._nullRows
}

// Iterator walks the row ids of either the value buckets or the null list.
// It is invalidated by Add and Remove.
type Iterator struct {
	_src  rowSource
	_list int
	_off  int
}

func (it Iterator) Equal(other Iterator) bool {
	util.AssertFuncf(it._src == other._src, "iterators over different row sources")
	return it._list == other._list && it._off == other._off
}

func (it *Iterator) Next() {
	util.AssertFuncf(it._list < it._src.listCount(), "iterator advanced past the end")
	it._off++
	if it._off >= len(it._src.list(it._list)) {
		it._list++
		it._off = 0
	}
}

func (it Iterator) RowId() common.RowID {
	return it._src.list(it._list)[it._off]
}

// IteratorPair is the half-open range [Begin, End).
type IteratorPair struct {
	Begin Iterator
	End   Iterator
}

func (pair IteratorPair) Empty() bool {
	return pair.Begin.Equal(pair.End)
}

func (pair IteratorPair) Len() int {
	b, e := pair.Begin, pair.End
	util.AssertFuncf(b._src == e._src, "iterators over different row sources")
	if b._list == e._list {
		util.AssertFuncf(b._off <= e._off, "range end before begin")
		return e._off - b._off
	}
	util.AssertFuncf(b._list < e._list, "range end before begin")
	ret := len(b._src.list(b._list)) - b._off
	for i := b._list + 1; i < e._list; i++ {
		ret += len(b._src.list(i))
	}
	return ret + e._off
}

// Rows yields every row id in the range.
func (pair IteratorPair) Rows() iter.Seq[common.RowID] {
	return func(yield func(common.RowID) bool) {
		for it := pair.Begin; !it.Equal(pair.End); it.Next() {
			if !yield(it.RowId()) {
				return
			}
		}
	}
}

func (pair IteratorPair) ForEach(fn func(rowId common.RowID)) {
	for rowId := range pair.Rows() {
		fn(rowId)
	}
}

func (pair IteratorPair) Collect() []common.RowID {
	ret := make([]common.RowID, 0, pair.Len())
	for rowId := range pair.Rows() {
		ret = append(ret, rowId)
	}
	return ret
}
