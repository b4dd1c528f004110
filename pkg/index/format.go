package index

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/daviszhen/matidx/pkg/common"
)

const (
	maxPrintedBuckets = 16
	maxPrintedRows    = 8
)

func listRowsToTree(tree treeprint.Tree, rows []common.RowID) {
	for i, rowId := range rows {
		if i == maxPrintedRows {
			tree.AddNode("...")
			break
		}
		tree.AddNode(rowId.String())
	}
}

func (idx *PartialHashIndex[T]) Print(tree treeprint.Tree) {
	tree = tree.AddMetaBranch(fmt.Sprintf("column %d %s", idx._colId, idx.DataType()), "partial hash index")
	tree.AddMetaNode("indexed chunks", fmt.Sprintf("%v", idx.GetIndexedChunks()))
	tree.AddMetaNode("memory", idx.MemoryConsumption())
	buckets := tree.AddMetaBranch(len(idx._buckets), "buckets")
	for i, b := range idx._buckets {
		if i == maxPrintedBuckets {
			buckets.AddNode("...")
			break
		}
		listRowsToTree(buckets.AddMetaBranch(len(b.rows), fmt.Sprintf("%v", b.key)), b.rows)
	}
	listRowsToTree(tree.AddMetaBranch(len(idx._nullRows), "nulls"), idx._nullRows)
}

func (idx *PartialHashIndex[T]) String() string {
	tree := treeprint.NewWithRoot("index")
	idx.Print(tree)
	return tree.String()
}
