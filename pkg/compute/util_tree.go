package compute

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/storage"
)

const (
	maxPrintedValues = 8
)

func listColDefsToTree(tree treeprint.Tree, colDefs []*storage.ColumnDefinition) {
	for i, colDef := range colDefs {
		nullable := "not null"
		if colDef.Nullable {
			nullable = "nullable"
		}
		tree.AddMetaNode(fmt.Sprintf("%d %v %v", i, colDef.Name, colDef.Type), nullable)
	}
}

func listValuesToTree[T any](tree treeprint.Tree, name string, values []T) {
	branch := tree.AddMetaBranch(len(values), name)
	for i, v := range values {
		if i == maxPrintedValues {
			branch.AddNode("...")
			break
		}
		branch.AddNode(fmt.Sprintf("%v", v))
	}
}

// PrintTable writes the layout of table into tree.
func PrintTable(tree treeprint.Tree, table *storage.Table) {
	tree = tree.AddMetaBranch(fmt.Sprintf("rows %d", table.RowCount()), "table")
	listColDefsToTree(tree.AddBranch("columns"), table.ColumnDefinitions())
	chunks := tree.AddBranch("chunks")
	entries, _ := table.ChunkEntries()
	for _, entry := range entries {
		desc := "value"
		if seg, err := entry.Chunk.GetSegment(0); err == nil {
			if enc, ok := seg.Encoding(); ok {
				desc = enc.Type.String()
			}
		}
		chunks.AddMetaNode(fmt.Sprintf("%d", entry.Id), fmt.Sprintf("rows %d, %s", entry.Chunk.Size(), desc))
	}
}

func (res *MaterializeResult[T]) Print(tree treeprint.Tree) {
	segs := tree.AddMetaBranch(res.Segments.Size(), "segments")
	for i, seg := range res.Segments {
		branch := segs.AddMetaBranch(len(seg), fmt.Sprintf("chunk %d", i))
		for j, mv := range seg {
			if j == maxPrintedValues {
				branch.AddNode("...")
				break
			}
			branch.AddNode(fmt.Sprintf("%v %v", mv.RowId, mv.Value))
		}
	}
	listValuesToTree[common.RowID](tree, "null rows", res.NullRows)
	listValuesToTree(tree, "samples", res.Samples)
	if res.Distinct != nil {
		tree.AddMetaNode(fmt.Sprintf("%d of %d", res.Distinct.Count(), res.Distinct.TotalCount()), "distinct estimate")
	}
}

func (res *MaterializeResult[T]) String() string {
	tree := treeprint.NewWithRoot("Materialized:")
	res.Print(tree)
	return tree.String()
}
