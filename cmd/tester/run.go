package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/xlab/treeprint"
	"go.uber.org/zap"

	"github.com/daviszhen/matidx/pkg/common"
	"github.com/daviszhen/matidx/pkg/compute"
	"github.com/daviszhen/matidx/pkg/index"
	"github.com/daviszhen/matidx/pkg/scheduler"
	"github.com/daviszhen/matidx/pkg/storage"
	"github.com/daviszhen/matidx/pkg/util"
)

// setup installs the logger and the scheduler of cfg. The returned func restores them.
func setup(cfg *util.Config) (func(), error) {
	if err := util.InitLogger(&cfg.Log); err != nil {
		return nil, err
	}
	sched, err := scheduler.New(&cfg.Scheduler)
	if err != nil {
		return nil, err
	}
	prev := scheduler.SetCurrent(sched)
	return func() {
		scheduler.SetCurrent(prev)
		sched.Close()
		util.Sync()
	}, nil
}

func buildTable(cfg *util.TableConfig) (*storage.Table, error) {
	colDefs, err := storage.ParseColumnDefinitions(cfg.Columns)
	if err != nil {
		return nil, err
	}
	enc, err := storage.ParseEncodingType(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var table *storage.Table
	switch strings.ToLower(cfg.Source) {
	case "generate":
		table, err = storage.GenerateTable(colDefs, storage.GenerateOptions{
			RowCount:  cfg.RowCount,
			ChunkSize: cfg.ChunkSize,
			Distinct:  cfg.Distinct,
			NullRatio: cfg.NullRatio,
			Seed:      cfg.Seed,
			Encoding:  enc,
		})
	case "csv":
		table, err = storage.LoadCSV(cfg.Path, colDefs, cfg.ChunkSize, enc)
	case "parquet":
		table, err = storage.LoadParquet(cfg.Path, colDefs, cfg.ChunkSize, enc)
	default:
		return nil, fmt.Errorf("unknown table source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}
	util.Info("table ready",
		zap.String("source", cfg.Source),
		zap.Int("rows", table.RowCount()),
		zap.Uint32("chunks", uint32(table.ChunkCount())),
		zap.Duration("cost", time.Since(start)),
	)
	return table, nil
}

func runMaterialize(cfg *util.Config) error {
	cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	table, err := buildTable(&cfg.Table)
	if err != nil {
		return err
	}
	colId := common.ColumnID(cfg.Materialize.ColumnId)
	typ, err := table.ColumnType(colId)
	if err != nil {
		return err
	}
	tree := treeprint.NewWithRoot("materialize")
	compute.PrintTable(tree, table)
	switch typ.PTyp {
	case common.INT32:
		err = materializeColumn[int32](cfg, table, tree)
	case common.INT64:
		err = materializeColumn[int64](cfg, table, tree)
	case common.FLOAT:
		err = materializeColumn[float32](cfg, table, tree)
	case common.DOUBLE:
		err = materializeColumn[float64](cfg, table, tree)
	case common.VARCHAR:
		err = materializeColumn[string](cfg, table, tree)
	default:
		panic("usp")
	}
	if err != nil {
		return err
	}
	fmt.Println(tree.String())
	return nil
}

func materializeColumn[T common.Scalar](cfg *util.Config, table *storage.Table, tree treeprint.Tree) error {
	opts := compute.MaterializeOptions{
		Sort:             cfg.Materialize.Sort,
		CollectNulls:     cfg.Materialize.CollectNulls,
		SamplesPerChunk:  cfg.Materialize.SamplesPerChunk,
		EstimateDistinct: cfg.Materialize.EstimateDistinct,
	}
	start := time.Now()
	mat := compute.NewColumnMaterializer[T](opts, nil)
	res, err := mat.Materialize(table, common.ColumnID(cfg.Materialize.ColumnId))
	if err != nil {
		return err
	}
	cost := time.Since(start)
	branch := tree.AddMetaBranch(cost, "result")
	res.Print(branch)
	if cfg.Materialize.Partitions > 1 {
		bounds := compute.PickSplitValues(res.Samples, cfg.Materialize.Partitions)
		branch.AddMetaNode("split values", fmt.Sprintf("%v", bounds))
	}
	return nil
}

func runIndex(cfg *util.Config) error {
	cleanup, err := setup(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	table, err := buildTable(&cfg.Table)
	if err != nil {
		return err
	}
	colId := common.ColumnID(cfg.Index.ColumnId)
	typ, err := table.ColumnType(colId)
	if err != nil {
		return err
	}
	ids := make([]common.ChunkID, len(cfg.Index.Chunks))
	for i, id := range cfg.Index.Chunks {
		ids[i] = common.ChunkID(id)
	}
	idx, err := index.NewTableIndexOf(table, colId, ids...)
	if err != nil {
		return err
	}
	if len(cfg.Index.Remove) > 0 {
		remove := make([]common.ChunkID, len(cfg.Index.Remove))
		for i, id := range cfg.Index.Remove {
			remove[i] = common.ChunkID(id)
		}
		removed := idx.Remove(remove)
		util.Info("chunks removed from index", zap.Int("removed", removed))
	}

	tree := treeprint.NewWithRoot("index")
	idx.Print(tree)
	if cfg.Index.Probe != "" {
		val, err := common.ParseValue(typ, cfg.Index.Probe)
		if err != nil {
			return err
		}
		eq, err := idx.Equals(val)
		if err != nil {
			return err
		}
		lhs, rhs, err := idx.NotEquals(val)
		if err != nil {
			return err
		}
		probe := tree.AddMetaBranch(val.String(), "probe")
		probe.AddMetaNode("equals", eq.Len())
		probe.AddMetaNode("not equals", lhs.Len()+rhs.Len())
	}
	fmt.Println(tree.String())
	return nil
}
