package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daviszhen/matidx/pkg/scheduler"
	"github.com/daviszhen/matidx/pkg/util"
)

func testConfig() *util.Config {
	cfg := util.DefaultConfig()
	cfg.Log.Level = "warn"
	cfg.Scheduler.Workers = 2
	cfg.Table.Columns = "a:INT32,b:VARCHAR,c:DECIMAL(12,2)"
	cfg.Table.RowCount = 1000
	cfg.Table.ChunkSize = 128
	cfg.Table.Distinct = 20
	cfg.Table.Encoding = "dictionary"
	cfg.Table.Seed = 7
	return cfg
}

func TestRunMaterialize(t *testing.T) {
	for _, col := range []uint16{0, 1, 2} {
		cfg := testConfig()
		cfg.Materialize.ColumnId = col
		cfg.Materialize.EstimateDistinct = true
		cfg.Materialize.Partitions = 4
		require.NoError(t, runMaterialize(cfg))
	}

	cfg := testConfig()
	cfg.Materialize.ColumnId = 3
	assert.Error(t, runMaterialize(cfg))
}

func TestRunIndex(t *testing.T) {
	prev := scheduler.Current()

	cfg := testConfig()
	cfg.Index.ColumnId = 1
	cfg.Index.Remove = []uint32{0, 2}
	cfg.Index.Probe = "v000003"
	require.NoError(t, runIndex(cfg))

	cfg = testConfig()
	cfg.Index.ColumnId = 0
	cfg.Index.Chunks = []uint32{1, 3, 5}
	cfg.Index.Remove = []uint32{3}
	cfg.Index.Probe = "4"
	require.NoError(t, runIndex(cfg))

	//probe text must parse as the column type
	cfg.Index.Probe = "x"
	assert.Error(t, runIndex(cfg))

	cfg = testConfig()
	cfg.Index.Chunks = []uint32{100}
	assert.Error(t, runIndex(cfg))

	//the previous scheduler is restored
	assert.Equal(t, prev, scheduler.Current())
}

func TestBuildTable(t *testing.T) {
	dir := t.TempDir()
	fpath := filepath.Join(dir, "t.csv")
	require.NoError(t, os.WriteFile(fpath, []byte("1,a\n,b\n3,\n"), 0644))

	cfg := testConfig()
	cfg.Table.Source = "csv"
	cfg.Table.Path = fpath
	cfg.Table.Columns = "x:INT64,y:VARCHAR"
	table, err := buildTable(&cfg.Table)
	require.NoError(t, err)
	assert.Equal(t, 3, table.RowCount())

	cfg.Table.Source = "kafka"
	_, err = buildTable(&cfg.Table)
	assert.Error(t, err)

	cfg.Table.Source = "generate"
	cfg.Table.Encoding = "zip"
	_, err = buildTable(&cfg.Table)
	assert.Error(t, err)
}

func TestRootCmd(t *testing.T) {
	RootCmd.SetArgs([]string{
		"materialize",
		"--scheduler", "immediate",
		"--row_count", "300",
		"--chunk_size", "50",
		"--columns", "a:DOUBLE",
		"--samples_per_chunk", "3",
	})
	require.NoError(t, RootCmd.Execute())
	assert.Equal(t, 300, testerCfg.Table.RowCount)
	assert.Equal(t, "immediate", testerCfg.Scheduler.Kind)
	assert.Equal(t, 3, testerCfg.Materialize.SamplesPerChunk)
}
