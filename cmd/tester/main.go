// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/matidx/pkg/util"
)

func init() {
	cobra.OnInitialize(loadConfig)
	initRootFlags()
	initMaterializeCmd()
	initIndexCmd()
}

var testerCfg = util.DefaultConfig()
var cfgFile string

///root cmd

var info = "tester"
var RootCmd = &cobra.Command{
	Use:          "tester",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use tester --help or -h")
	},
}

func initRootFlags() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file. default: tester.toml in . or etc")
	flags.String("log_level", "", "debug, info, warn, error")
	flags.String("scheduler", "", "immediate, nodeQueue")
	flags.Int("workers", 0, "workers of nodeQueue scheduler. 0 for GOMAXPROCS")
	flags.String("source", "", "table source. generate, csv, parquet")
	flags.String("path", "", "csv or parquet file")
	flags.String("columns", "", "column definitions. name:TYPE,...")
	flags.Int("chunk_size", 0, "rows per chunk")
	flags.String("encoding", "", "segment encoding. value, dictionary, runLength")
	flags.Int("row_count", 0, "rows of generated table")
	flags.Int("distinct", 0, "distinct values per generated column")
	flags.Float64("null_ratio", 0, "null ratio of generated columns")
	flags.Int64("seed", 0, "seed of generated table")

	viper.BindPFlag("log.level", flags.Lookup("log_level"))
	viper.BindPFlag("scheduler.kind", flags.Lookup("scheduler"))
	viper.BindPFlag("scheduler.workers", flags.Lookup("workers"))
	viper.BindPFlag("table.source", flags.Lookup("source"))
	viper.BindPFlag("table.path", flags.Lookup("path"))
	viper.BindPFlag("table.columns", flags.Lookup("columns"))
	viper.BindPFlag("table.chunkSize", flags.Lookup("chunk_size"))
	viper.BindPFlag("table.encoding", flags.Lookup("encoding"))
	viper.BindPFlag("table.rowCount", flags.Lookup("row_count"))
	viper.BindPFlag("table.distinct", flags.Lookup("distinct"))
	viper.BindPFlag("table.nullRatio", flags.Lookup("null_ratio"))
	viper.BindPFlag("table.seed", flags.Lookup("seed"))
}

// initCommonOptions fills the sections shared by all commands.
func initCommonOptions() {
	testerCfg.Log.Level = viper.GetString("log.level")
	testerCfg.Scheduler.Kind = viper.GetString("scheduler.kind")
	testerCfg.Scheduler.Workers = viper.GetInt("scheduler.workers")
	testerCfg.Table.Source = viper.GetString("table.source")
	testerCfg.Table.Path = viper.GetString("table.path")
	testerCfg.Table.Columns = viper.GetString("table.columns")
	testerCfg.Table.ChunkSize = viper.GetInt("table.chunkSize")
	testerCfg.Table.Encoding = viper.GetString("table.encoding")
	testerCfg.Table.RowCount = viper.GetInt("table.rowCount")
	testerCfg.Table.Distinct = viper.GetInt("table.distinct")
	testerCfg.Table.NullRatio = viper.GetFloat64("table.nullRatio")
	testerCfg.Table.Seed = viper.GetInt64("table.seed")
}

//materialize cmd

var materializeInfo = "materialize one column of a table"
var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: materializeInfo,
	Long:  materializeInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		initMaterializeCfg()
		return runMaterialize(testerCfg.Clone())
	},
}

func initMaterializeCfg() {
	initCommonOptions()
	testerCfg.Materialize.ColumnId = uint16(viper.GetUint("materialize.columnId"))
	testerCfg.Materialize.Sort = viper.GetBool("materialize.sort")
	testerCfg.Materialize.CollectNulls = viper.GetBool("materialize.collectNulls")
	testerCfg.Materialize.SamplesPerChunk = viper.GetInt("materialize.samplesPerChunk")
	testerCfg.Materialize.EstimateDistinct = viper.GetBool("materialize.estimateDistinct")
	testerCfg.Materialize.Partitions = viper.GetInt("materialize.partitions")
}

func initMaterializeCmd() {
	RootCmd.AddCommand(materializeCmd)
	flags := materializeCmd.Flags()
	flags.Uint16("column_id", 0, "column to materialize")
	flags.Bool("sort", true, "sort every materialized chunk")
	flags.Bool("collect_nulls", true, "collect row ids of nulls")
	flags.Int("samples_per_chunk", 0, "samples gathered per chunk")
	flags.Bool("estimate_distinct", false, "estimate distinct values")
	flags.Int("partitions", 0, "pick split values for this many partitions")

	viper.BindPFlag("materialize.columnId", flags.Lookup("column_id"))
	viper.BindPFlag("materialize.sort", flags.Lookup("sort"))
	viper.BindPFlag("materialize.collectNulls", flags.Lookup("collect_nulls"))
	viper.BindPFlag("materialize.samplesPerChunk", flags.Lookup("samples_per_chunk"))
	viper.BindPFlag("materialize.estimateDistinct", flags.Lookup("estimate_distinct"))
	viper.BindPFlag("materialize.partitions", flags.Lookup("partitions"))
}

//index cmd

var indexInfo = "build a partial hash index on one column and probe it"
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: indexInfo,
	Long:  indexInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		initIndexCfg()
		return runIndex(testerCfg.Clone())
	},
}

func toUint32s(xs []int) []uint32 {
	ret := make([]uint32, len(xs))
	for i, x := range xs {
		ret[i] = uint32(x)
	}
	return ret
}

func toInts(xs []uint32) []int {
	ret := make([]int, len(xs))
	for i, x := range xs {
		ret[i] = int(x)
	}
	return ret
}

func initIndexCfg() {
	initCommonOptions()
	testerCfg.Index.ColumnId = uint16(viper.GetUint("index.columnId"))
	testerCfg.Index.Chunks = toUint32s(viper.GetIntSlice("index.chunks"))
	testerCfg.Index.Remove = toUint32s(viper.GetIntSlice("index.remove"))
	testerCfg.Index.Probe = viper.GetString("index.probe")
}

func initIndexCmd() {
	RootCmd.AddCommand(indexCmd)
	flags := indexCmd.Flags()
	flags.Uint16("column_id", 0, "column to index")
	flags.IntSlice("chunks", nil, "chunks to index. empty for all")
	flags.IntSlice("remove", nil, "chunks removed after indexing")
	flags.String("probe", "", "value probed with equals and not equals")

	viper.BindPFlag("index.columnId", flags.Lookup("column_id"))
	viper.BindPFlag("index.chunks", flags.Lookup("chunks"))
	viper.BindPFlag("index.remove", flags.Lookup("remove"))
	viper.BindPFlag("index.probe", flags.Lookup("probe"))
}

var defCfgFilePaths = []string{".", "etc"}
var cfgFileName = "tester.toml"

// loadConfig decodes the config file over the defaults. Its values become the
// viper defaults, so that explicit flags override them.
func loadConfig() {
	paths := make([]string, 0, len(defCfgFilePaths))
	if cfgFile != "" {
		paths = append(paths, cfgFile)
	} else {
		for _, dirPath := range defCfgFilePaths {
			paths = append(paths, filepath.Join(dirPath, cfgFileName))
		}
	}
	for _, fpath := range paths {
		if !util.FileIsValid(fpath) {
			continue
		}
		cfg, err := util.LoadConfig(fpath)
		if err != nil {
			util.Error("load config file failed",
				zap.String("fpath", fpath),
				zap.Error(err))
			os.Exit(1)
		}
		testerCfg = cfg
		break
	}
	if cfgFile != "" && !util.FileIsValid(cfgFile) {
		util.Error("config file does not exist", zap.String("fpath", cfgFile))
		os.Exit(1)
	}
	setViperDefaults(testerCfg)
}

func setViperDefaults(cfg *util.Config) {
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("scheduler.kind", cfg.Scheduler.Kind)
	viper.SetDefault("scheduler.workers", cfg.Scheduler.Workers)
	viper.SetDefault("table.source", cfg.Table.Source)
	viper.SetDefault("table.path", cfg.Table.Path)
	viper.SetDefault("table.columns", cfg.Table.Columns)
	viper.SetDefault("table.chunkSize", cfg.Table.ChunkSize)
	viper.SetDefault("table.encoding", cfg.Table.Encoding)
	viper.SetDefault("table.rowCount", cfg.Table.RowCount)
	viper.SetDefault("table.distinct", cfg.Table.Distinct)
	viper.SetDefault("table.nullRatio", cfg.Table.NullRatio)
	viper.SetDefault("table.seed", cfg.Table.Seed)
	viper.SetDefault("materialize.columnId", cfg.Materialize.ColumnId)
	viper.SetDefault("materialize.sort", cfg.Materialize.Sort)
	viper.SetDefault("materialize.collectNulls", cfg.Materialize.CollectNulls)
	viper.SetDefault("materialize.samplesPerChunk", cfg.Materialize.SamplesPerChunk)
	viper.SetDefault("materialize.estimateDistinct", cfg.Materialize.EstimateDistinct)
	viper.SetDefault("materialize.partitions", cfg.Materialize.Partitions)
	viper.SetDefault("index.columnId", cfg.Index.ColumnId)
	viper.SetDefault("index.chunks", toInts(cfg.Index.Chunks))
	viper.SetDefault("index.remove", toInts(cfg.Index.Remove))
	viper.SetDefault("index.probe", cfg.Index.Probe)
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
