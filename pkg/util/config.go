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

package util

import (
	"github.com/BurntSushi/toml"
	"github.com/huandu/go-clone"
)

type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSize    int    `toml:"maxSize"`
	MaxBackups int    `toml:"maxBackups"`
	MaxAge     int    `toml:"maxAge"`
}

type SchedulerConfig struct {
	//immediate or nodeQueue
	Kind    string `toml:"kind"`
	Workers int    `toml:"workers"`
}

type TableConfig struct {
	//generate, csv or parquet
	Source    string `toml:"source"`
	Path      string `toml:"path"`
	Columns   string `toml:"columns"`
	ChunkSize int    `toml:"chunkSize"`
	//value, dictionary or runLength
	Encoding  string  `toml:"encoding"`
	RowCount  int     `toml:"rowCount"`
	Distinct  int     `toml:"distinct"`
	NullRatio float64 `toml:"nullRatio"`
	Seed      int64   `toml:"seed"`
}

type MaterializeOptions struct {
	ColumnId         uint16 `toml:"columnId"`
	Sort             bool   `toml:"sort"`
	CollectNulls     bool   `toml:"collectNulls"`
	SamplesPerChunk  int    `toml:"samplesPerChunk"`
	EstimateDistinct bool   `toml:"estimateDistinct"`
	Partitions       int    `toml:"partitions"`
}

type IndexOptions struct {
	ColumnId uint16   `toml:"columnId"`
	Chunks   []uint32 `toml:"chunks"`
	Remove   []uint32 `toml:"remove"`
	Probe    string   `toml:"probe"`
}

type Config struct {
	Log         LogConfig          `toml:"log"`
	Scheduler   SchedulerConfig    `toml:"scheduler"`
	Table       TableConfig        `toml:"table"`
	Materialize MaterializeOptions `toml:"materialize"`
	Index       IndexOptions       `toml:"index"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			MaxSize:    64,
			MaxBackups: 3,
			MaxAge:     7,
		},
		Scheduler: SchedulerConfig{
			Kind: "nodeQueue",
		},
		Table: TableConfig{
			Source:    "generate",
			Columns:   "a:INT32",
			ChunkSize: 65535,
			Encoding:  "value",
			RowCount:  100000,
			Distinct:  1000,
			NullRatio: 0.05,
			Seed:      1,
		},
		Materialize: MaterializeOptions{
			Sort:            true,
			CollectNulls:    true,
			SamplesPerChunk: 10,
			Partitions:      4,
		},
	}
}

// LoadConfig decodes the toml file at path over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Clone() *Config {
	return clone.Clone(cfg).(*Config)
}
