package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"atlaspack/rectpack"
)

// AtlasOptions 是 atlas 命令的选项
type AtlasOptions struct {
	InputDir   string `toml:"input"`      // 输入目录
	OutputDir  string `toml:"output"`     // 输出目录
	Name       string `toml:"name"`       // 输出文件名(不含扩展名)
	Padding    int    `toml:"padding"`    // 填充
	Trim       bool   `toml:"trim"`       // 是否修剪透明部分
	Threshold  uint   `toml:"threshold"`  // 透明度阈值
	SortFiles  bool   `toml:"sort_files"` // 是否按文件名自然排序
	Order      string `toml:"order"`      // 矩形排序方式
	PowerOfTwo bool   `toml:"pow_of_two"` // 是否使用2的幂
}

// GenOptions 是 gen 命令的选项
type GenOptions struct {
	Count     int    `toml:"count"`
	MaxWidth  int    `toml:"width"`
	MaxHeight int    `toml:"height"`
	OutputDir string `toml:"output"`
	Seed      int64  `toml:"seed"`
}

// RandomOptions 是 random 命令的选项
type RandomOptions struct {
	Count     int    `toml:"count"`
	MaxWidth  int    `toml:"width"`
	MaxHeight int    `toml:"height"`
	Output    string `toml:"output"`
	Seed      int64  `toml:"seed"`
}

// Config 对应配置文件，每个命令一张表
//
//	[atlas]
//	input = "sprites"
//	padding = 2
//
//	[gen]
//	count = 200
type Config struct {
	Atlas  AtlasOptions  `toml:"atlas"`
	Gen    GenOptions    `toml:"gen"`
	Random RandomOptions `toml:"random"`
}

// DefaultConfig 返回内置的默认配置
func DefaultConfig() Config {
	return Config{
		Atlas: AtlasOptions{
			InputDir:  "input",
			OutputDir: "output",
			Name:      "atlas",
			Trim:      true,
			SortFiles: true,
			Order:     "area",
		},
		Gen: GenOptions{
			Count:     1000,
			MaxWidth:  200,
			MaxHeight: 200,
			OutputDir: "test-images",
		},
		Random: RandomOptions{
			Count:     10000,
			MaxWidth:  100,
			MaxHeight: 100,
			Output:    "test.png",
		},
	}
}

// LoadConfig 读取配置文件，文件中没有出现的键保留默认值。path 为空时
// 直接返回默认配置。
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, fmt.Errorf("配置文件 %s 包含未知的键: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

func bindAtlasFlags(fs *pflag.FlagSet, o *AtlasOptions) {
	fs.StringVar(&o.InputDir, "input", o.InputDir, "输入目录")
	fs.StringVar(&o.OutputDir, "output", o.OutputDir, "输出目录")
	fs.StringVar(&o.Name, "name", o.Name, "图集文件名(不含扩展名)")
	fs.IntVar(&o.Padding, "padding", o.Padding, "填充")
	fs.BoolVar(&o.Trim, "trim", o.Trim, "修剪透明部分")
	fs.UintVar(&o.Threshold, "threshold", o.Threshold, "透明度阈值")
	fs.BoolVar(&o.SortFiles, "sort-files", o.SortFiles, "按文件名排序")
	fs.StringVar(&o.Order, "order", o.Order, "矩形排序方式 (area, perimeter, maxside, minside)")
	fs.BoolVar(&o.PowerOfTwo, "pow-of-two", o.PowerOfTwo, "启用2的幂")
}

func bindGenFlags(fs *pflag.FlagSet, o *GenOptions) {
	fs.IntVar(&o.Count, "count", o.Count, "生成图片数量")
	fs.IntVar(&o.MaxWidth, "width", o.MaxWidth, "最大宽度")
	fs.IntVar(&o.MaxHeight, "height", o.MaxHeight, "最大高度")
	fs.StringVar(&o.OutputDir, "output", o.OutputDir, "输出目录")
	fs.Int64Var(&o.Seed, "seed", o.Seed, "随机数种子，0 表示使用当前时间")
}

func bindRandomFlags(fs *pflag.FlagSet, o *RandomOptions) {
	fs.IntVar(&o.Count, "count", o.Count, "矩形数量")
	fs.IntVar(&o.MaxWidth, "width", o.MaxWidth, "最大宽度")
	fs.IntVar(&o.MaxHeight, "height", o.MaxHeight, "最大高度")
	fs.StringVar(&o.Output, "output", o.Output, "输出图片路径")
	fs.Int64Var(&o.Seed, "seed", o.Seed, "随机数种子，0 表示使用当前时间")
}

// applyFlags 把命令行上显式设置过的参数覆盖到 target 上，
// 优先级：默认值 < 配置文件 < 命令行。
func applyFlags[T any](cmd *cobra.Command, target *T, bind func(*pflag.FlagSet, *T)) error {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	bind(fs, target)
	var err error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if err != nil || fs.Lookup(f.Name) == nil {
			return
		}
		err = fs.Set(f.Name, f.Value.String())
	})
	return err
}

var errNoInput = errors.New("未指定输入目录")

func (o *AtlasOptions) validate() error {
	if o.InputDir == "" {
		return errNoInput
	}
	if o.Name == "" {
		return errors.New("图集文件名不能为空")
	}
	if o.Padding < 0 {
		return fmt.Errorf("填充不能为负数 (given %d)", o.Padding)
	}
	if o.Threshold > 255 {
		return fmt.Errorf("透明度阈值必须在 0-255 之间 (given %d)", o.Threshold)
	}
	if _, err := rectpack.ResolveSort(o.Order); err != nil {
		return err
	}
	return nil
}

func (o *GenOptions) validate() error {
	if o.Count <= 0 {
		return fmt.Errorf("生成数量必须大于0 (given %d)", o.Count)
	}
	if o.MaxWidth <= 0 || o.MaxHeight <= 0 {
		return fmt.Errorf("width and height must be greater than 0 (given %vx%v)", o.MaxWidth, o.MaxHeight)
	}
	if o.OutputDir == "" {
		return errors.New("未指定输出目录")
	}
	return nil
}

func (o *RandomOptions) validate() error {
	if o.Count <= 0 {
		return fmt.Errorf("矩形数量必须大于0 (given %d)", o.Count)
	}
	if o.MaxWidth <= 0 || o.MaxHeight <= 0 {
		return fmt.Errorf("width and height must be greater than 0 (given %vx%v)", o.MaxWidth, o.MaxHeight)
	}
	if o.Output == "" {
		return errors.New("未指定输出图片路径")
	}
	return nil
}
