package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"atlaspack/rectpack"
)

func newAtlasCmd() *cobra.Command {
	opts := DefaultConfig().Atlas
	cmd := &cobra.Command{
		Use:   "atlas",
		Short: "把目录中的图片打包成一张图集",
		Long: `读取输入目录中的 png/jpg 图片，打包后输出图集图片和 JSON 元数据。
图集会按需要自动增长，不需要指定最大尺寸。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := configFromContext(cmd.Context()).Atlas
			if err := applyFlags(cmd, &o, bindAtlasFlags); err != nil {
				return err
			}
			if err := o.validate(); err != nil {
				return err
			}
			_, err := runAtlas(cmd.Context(), cmd.OutOrStdout(), &o)
			return err
		},
	}
	bindAtlasFlags(cmd.Flags(), &opts)
	return cmd
}

// runAtlas 执行打包并写出图集，返回写出的元数据
func runAtlas(ctx context.Context, out io.Writer, o *AtlasOptions) (*AtlasData, error) {
	logger := loggerFromContext(ctx)

	paths, err := listImageFiles(o.InputDir, o.SortFiles)
	if err != nil {
		return nil, err
	}
	logger.Info("找到图片文件", "count", len(paths), "dir", o.InputDir)
	if o.Trim {
		logger.Debug("已开启透明区域裁切", "threshold", o.Threshold)
	}

	prog := newProgress(logger)
	sprites, err := loadSprites(ctx, paths, o.Trim, uint8(o.Threshold))
	if err != nil {
		return nil, err
	}
	prog.done("图片预处理完成", "count", len(sprites))

	sizes := make([]rectpack.Size, len(sprites))
	for i := range sprites {
		sizes[i] = sprites[i].size()
	}
	compare, err := rectpack.ResolveSort(o.Order)
	if err != nil {
		return nil, err
	}
	packer := rectpack.NewPacker()
	packer.Padding = o.Padding
	packer.Sorter(compare)

	prog = newProgress(logger)
	res, err := packer.Pack(sizes)
	if err != nil {
		return nil, fmt.Errorf("打包失败: %w", err)
	}
	prog.done("打包完成", "size", res.Size())

	prog = newProgress(logger)
	atlas, mapping, err := CreateAtlasImage(ctx, res, sprites, o.PowerOfTwo)
	if err != nil {
		return nil, fmt.Errorf("生成图集失败: %w", err)
	}
	prog.done("图集创建完成")

	// 确保输出目录存在
	if err := os.MkdirAll(o.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	imageName := o.Name + ".png"
	imagePath := filepath.Join(o.OutputDir, imageName)
	prog = newProgress(logger)
	if err := imaging.Save(atlas, imagePath); err != nil {
		return nil, fmt.Errorf("保存图集图片失败: %w", err)
	}
	prog.done("图像写入完成", "file", imagePath)

	bounds := atlas.Bounds()
	used := res.UsedArea(sizes)
	data := newAtlasData(imageName, bounds.Dx(), bounds.Dy(),
		float64(used)/float64(bounds.Dx()*bounds.Dy()), mapping)
	jsonPath := filepath.Join(o.OutputDir, o.Name+".json")
	if err := writeAtlasJSON(data, jsonPath); err != nil {
		return nil, fmt.Errorf("生成JSON元数据失败: %w", err)
	}

	printTitle(out, "图集")
	printPackStats(out, len(sizes), bounds.Dx(), bounds.Dy(), used)
	printSuccess(out, "已生成图集")
	printFile(out, imagePath)
	printFile(out, jsonPath)
	return data, nil
}
