package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
)

func newUnpackCmd() *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "unpack <atlas.json>",
		Short: "按元数据把图集拆回单独的图片",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := unpack(cmd.Context(), cmd.OutOrStdout(), args[0], outputDir)
			return err
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "unpacked", "输出目录")
	return cmd
}

// extractSprite 从图集中取出一个精灵并还原成原图
func extractSprite(atlas image.Image, info SpriteInfo) *image.NRGBA {
	r := info.Region
	sub := imaging.Crop(atlas, image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H))
	// 打包时顺时针旋转了90°，这里逆时针转回来
	if info.Rotated {
		sub = imaging.Rotate90(sub)
	}
	if !info.Trimmed {
		return sub
	}
	full := imaging.New(info.SourceSize.W, info.SourceSize.H, color.NRGBA{0, 0, 0, 0})
	sr := info.SourceRect
	draw.Draw(full, image.Rect(sr.X, sr.Y, sr.X+sr.W, sr.Y+sr.H), sub, image.Point{}, draw.Src)
	return full
}

// unpack 解包图集，返回写出的文件路径
func unpack(ctx context.Context, out io.Writer, jsonPath, outputDir string) ([]string, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	data, err := readAtlasJSON(jsonPath)
	if err != nil {
		return nil, err
	}
	atlasPath := filepath.Join(filepath.Dir(jsonPath), data.AtlasName)
	atlas, err := imaging.Open(atlasPath)
	if err != nil {
		return nil, fmt.Errorf("打开图集图片失败: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	names := make([]string, 0, len(data.SpriteList))
	for name := range data.SpriteList {
		names = append(names, name)
	}
	sort.Strings(names)

	bounds := atlas.Bounds()
	var written []string
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		info := data.SpriteList[name]
		r := info.Region
		if !image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H).In(bounds) {
			printWarning(out, "%s 的区域超出图集范围，已跳过", name)
			continue
		}
		// 文件名只取最后一级，避免写到输出目录之外
		outputPath := filepath.Join(outputDir, filepath.Base(name))
		if err := imaging.Save(extractSprite(atlas, info), outputPath); err != nil {
			return written, fmt.Errorf("保存 %s 失败: %w", outputPath, err)
		}
		logger.Debug("已解包", "file", outputPath)
		written = append(written, outputPath)
	}
	prog.done("图集解包完成", "count", len(written), "dir", outputDir)
	printSuccess(out, "已解包 %d 张图片", len(written))
	printFile(out, outputDir)
	return written, nil
}
