package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"atlaspack/rectpack"
)

func newRandomCmd() *cobra.Command {
	opts := DefaultConfig().Random
	cmd := &cobra.Command{
		Use:   "random",
		Short: "打包随机尺寸的矩形并输出预览图",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := configFromContext(cmd.Context()).Random
			if err := applyFlags(cmd, &o, bindRandomFlags); err != nil {
				return err
			}
			if err := o.validate(); err != nil {
				return err
			}
			_, err := runRandom(cmd.Context(), cmd.OutOrStdout(), &o)
			return err
		},
	}
	bindRandomFlags(cmd.Flags(), &opts)
	return cmd
}

// randomColor 返回随机的不透明颜色
func randomColor(r *rand.Rand) color.NRGBA {
	return color.NRGBA{
		R: uint8(r.Intn(255)),
		G: uint8(r.Intn(255)),
		B: uint8(r.Intn(255)),
		A: 255,
	}
}

// renderPacking 把每个矩形涂成随机颜色，未使用的区域保持透明
func renderPacking(res *rectpack.Result, sizes []rectpack.Size, r *rand.Rand) *image.NRGBA {
	img := imaging.New(res.Width, res.Height, color.NRGBA{0, 0, 0, 0})
	for i, size := range sizes {
		rect := res.Rect(i, size)
		bounds := image.Rect(rect.X, rect.Y, rect.Right(), rect.Bottom())
		draw.Draw(img, bounds, image.NewUniform(randomColor(r)), image.Point{}, draw.Src)
	}
	return img
}

// runRandom 打包 o.Count 个宽高在 [1, MaxWidth]x[1, MaxHeight] 的随机矩形
func runRandom(ctx context.Context, out io.Writer, o *RandomOptions) (*rectpack.Result, error) {
	logger := loggerFromContext(ctx)
	r, seed := newRand(o.Seed)
	logger.Debug("随机数种子", "seed", seed)

	sizes := make([]rectpack.Size, o.Count)
	for i := range sizes {
		sizes[i] = rectpack.NewSize(1+r.Intn(o.MaxWidth), 1+r.Intn(o.MaxHeight))
	}

	prog := newProgress(logger)
	res, err := rectpack.Pack(sizes)
	if err != nil {
		return nil, fmt.Errorf("打包失败: %w", err)
	}
	prog.done("打包完成", "count", len(sizes), "size", res.Size())

	if dir := filepath.Dir(o.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := imaging.Save(renderPacking(res, sizes, r), o.Output); err != nil {
		return nil, fmt.Errorf("保存预览图失败: %w", err)
	}

	printTitle(out, "随机打包")
	printPackStats(out, len(sizes), res.Width, res.Height, res.UsedArea(sizes))
	printSuccess(out, "已生成预览图")
	printFile(out, o.Output)
	return res, nil
}
