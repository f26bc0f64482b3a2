package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	minGenWidth  = 12
	minGenHeight = 12
	borderWidth  = 2
)

// colorTab 只使用较亮的颜色，保证黑色编号清晰可见
var colorTab = []uint8{6, 7, 8, 9, 0xa, 0xb, 0xc, 0xd, 0xe, 0xf}

func newGenCmd() *cobra.Command {
	opts := DefaultConfig().Gen
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "生成带编号的随机尺寸测试图片",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := configFromContext(cmd.Context()).Gen
			if err := applyFlags(cmd, &o, bindGenFlags); err != nil {
				return err
			}
			if err := o.validate(); err != nil {
				return err
			}
			paths, err := generateImages(cmd.Context(), &o)
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "已生成 %d 张图片", len(paths))
			printFile(cmd.OutOrStdout(), o.OutputDir)
			return nil
		},
	}
	bindGenFlags(cmd.Flags(), &opts)
	return cmd
}

// newRand 返回使用 seed 的随机数生成器，seed 为 0 时使用当前时间。
func newRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// randomSpan 返回 [0, n) 中的随机数，n <= 0 时返回 0
func randomSpan(r *rand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	return r.Intn(n)
}

// randomLightColor 从 colorTab 中为每个通道随机取一个十六进制位
func randomLightColor(r *rand.Rand) color.NRGBA {
	pick := func() uint8 { return colorTab[r.Intn(len(colorTab))] * 0x11 }
	return color.NRGBA{R: pick(), G: pick(), B: pick(), A: 0xff}
}

// inverse 返回互补色
func inverse(c color.NRGBA) color.NRGBA {
	return color.NRGBA{R: 0xff - c.R, G: 0xff - c.G, B: 0xff - c.B, A: c.A}
}

// strokeRect 沿 img 的边缘画宽度为 width 的边框
func strokeRect(img draw.Image, width int, c color.Color) {
	b := img.Bounds()
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+width),
		image.Rect(b.Min.X, b.Max.Y-width, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+width, b.Max.Y),
		image.Rect(b.Max.X-width, b.Min.Y, b.Max.X, b.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(b), src, image.Point{}, draw.Src)
	}
}

// labelImage 生成一张带编号的图片，画布宽度至少能放下编号
func labelImage(text string, width, height int, fill color.NRGBA) *image.NRGBA {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	img := imaging.New(max(width, textWidth+2*borderWidth), height, fill)
	strokeRect(img, borderWidth, inverse(fill))

	b := img.Bounds()
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	d := font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P((b.Dx()-textWidth)/2, (b.Dy()+ascent-descent)/2),
	}
	d.DrawString(text)
	return img
}

// generateImages 在输出目录中生成 1.png ... N.png
func generateImages(ctx context.Context, o *GenOptions) ([]string, error) {
	logger := loggerFromContext(ctx)
	if err := os.MkdirAll(o.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	r, seed := newRand(o.Seed)
	logger.Debug("随机数种子", "seed", seed)

	prog := newProgress(logger)
	paths := make([]string, 0, o.Count)
	for i := 1; i <= o.Count; i++ {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		w := minGenWidth + randomSpan(r, o.MaxWidth-minGenWidth)
		h := minGenHeight + randomSpan(r, o.MaxHeight-minGenHeight)
		img := labelImage(strconv.Itoa(i), w, h, randomLightColor(r))

		filename := filepath.Join(o.OutputDir, fmt.Sprintf("%d.png", i))
		if err := imaging.Save(img, filename); err != nil {
			return paths, fmt.Errorf("保存 %s 失败: %w", filename, err)
		}
		logger.Debug("generated", "file", filename)
		paths = append(paths, filename)
	}
	prog.done("测试图片生成完成", "count", len(paths), "dir", o.OutputDir)
	return paths, nil
}
