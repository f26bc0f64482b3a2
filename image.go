package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/bits"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/maruel/natural"
	"golang.org/x/sync/errgroup"

	"atlaspack/rectpack"
)

// sprite 是一张已解码的源图片
type sprite struct {
	path string
	img  image.Image
	// trim 是图片中参与打包的区域，未裁切时等于图片边界
	trim image.Rectangle
}

// size 返回参与打包的尺寸
func (s *sprite) size() rectpack.Size {
	return rectpack.NewSize(s.trim.Dx(), s.trim.Dy())
}

// trimmed 判断是否裁掉了透明边缘
func (s *sprite) trimmed() bool {
	return s.trim != s.img.Bounds()
}

// GetImageBBox 检测图像的透明区域，返回 alpha 大于阈值的像素的边界。
// 图像完全透明时返回整个图像边界。
func GetImageBBox(img image.Image, alphaThreshold uint8) image.Rectangle {
	bounds := img.Bounds()
	if bounds.Empty() {
		return image.Rectangle{}
	}
	src, ok := img.(*image.NRGBA)
	if !ok {
		src = imaging.Clone(img)
	}
	b := src.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := src.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.Pix[i+3] > alphaThreshold { // 直接访问alpha通道
				minX = min(minX, x)
				maxX = max(maxX, x)
				minY = min(minY, y)
				maxY = max(maxY, y)
			}
			i += 4
		}
	}
	if maxX < minX {
		return bounds // 图像完全透明
	}
	// imaging.Clone 的结果从 (0,0) 开始，换算回原图坐标
	off := bounds.Min.Sub(b.Min)
	return image.Rect(minX, minY, maxX+1, maxY+1).Add(off)
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// listImageFiles 返回目录中的所有图片文件
func listImageFiles(dir string, naturalSort bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("读取输入目录 %s 失败: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("输入目录 %s 中没有找到任何图片文件", dir)
	}
	// 是否按文件名排序
	if naturalSort {
		sort.Sort(natural.StringSlice(paths))
	}
	return paths, nil
}

// loadSprites 并行解码所有图片，trim 为 true 时计算非透明区域
func loadSprites(ctx context.Context, paths []string, trim bool, threshold uint8) ([]sprite, error) {
	sprites := make([]sprite, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := imaging.Open(path)
			if err != nil {
				return fmt.Errorf("无法解码图片 %s: %w", path, err)
			}
			s := sprite{path: path, img: img, trim: img.Bounds()}
			if trim {
				s.trim = GetImageBBox(img, threshold)
			}
			sprites[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sprites, nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// placeSprite 返回 s 在图集中的像素：裁切后按需顺时针旋转90°，
// 即源像素 (x, y) 落在 (h-1-y, x)。
func placeSprite(s *sprite, rotated bool) *image.NRGBA {
	src := imaging.Crop(s.img, s.trim)
	if rotated {
		src = imaging.Rotate270(src)
	}
	return src
}

// CreateAtlasImage 创建图集图像以及每个精灵的元数据
func CreateAtlasImage(ctx context.Context, res *rectpack.Result, sprites []sprite, powerOfTwo bool) (*image.NRGBA, map[string]SpriteInfo, error) {
	// 获取图集所需的最终尺寸
	width, height := res.Width, res.Height
	if powerOfTwo {
		width = nextPowerOfTwo(width)
		height = nextPowerOfTwo(height)
	}
	dst := imaging.New(width, height, color.NRGBA{0, 0, 0, 0})
	mapping := make(map[string]SpriteInfo, len(sprites))

	// 各精灵的目标区域互不重叠，锁只保护 mapping
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range sprites {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := &sprites[i]
			r := res.Rect(i, s.size())
			src := placeSprite(s, r.Rotated)
			dstRect := image.Rect(r.X, r.Y, r.Right(), r.Bottom())
			draw.Draw(dst, dstRect, src, image.Point{}, draw.Src)

			info := newSpriteInfo(s, r)
			mu.Lock()
			mapping[info.Filename] = info
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return dst, mapping, nil
}
