package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute 运行命令行并返回标准输出
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

// requireSameImage 逐像素比较两个图片
func requireSameImage(t *testing.T, want, got image.Image, name string) {
	t.Helper()
	require.Equal(t, want.Bounds().Size(), got.Bounds().Size(), name)
	wb, gb := want.Bounds(), got.Bounds()
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			w := color.NRGBAModel.Convert(want.At(wb.Min.X+x, wb.Min.Y+y))
			g := color.NRGBAModel.Convert(got.At(gb.Min.X+x, gb.Min.Y+y))
			if w != g {
				require.Failf(t, "pixel mismatch", "%s (%d,%d): want %v, got %v", name, x, y, w, g)
			}
		}
	}
}

func requireSameFiles(t *testing.T, wantDir, gotDir string) {
	t.Helper()
	entries, err := os.ReadDir(wantDir)
	require.NoError(t, err)
	for _, e := range entries {
		want, err := imaging.Open(filepath.Join(wantDir, e.Name()))
		require.NoError(t, err)
		got, err := imaging.Open(filepath.Join(gotDir, e.Name()))
		require.NoError(t, err)
		requireSameImage(t, want, got, e.Name())
	}
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input")
	output := filepath.Join(dir, "output")
	unpacked := filepath.Join(dir, "unpacked")

	_, err := execute(t, "gen", "--count", "40", "--width", "60", "--height", "60", "--seed", "3", "--output", input)
	require.NoError(t, err)

	out, err := execute(t, "atlas", "--input", input, "--output", output, "--name", "sheet")
	require.NoError(t, err)
	assert.Contains(t, out, "sheet.png")

	data, err := readAtlasJSON(filepath.Join(output, "sheet.json"))
	require.NoError(t, err)
	assert.Equal(t, "sheet.png", data.AtlasName)
	assert.Equal(t, VERSION, data.Meta.Version)
	assert.NotEmpty(t, data.Meta.ID)
	assert.Len(t, data.SpriteList, 40)
	assert.Greater(t, data.Utilization, 0.0)
	assert.LessOrEqual(t, data.Utilization, 1.0)

	_, err = execute(t, "unpack", filepath.Join(output, "sheet.json"), "--output", unpacked)
	require.NoError(t, err)
	requireSameFiles(t, input, unpacked)
}

func TestRoundTrip_Trimmed(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input")
	require.NoError(t, os.MkdirAll(input, 0755))

	// 带透明边框的图片
	for i, size := range []image.Point{{20, 9}, {7, 16}, {12, 12}, {30, 5}} {
		img := imaging.New(size.X, size.Y, color.NRGBA{})
		for y := 2; y < size.Y-1; y++ {
			for x := 1; x < size.X-2; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), B: uint8(i * 50), A: 0xff})
			}
		}
		require.NoError(t, imaging.Save(img, filepath.Join(input, string(rune('a'+i))+".png")))
	}

	o := DefaultConfig().Atlas
	o.InputDir = input
	o.OutputDir = filepath.Join(dir, "output")
	o.Padding = 1

	var out bytes.Buffer
	data, err := runAtlas(context.Background(), &out, &o)
	require.NoError(t, err)
	for name, info := range data.SpriteList {
		assert.True(t, info.Trimmed, name)
		assert.Equal(t, 1, info.SourceRect.X, name)
		assert.Equal(t, 2, info.SourceRect.Y, name)
	}

	unpacked := filepath.Join(dir, "unpacked")
	written, err := unpack(context.Background(), &out, filepath.Join(o.OutputDir, "atlas.json"), unpacked)
	require.NoError(t, err)
	assert.Len(t, written, 4)
	requireSameFiles(t, input, unpacked)
}

func TestAtlas_Padding(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input")
	gen := &GenOptions{Count: 25, MaxWidth: 40, MaxHeight: 40, OutputDir: input, Seed: 9}
	_, err := generateImages(context.Background(), gen)
	require.NoError(t, err)

	o := DefaultConfig().Atlas
	o.InputDir = input
	o.OutputDir = filepath.Join(dir, "output")
	o.Padding = 3
	data, err := runAtlas(context.Background(), &bytes.Buffer{}, &o)
	require.NoError(t, err)

	var rects []image.Rectangle
	for _, info := range data.SpriteList {
		r := info.Region
		// 加上间距后仍然互不重叠
		rects = append(rects, image.Rect(r.X, r.Y, r.X+r.W+o.Padding, r.Y+r.H+o.Padding))
	}
	bin := image.Rect(0, 0, data.TotalSize.W, data.TotalSize.H)
	for i, a := range rects {
		assert.True(t, a.In(bin), "%v not in %v", a, bin)
		for _, b := range rects[i+1:] {
			assert.False(t, a.Overlaps(b), "%v overlaps %v", a, b)
		}
	}
}

func TestAtlas_PowerOfTwo(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input")
	_, err := generateImages(context.Background(), &GenOptions{Count: 10, MaxWidth: 50, MaxHeight: 50, OutputDir: input, Seed: 5})
	require.NoError(t, err)

	output := filepath.Join(dir, "output")
	_, err = execute(t, "atlas", "--input", input, "--output", output, "--pow-of-two")
	require.NoError(t, err)

	img, err := imaging.Open(filepath.Join(output, "atlas.png"))
	require.NoError(t, err)
	b := img.Bounds()
	assert.Equal(t, nextPowerOfTwo(b.Dx()), b.Dx())
	assert.Equal(t, nextPowerOfTwo(b.Dy()), b.Dy())
}

func TestAtlas_EmptyInput(t *testing.T) {
	_, err := execute(t, "atlas", "--input", t.TempDir(), "--output", t.TempDir())
	assert.Error(t, err)
}

func TestUnpack_SkipsOutOfBounds(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, imaging.Save(imaging.New(8, 8, opaqueRed), filepath.Join(dir, "atlas.png")))
	data := newAtlasData("atlas.png", 8, 8, 1, map[string]SpriteInfo{
		"in.png":  {Filename: "in.png", Region: Region{0, 0, 4, 4}, SourceSize: Bounds{4, 4}, SourceRect: Region{0, 0, 4, 4}},
		"out.png": {Filename: "out.png", Region: Region{6, 6, 4, 4}, SourceSize: Bounds{4, 4}, SourceRect: Region{0, 0, 4, 4}},
	})
	jsonPath := filepath.Join(dir, "atlas.json")
	require.NoError(t, writeAtlasJSON(data, jsonPath))

	var out bytes.Buffer
	written, err := unpack(context.Background(), &out, jsonPath, filepath.Join(dir, "unpacked"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "unpacked", "in.png")}, written)
	assert.Contains(t, out.String(), "out.png")
}

func TestRandom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview", "random.png")
	out, err := execute(t, "random", "--count", "200", "--seed", "11", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "矩形数量")

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.False(t, img.Bounds().Empty())
}

func TestRandom_Config(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "from-config.png")
	cfg := writeFile(t, dir, "atlaspack.toml", "[random]\ncount = 5\nseed = 2\noutput = \""+filepath.ToSlash(path)+"\"\n")

	var out bytes.Buffer
	o := DefaultConfig().Random
	o.Count, o.Seed, o.Output = 5, 2, path
	want, err := runRandom(context.Background(), &out, &o)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, err = execute(t, "--config", cfg, "random")
	require.NoError(t, err)
	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, want.Width, img.Bounds().Dx())
	assert.Equal(t, want.Height, img.Bounds().Dy())
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, loggerFromContext(ctx))
	assert.Equal(t, DefaultConfig(), configFromContext(ctx))

	cfg := DefaultConfig()
	cfg.Atlas.Padding = 7
	assert.Equal(t, cfg, configFromContext(withConfig(ctx, cfg)))
}
