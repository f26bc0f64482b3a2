package main

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlaspack/rectpack"
)

var opaqueRed = color.NRGBA{R: 0xff, A: 0xff}

func TestGetImageBBox(t *testing.T) {
	img := imaging.New(10, 8, color.NRGBA{})
	img.SetNRGBA(2, 3, opaqueRed)
	img.SetNRGBA(6, 5, opaqueRed)
	img.SetNRGBA(8, 1, color.NRGBA{A: 10})

	assert.Equal(t, image.Rect(2, 1, 9, 6), GetImageBBox(img, 0))
	assert.Equal(t, image.Rect(2, 3, 7, 6), GetImageBBox(img, 10))
}

func TestGetImageBBox_Transparent(t *testing.T) {
	img := imaging.New(5, 4, color.NRGBA{})
	assert.Equal(t, img.Bounds(), GetImageBBox(img, 0))
}

func TestGetImageBBox_Offset(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 20, 30))
	img.Set(12, 25, opaqueRed)
	assert.Equal(t, image.Rect(12, 25, 13, 26), GetImageBBox(img, 0))
}

func TestNextPowerOfTwo(t *testing.T) {
	for n, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 64: 64, 65: 128, 1000: 1024} {
		assert.Equal(t, want, nextPowerOfTwo(n), "n=%d", n)
	}
}

func TestPlaceSprite_Rotation(t *testing.T) {
	src := imaging.New(3, 2, color.NRGBA{})
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 0xff})
		}
	}
	s := &sprite{path: "a.png", img: src, trim: src.Bounds()}

	assert.Equal(t, src.Pix, placeSprite(s, false).Pix)

	dst := placeSprite(s, true)
	require.Equal(t, image.Rect(0, 0, 2, 3), dst.Bounds())
	h := src.Bounds().Dy()
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, src.NRGBAAt(x, y), dst.NRGBAAt(h-1-y, x), "src (%d,%d)", x, y)
		}
	}
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"10.png", "2.png", "1.PNG", "notes.txt", "3.jpg"} {
		writeFile(t, dir, name, "")
	}
	paths, err := listImageFiles(dir, true)
	require.NoError(t, err)
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"1.PNG", "2.png", "3.jpg", "10.png"}, names)

	_, err = listImageFiles(t.TempDir(), true)
	assert.Error(t, err)
}

func TestCreateAtlasImage(t *testing.T) {
	a := imaging.New(4, 2, opaqueRed)
	b := imaging.New(2, 2, color.NRGBA{B: 0xff, A: 0xff})
	sprites := []sprite{
		{path: "in/a.png", img: a, trim: a.Bounds()},
		{path: "in/b.png", img: b, trim: b.Bounds()},
	}
	sizes := []rectpack.Size{sprites[0].size(), sprites[1].size()}
	res, err := rectpack.Pack(sizes)
	require.NoError(t, err)

	atlas, mapping, err := CreateAtlasImage(context.Background(), res, sprites, true)
	require.NoError(t, err)
	assert.Equal(t, nextPowerOfTwo(res.Width), atlas.Bounds().Dx())
	assert.Equal(t, nextPowerOfTwo(res.Height), atlas.Bounds().Dy())
	require.Len(t, mapping, 2)

	for i, s := range sprites {
		info := mapping[filepath.Base(s.path)]
		r := res.Rect(i, sizes[i])
		assert.Equal(t, Region{X: r.X, Y: r.Y, W: r.Width, H: r.Height}, info.Region)
		assert.False(t, info.Trimmed)
		want := s.img.(*image.NRGBA).NRGBAAt(0, 0)
		assert.Equal(t, want, atlas.NRGBAAt(r.X, r.Y))
	}
}
