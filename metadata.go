package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"atlaspack/rectpack"
)

// Region 是一个矩形区域
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Bounds 是一个尺寸
type Bounds struct {
	W int `json:"w"`
	H int `json:"h"`
}

// SpriteInfo 存储精灵图的信息
type SpriteInfo struct {
	Filename string `json:"filename"`
	// Region 是精灵在图集中占用的区域(旋转后)
	Region Region `json:"region"`
	// SourceSize 是原图尺寸
	SourceSize Bounds `json:"sourceSize"`
	// SourceRect 是参与打包的区域在原图中的位置
	SourceRect Region `json:"sourceRect"`
	Trimmed    bool   `json:"trimmed"`
	Rotated    bool   `json:"rotated"`
}

// AtlasMeta 存储生成信息
type AtlasMeta struct {
	ID        string `json:"id"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// AtlasData 是图集的 JSON 元数据
type AtlasData struct {
	Meta        AtlasMeta             `json:"meta"`
	AtlasName   string                `json:"atlasName"`
	TotalSize   Bounds                `json:"totalSize"`
	Utilization float64               `json:"utilization"`
	SpriteList  map[string]SpriteInfo `json:"spriteList"`
}

func newSpriteInfo(s *sprite, r rectpack.Rect) SpriteInfo {
	b := s.img.Bounds()
	return SpriteInfo{
		Filename: filepath.Base(s.path),
		Region:   Region{X: r.X, Y: r.Y, W: r.Width, H: r.Height},
		SourceSize: Bounds{
			W: b.Dx(),
			H: b.Dy(),
		},
		SourceRect: Region{
			X: s.trim.Min.X - b.Min.X,
			Y: s.trim.Min.Y - b.Min.Y,
			W: s.trim.Dx(),
			H: s.trim.Dy(),
		},
		Trimmed: s.trimmed(),
		Rotated: r.Rotated,
	}
}

// newAtlasData 组装元数据，width、height 是最终图集图片的尺寸
func newAtlasData(atlasName string, width, height int, utilization float64, sprites map[string]SpriteInfo) *AtlasData {
	return &AtlasData{
		Meta: AtlasMeta{
			ID:        uuid.New().String(),
			Version:   VERSION,
			Timestamp: time.Now().Format("2006-01-02 15:04:05"),
		},
		AtlasName:   atlasName,
		TotalSize:   Bounds{W: width, H: height},
		Utilization: utilization,
		SpriteList:  sprites,
	}
}

// writeAtlasJSON 将元数据编码为JSON写入文件
func writeAtlasJSON(data *AtlasData, path string) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, jsonData, 0644)
}

// readAtlasJSON 读取并解析元数据
func readAtlasJSON(path string) (*AtlasData, error) {
	jsonData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取图集JSON文件失败: %w", err)
	}
	var data AtlasData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("解析JSON失败: %w", err)
	}
	if data.AtlasName == "" {
		return nil, fmt.Errorf("%s 缺少 atlasName", path)
	}
	return &data, nil
}
