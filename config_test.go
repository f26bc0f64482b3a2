package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Empty(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "atlaspack.toml", `
[atlas]
input = "sprites"
padding = 2
pow_of_two = true

[gen]
count = 20
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sprites", cfg.Atlas.InputDir)
	assert.Equal(t, 2, cfg.Atlas.Padding)
	assert.True(t, cfg.Atlas.PowerOfTwo)
	// 文件中没有的键保留默认值
	assert.Equal(t, "atlas", cfg.Atlas.Name)
	assert.True(t, cfg.Atlas.Trim)
	assert.Equal(t, 20, cfg.Gen.Count)
	assert.Equal(t, 200, cfg.Gen.MaxWidth)
	assert.Equal(t, DefaultConfig().Random, cfg.Random)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.toml", `
[atlas]
padding = 1
max_width = 4096
`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "atlas.max_width")
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestApplyFlags_OnlyExplicit(t *testing.T) {
	opts := DefaultConfig().Atlas
	cmd := &cobra.Command{Use: "atlas"}
	bindAtlasFlags(cmd.Flags(), &opts)
	require.NoError(t, cmd.Flags().Parse([]string{"--padding", "4", "--trim=false"}))

	// 模拟从配置文件读到的值
	target := DefaultConfig().Atlas
	target.InputDir = "from-file"
	target.Padding = 1
	require.NoError(t, applyFlags(cmd, &target, bindAtlasFlags))

	assert.Equal(t, 4, target.Padding)
	assert.False(t, target.Trim)
	assert.Equal(t, "from-file", target.InputDir, "unset flags must not override the file")
}

func TestAtlasOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(o *AtlasOptions)
		ok     bool
	}{
		{"default", func(o *AtlasOptions) {}, true},
		{"no input", func(o *AtlasOptions) { o.InputDir = "" }, false},
		{"no name", func(o *AtlasOptions) { o.Name = "" }, false},
		{"negative padding", func(o *AtlasOptions) { o.Padding = -1 }, false},
		{"threshold", func(o *AtlasOptions) { o.Threshold = 256 }, false},
		{"order", func(o *AtlasOptions) { o.Order = "maxside" }, true},
		{"unknown order", func(o *AtlasOptions) { o.Order = "height" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultConfig().Atlas
			tt.modify(&o)
			err := o.validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGenAndRandomOptions_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Gen.validate())
	assert.NoError(t, cfg.Random.validate())

	cfg.Gen.Count = 0
	assert.Error(t, cfg.Gen.validate())
	cfg.Random.MaxHeight = 0
	assert.Error(t, cfg.Random.validate())
}
