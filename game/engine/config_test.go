package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMapConfig(t *testing.T) {
	valid := func() *MapConfig {
		return &MapConfig{
			Name:     "test",
			Level:    LevelIntermediate,
			GridSize: 3,
			Layout:   []string{"P..", ".Z.", "..H"},
		}
	}

	require.NoError(t, ValidateMapConfig(valid()))

	tests := []struct {
		name   string
		mutate func(c *MapConfig)
		errMsg string
	}{
		{"missing name", func(c *MapConfig) { c.Name = "" }, "name is required"},
		{"unknown level", func(c *MapConfig) { c.Level = "expert" }, "unknown level"},
		{"grid too small", func(c *MapConfig) { c.GridSize = 1; c.Layout = []string{"P"} }, "grid_size must be between"},
		{"row count mismatch", func(c *MapConfig) { c.Layout = c.Layout[:2] }, "layout must have 3 rows"},
		{"row width mismatch", func(c *MapConfig) { c.Layout[1] = ".Z" }, "row 2 must have 3 cells"},
		{"token above level", func(c *MapConfig) { c.Layout[1] = ".G." }, "row 2, col 2"},
		{"no player", func(c *MapConfig) { c.Layout[0] = "..." }, "exactly one player"},
		{"two hospitals", func(c *MapConfig) { c.Layout[1] = "H.." }, "exactly one hospital"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)
			err := ValidateMapConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		assert.ErrorIs(t, ValidateMapConfig(nil), ErrInvalidMap)
	})

	t.Run("unknown tokens wrap ErrUnknownToken", func(t *testing.T) {
		config := valid()
		config.Layout[1] = ".X."
		assert.ErrorIs(t, ValidateMapConfig(config), ErrUnknownToken)
	})

	t.Run("basic maps reject zombies", func(t *testing.T) {
		config := valid()
		config.Level = LevelBasic
		assert.ErrorIs(t, ValidateMapConfig(config), ErrUnknownToken)
	})
}

func TestLoad(t *testing.T) {
	t.Run("spaces and dots are empty", func(t *testing.T) {
		grid, err := Load(&MapConfig{
			Name:     "spaces",
			Level:    LevelAdvanced,
			GridSize: 3,
			Layout:   []string{"P  ", " T.", "G.H"},
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"P..", ".T.", "G.H"}, grid.Rows())
		assert.Equal(t, "HoldingPlayer", grid.GetEntity(Position{0, 0}).Name())
	})

	t.Run("invalid map is rejected", func(t *testing.T) {
		_, err := Load(&MapConfig{Name: "bad", GridSize: 2, Layout: []string{"PP", "H."}})
		assert.ErrorIs(t, err, ErrInvalidMap)
	})
}

func TestParseLayout(t *testing.T) {
	size, tokens := ParseLayout([]string{"P.", " H"})
	assert.Equal(t, 2, size)
	assert.Equal(t, map[Position]string{
		{0, 0}: PlayerToken,
		{1, 1}: HospitalToken,
	}, tokens)
}

func TestLoadMapFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json map", func(t *testing.T) {
		path := filepath.Join(dir, "field.json")
		data := `{"name":"field","description":"open","level":"intermediate","grid_size":3,"layout":["P..",".Z.","..H"]}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		config, err := LoadMapFile(path)
		require.NoError(t, err)
		assert.Equal(t, "field", config.Name)
		assert.Equal(t, LevelIntermediate, config.Level)
		assert.Equal(t, 3, config.GridSize)
	})

	t.Run("json without level plays advanced", func(t *testing.T) {
		path := filepath.Join(dir, "nolevel.json")
		data := `{"name":"nolevel","grid_size":2,"layout":["PC","TH"]}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		config, err := LoadMapFile(path)
		require.NoError(t, err)
		assert.Equal(t, LevelAdvanced, config.Level)
	})

	t.Run("plain text map", func(t *testing.T) {
		path := filepath.Join(dir, "corridor.txt")
		require.NoError(t, os.WriteFile(path, []byte("P.Z\r\n...\r\nG.H\r\n"), 0644))

		config, err := LoadMapFile(path)
		require.NoError(t, err)
		assert.Equal(t, "corridor", config.Name)
		assert.Equal(t, LevelAdvanced, config.Level)
		assert.Equal(t, []string{"P.Z", "...", "G.H"}, config.Layout)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

		_, err := LoadMapFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadMapFile(filepath.Join(dir, "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("CONFIG_DIR overrides configs prefix", func(t *testing.T) {
		path := filepath.Join(dir, "override.json")
		data := `{"name":"override","level":"basic","grid_size":2,"layout":["P.",".H"]}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
		t.Setenv("CONFIG_DIR", dir)

		config, err := LoadMapFile("configs/override.json")
		require.NoError(t, err)
		assert.Equal(t, LevelBasic, config.Level)
	})
}

func TestDefaultMapConfig(t *testing.T) {
	assert.NoError(t, ValidateMapConfig(DefaultMapConfig()))
}
