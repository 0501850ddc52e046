package map_config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigJSON = `[
  {
    "title": "Kashmir",
    "fig_size": [12, 10],
    "xlim": [72.5, 80.5],
    "ylim": [32, 37.5],
    "xticks": [],
    "yticks": [],
    "countries": [
      {"name": "India", "color": "#ff9933"},
      {"name": "Pakistan", "color": "#01411c"}
    ],
    "output": "out/kashmir.png"
  },
  {
    "title": "Test",
    "fig_size": [4, 4],
    "xlim": [0, 10],
    "ylim": [0, 10],
    "xticks": [0, 5, 10],
    "yticks": [2.5],
    "countries": [{"name": "X", "color": "#ff0000"}],
    "output": "out.png"
  }
]`

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0o644))
	return filename
}

func TestLoadFile_JSON(t *testing.T) {
	configs, err := LoadFile(writeFile(t, "config.json", testConfigJSON))
	require.NoError(t, err)
	require.Len(t, configs, 2)

	first := configs[0]
	assert.Equal(t, "Kashmir", first.Title)
	assert.Equal(t, Pair{12, 10}, first.FigSize)
	assert.Equal(t, Pair{72.5, 80.5}, first.XLim)
	assert.Equal(t, Pair{32, 37.5}, first.YLim)
	assert.Empty(t, first.XTicks)
	assert.Empty(t, first.YTicks)
	assert.Equal(t, []Country{
		{Name: "India", Color: "#ff9933"},
		{Name: "Pakistan", Color: "#01411c"},
	}, first.Countries)
	assert.Equal(t, "out/kashmir.png", first.Output)

	second := configs[1]
	assert.Equal(t, "Test", second.Title)
	assert.Equal(t, []float64{0, 5, 10}, second.XTicks)
	assert.Equal(t, []float64{2.5}, second.YTicks)
	assert.Equal(t, []string{"X"}, second.CountryNames())
}

func TestLoadFile_YAML(t *testing.T) {
	contents := `
- title: Test
  fig_size: [4, 4]
  xlim: [0, 10]
  ylim: [0, 10]
  xticks: []
  yticks: []
  countries:
    - name: X
      color: "#ff0000"
  output: out.png
`
	configs, err := LoadFile(writeFile(t, "config.yaml", contents))
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, []Country{{Name: "X", Color: "#ff0000"}}, configs[0].Countries)
	assert.Equal(t, Pair{4, 4}, configs[0].FigSize)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{
			name:     "malformed json",
			input:    `[{"title": "x",`,
			contains: "bad json",
		},
		{
			name:     "not an array",
			input:    `{"title": "x"}`,
			contains: "bad json",
		},
		{
			name:     "missing field",
			input:    `[{"title": "x", "fig_size": [1, 1], "xlim": [0, 1], "ylim": [0, 1], "xticks": [], "yticks": [], "countries": []}]`,
			contains: "missing required field(s): output",
		},
		{
			name:     "unknown field",
			input:    `[{"title": "x", "fig_size": [1, 1], "xlim": [0, 1], "ylim": [0, 1], "xticks": [], "yticks": [], "countries": [], "output": "o.png", "dpi": 100}]`,
			contains: "unknown field(s): dpi",
		},
		{
			name:     "short pair",
			input:    `[{"title": "x", "fig_size": [1], "xlim": [0, 1], "ylim": [0, 1], "xticks": [], "yticks": [], "countries": [], "output": "o.png"}]`,
			contains: "expected 2 numbers",
		},
		{
			name:     "country missing color",
			input:    `[{"title": "x", "fig_size": [1, 1], "xlim": [0, 1], "ylim": [0, 1], "xticks": [], "yticks": [], "countries": [{"name": "X"}], "output": "o.png"}]`,
			contains: "needs both 'name' and 'color'",
		},
		{
			name:     "country unknown field",
			input:    `[{"title": "x", "fig_size": [1, 1], "xlim": [0, 1], "ylim": [0, 1], "xticks": [], "yticks": [], "countries": [{"name": "X", "color": "red", "alpha": 1}], "output": "o.png"}]`,
			contains: "unknown fields",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	configs, err := Parse([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestParse_CountriesRoundTripIsNoop(t *testing.T) {
	configs, err := Parse([]byte(testConfigJSON))
	require.NoError(t, err)

	encoded, err := json.Marshal(configs)
	require.NoError(t, err)

	again, err := Parse(encoded)
	require.NoError(t, err)
	assert.Equal(t, configs, again)
}

func TestPair(t *testing.T) {
	p := Pair{72.5, 80.5}
	assert.Equal(t, 72.5, p.Min())
	assert.Equal(t, 80.5, p.Max())
	assert.Equal(t, 8.0, p.Span())

	inverted := Pair{10, -10}
	assert.Equal(t, -10.0, inverted.Min())
	assert.Equal(t, 10.0, inverted.Max())
	assert.Equal(t, -20.0, inverted.Span())
}
