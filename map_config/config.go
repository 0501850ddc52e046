package map_config

import (
	"encoding/json"
	"fmt"
	"math"
)

// Country is one entry of a map's country list. Name is matched exactly
// against the NAME attribute of the countries dataset.
type Country struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UnmarshalJSON requires both keys and nothing else.
func (c *Country) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	nameRaw, haveName := raw["name"]
	colorRaw, haveColor := raw["color"]
	if !haveName || !haveColor {
		return fmt.Errorf("country %s needs both 'name' and 'color'", string(b))
	}
	if len(raw) != 2 {
		return fmt.Errorf("country %s has unknown fields", string(b))
	}

	if err := json.Unmarshal(nameRaw, &c.Name); err != nil {
		return fmt.Errorf("country name: %w", err)
	}
	if err := json.Unmarshal(colorRaw, &c.Color); err != nil {
		return fmt.Errorf("country color: %w", err)
	}
	return nil
}

// Pair is a two-number JSON array such as a figure size or an axis limit.
type Pair [2]float64

func (p *Pair) UnmarshalJSON(b []byte) error {
	var values []float64
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	if len(values) != 2 {
		return fmt.Errorf("expected 2 numbers, got %d", len(values))
	}
	p[0], p[1] = values[0], values[1]
	return nil
}

func (p Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{p[0], p[1]})
}

func (p Pair) Min() float64 { return math.Min(p[0], p[1]) }
func (p Pair) Max() float64 { return math.Max(p[0], p[1]) }

// Span is second minus first. It is negative for an inverted axis.
func (p Pair) Span() float64 { return p[1] - p[0] }

// MapConfig describes one map to render.
type MapConfig struct {
	Title     string    `json:"title"`
	FigSize   Pair      `json:"fig_size"` // inches
	XLim      Pair      `json:"xlim"`
	YLim      Pair      `json:"ylim"`
	XTicks    []float64 `json:"xticks"`
	YTicks    []float64 `json:"yticks"`
	Countries []Country `json:"countries"`
	Output    string    `json:"output"`
}

var requiredKeys = []string{
	"title",
	"fig_size",
	"xlim",
	"ylim",
	"xticks",
	"yticks",
	"countries",
	"output",
}

func (cfg MapConfig) String() string {
	return fmt.Sprintf("'%s' -> %s", cfg.Title, cfg.Output)
}

// CountryNames returns the country names in configured order.
func (cfg *MapConfig) CountryNames() []string {
	names := make([]string, len(cfg.Countries))
	for idx, country := range cfg.Countries {
		names[idx] = country.Name
	}
	return names
}
