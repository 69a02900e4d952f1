// Package chart renders a finished timeline table as a comparison line
// chart, either as SVG or as a spreadsheet with an embedded chart.
package chart

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Style controls chart appearance. All fields are optional in the YAML
// file; zero values fall back to the defaults.
type Style struct {
	Font struct {
		Family string `yaml:"family"` // Font family for all text elements
		Size   int    `yaml:"size"`   // Base font size in pixels
	} `yaml:"font"`
	Colors struct {
		Background string   `yaml:"background"` // Chart background (hex color code)
		Grid       string   `yaml:"grid"`       // Gridline color
		Axis       string   `yaml:"axis"`       // Axis line and tick color
		Text       string   `yaml:"text"`       // Title and label color
		Series     []string `yaml:"series"`     // Line colors, cycled across players
	} `yaml:"colors"`
	Layout struct {
		Width        int `yaml:"width"`         // Total SVG width in pixels
		Height       int `yaml:"height"`        // Total SVG height in pixels
		MarginTop    int `yaml:"margin_top"`    // Top margin in pixels
		MarginBottom int `yaml:"margin_bottom"` // Bottom margin in pixels
		MarginLeft   int `yaml:"margin_left"`   // Left margin in pixels
		MarginRight  int `yaml:"margin_right"`  // Right margin in pixels
	} `yaml:"layout"`
}

// DefaultStyle returns the built-in chart style.
func DefaultStyle() *Style {
	s := &Style{}
	s.Font.Family = "Helvetica, Arial, sans-serif"
	s.Font.Size = 13
	s.Colors.Background = "#ffffff"
	s.Colors.Grid = "#e4e4e4"
	s.Colors.Axis = "#444444"
	s.Colors.Text = "#1a1a1a"
	s.Colors.Series = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b"}
	s.Layout.Width = 960
	s.Layout.Height = 540
	s.Layout.MarginTop = 60
	s.Layout.MarginBottom = 50
	s.Layout.MarginLeft = 70
	s.Layout.MarginRight = 30
	return s
}

// LoadStyle reads a style YAML file, filling unset fields from the
// defaults. An empty path returns the defaults unchanged.
func LoadStyle(path string) (*Style, error) {
	style := DefaultStyle()
	if path == "" {
		return style, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart style %s: %w", path, err)
	}

	var overlay Style
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse chart style %s: %w", path, err)
	}

	if overlay.Font.Family != "" {
		style.Font.Family = overlay.Font.Family
	}
	if overlay.Font.Size > 0 {
		style.Font.Size = overlay.Font.Size
	}
	if overlay.Colors.Background != "" {
		style.Colors.Background = overlay.Colors.Background
	}
	if overlay.Colors.Grid != "" {
		style.Colors.Grid = overlay.Colors.Grid
	}
	if overlay.Colors.Axis != "" {
		style.Colors.Axis = overlay.Colors.Axis
	}
	if overlay.Colors.Text != "" {
		style.Colors.Text = overlay.Colors.Text
	}
	if len(overlay.Colors.Series) > 0 {
		style.Colors.Series = overlay.Colors.Series
	}
	if overlay.Layout.Width > 0 {
		style.Layout.Width = overlay.Layout.Width
	}
	if overlay.Layout.Height > 0 {
		style.Layout.Height = overlay.Layout.Height
	}
	if overlay.Layout.MarginTop > 0 {
		style.Layout.MarginTop = overlay.Layout.MarginTop
	}
	if overlay.Layout.MarginBottom > 0 {
		style.Layout.MarginBottom = overlay.Layout.MarginBottom
	}
	if overlay.Layout.MarginLeft > 0 {
		style.Layout.MarginLeft = overlay.Layout.MarginLeft
	}
	if overlay.Layout.MarginRight > 0 {
		style.Layout.MarginRight = overlay.Layout.MarginRight
	}
	return style, nil
}
