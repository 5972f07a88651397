package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Canvas Canvas `json:"canvas"`
	Split  Split  `json:"split"`
	Filter Filter `json:"filter"`
	Output Output `json:"output"`
}

// Canvas holds the mosaic canvas dimensions in pixels
type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Split holds the quadrant split fractions, each strictly inside (0,1)
type Split struct {
	ScaleX float64 `json:"scale_x"`
	ScaleY float64 `json:"scale_y"`
}

// Filter holds the box-drop thresholds applied during cropping
type Filter struct {
	// MinArea is a pixel-area threshold evaluated against the post-crop,
	// pre-resize box area.
	MinArea float64 `json:"min_area"`
	// MinVisibility is the minimum ratio of post-crop to original box area.
	MinVisibility float64 `json:"min_visibility"`
}

// Output holds configuration for output generation
type Output struct {
	Format  string `json:"format"`
	Quality int    `json:"quality"`
	Count   int    `json:"count"`
	Display bool   `json:"display"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Canvas: Canvas{
			Width:  800,
			Height: 800,
		},
		Split: Split{
			ScaleX: 0.4,
			ScaleY: 0.6,
		},
		Filter: Filter{
			MinArea:       200,
			MinVisibility: 0.1,
		},
		Output: Output{
			Format:  "jpg",
			Quality: 90,
			Count:   1,
			Display: false,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Canvas.Width < 2 || c.Canvas.Height < 2 {
		return fmt.Errorf("canvas.width and canvas.height must each be at least 2")
	}

	if c.Split.ScaleX <= 0 || c.Split.ScaleX >= 1 {
		return fmt.Errorf("split.scale_x must be strictly between 0 and 1")
	}

	if c.Split.ScaleY <= 0 || c.Split.ScaleY >= 1 {
		return fmt.Errorf("split.scale_y must be strictly between 0 and 1")
	}

	if c.Filter.MinArea <= 0 {
		return fmt.Errorf("filter.min_area must be positive")
	}

	if c.Filter.MinVisibility < 0 || c.Filter.MinVisibility > 1 {
		return fmt.Errorf("filter.min_visibility must be between 0 and 1")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Output.Count < 1 {
		return fmt.Errorf("output.count must be at least 1")
	}

	switch c.Output.Format {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format must be one of jpg, jpeg, png, webp")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "mosaic-augment", "config.json")
}
