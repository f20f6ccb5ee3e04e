// Package config handles browser and tool configuration loading and management.
package config

import "time"

// Layout names accepted by ViewerConfig.Layout.
const (
	LayoutGrid = "grid"
	LayoutTree = "tree"
)

// Config holds all settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Project ProjectConfig `yaml:"project"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings for the browser window.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// ViewerConfig holds tree viewer settings.
type ViewerConfig struct {
	CellSize        int           `yaml:"cell_size"`
	MinCellSize     int           `yaml:"min_cell_size"`
	MaxCellSize     int           `yaml:"max_cell_size"`
	Layout          string        `yaml:"layout"` // "grid" or "tree"
	GroupAtlasItems bool          `yaml:"group_atlas_items"`
	PreloadWorkers  int           `yaml:"preload_workers"`
	ScrollStep      int           `yaml:"scroll_step"`
	RevealDuration  time.Duration `yaml:"reveal_duration"`
}

// ProjectConfig holds the project location.
type ProjectConfig struct {
	Root        string   `yaml:"root"`
	RecentPacks []string `yaml:"recent_packs"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Pack Browser",
			Width:  1280,
			Height: 800,
			VSync:  true,
		},
		Viewer: ViewerConfig{
			CellSize:        48,
			MinCellSize:     16,
			MaxCellSize:     256,
			Layout:          LayoutGrid,
			GroupAtlasItems: true,
			PreloadWorkers:  4,
			ScrollStep:      30,
			RevealDuration:  250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Normalize clamps out-of-range viewer values back into usable bounds.
func (c *Config) Normalize() {
	v := &c.Viewer
	if v.MinCellSize <= 0 {
		v.MinCellSize = 16
	}
	if v.MaxCellSize < v.MinCellSize {
		v.MaxCellSize = v.MinCellSize
	}
	if v.CellSize < v.MinCellSize {
		v.CellSize = v.MinCellSize
	}
	if v.CellSize > v.MaxCellSize {
		v.CellSize = v.MaxCellSize
	}
	if v.Layout != LayoutGrid && v.Layout != LayoutTree {
		v.Layout = LayoutGrid
	}
	if v.PreloadWorkers <= 0 {
		v.PreloadWorkers = 1
	}
	if v.ScrollStep <= 0 {
		v.ScrollStep = 30
	}
}

// AddRecentPack records a pack path at the front of the recent list.
func (c *Config) AddRecentPack(path string) {
	list := []string{path}
	for _, p := range c.Project.RecentPacks {
		if p != path && len(list) < 10 {
			list = append(list, p)
		}
	}
	c.Project.RecentPacks = list
}
