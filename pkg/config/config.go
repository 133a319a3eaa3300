// Package config handles loading and saving treebrowse configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/treebrowse/config.yaml
//   - State:   ~/.local/state/treebrowse/ (session store)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tuning holds the tuned thresholds of the layout and render engines.
// These are deliberate knobs, not invariants; reasonable deployments may
// recalibrate them for their tree sizes.
type Tuning struct {
	// AutoCollapseTipThreshold is the total tip count above which a freshly
	// loaded tree is seeded with an automatic collapse set.
	AutoCollapseTipThreshold int `yaml:"auto_collapse_tip_threshold,omitempty"`
	// MinGroupTips is the floor of the per-tree collapse-group size.
	MinGroupTips int `yaml:"min_group_tips,omitempty"`
	// TargetGroups is the approximate number of visible collapsed units
	// auto-collapse aims for.
	TargetGroups int `yaml:"target_groups,omitempty"`
	// FastModeTipThreshold auto-enables batched rendering above this tip count.
	FastModeTipThreshold int `yaml:"fast_mode_tip_threshold,omitempty"`
	// LabelTipThreshold auto-disables tip labels above this tip count.
	LabelTipThreshold int `yaml:"label_tip_threshold,omitempty"`
	// UndoDepth caps the undo stack; oldest entries are evicted on overflow.
	UndoDepth int `yaml:"undo_depth,omitempty"`
}

// UIConfig holds view preference defaults.
type UIConfig struct {
	DefaultMode   string  `yaml:"default_mode,omitempty"` // rectangular, circular, unrooted
	Phylogram     bool    `yaml:"phylogram,omitempty"`
	TipSpacing    float64 `yaml:"tip_spacing,omitempty"`
	TriangleScale float64 `yaml:"triangle_scale,omitempty"` // percent, 10-200
}

// Config is the top-level configuration for treebrowse.
type Config struct {
	Tuning Tuning   `yaml:"tuning,omitempty"`
	UI     UIConfig `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Tuning: Tuning{
			AutoCollapseTipThreshold: 300,
			MinGroupTips:             20,
			TargetGroups:             50,
			FastModeTipThreshold:     1000,
			LabelTipThreshold:        1000,
			UndoDepth:                20,
		},
		UI: UIConfig{
			DefaultMode:   "rectangular",
			Phylogram:     true,
			TipSpacing:    18,
			TriangleScale: 100,
		},
	}
}

// ConfigDir returns the XDG config directory for treebrowse.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "treebrowse")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "treebrowse")
}

// StateDir returns the XDG state directory for treebrowse.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "treebrowse")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "treebrowse")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// normalize clamps partially specified configs back into valid ranges.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Tuning.MinGroupTips <= 0 {
		c.Tuning.MinGroupTips = def.Tuning.MinGroupTips
	}
	if c.Tuning.TargetGroups <= 0 {
		c.Tuning.TargetGroups = def.Tuning.TargetGroups
	}
	if c.Tuning.AutoCollapseTipThreshold <= 0 {
		c.Tuning.AutoCollapseTipThreshold = def.Tuning.AutoCollapseTipThreshold
	}
	if c.Tuning.FastModeTipThreshold <= 0 {
		c.Tuning.FastModeTipThreshold = def.Tuning.FastModeTipThreshold
	}
	if c.Tuning.LabelTipThreshold <= 0 {
		c.Tuning.LabelTipThreshold = def.Tuning.LabelTipThreshold
	}
	if c.Tuning.UndoDepth <= 0 {
		c.Tuning.UndoDepth = def.Tuning.UndoDepth
	}
	if c.UI.TipSpacing <= 0 {
		c.UI.TipSpacing = def.UI.TipSpacing
	}
	if c.UI.TriangleScale < 10 || c.UI.TriangleScale > 200 {
		c.UI.TriangleScale = def.UI.TriangleScale
	}
	switch strings.ToLower(c.UI.DefaultMode) {
	case "rectangular", "circular", "unrooted":
	default:
		c.UI.DefaultMode = def.UI.DefaultMode
	}
}
