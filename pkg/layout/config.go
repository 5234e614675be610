package layout

import (
	"github.com/matzehuels/orgchart/pkg/errors"
)

// Default geometry, in layout units (pixels at zoom 1).
const (
	DefaultNodeWidth    = 280.0
	DefaultNodeHeight   = 160.0
	DefaultGap          = 120.0
	DefaultLevelSpacing = 300.0
	DefaultMaxDepth     = 512
)

// Config holds the fixed geometry of the chart.
type Config struct {
	NodeWidth    float64 `json:"node_width" toml:"node_width"`
	NodeHeight   float64 `json:"node_height" toml:"node_height"`
	Gap          float64 `json:"gap" toml:"gap"`                     // Horizontal space between sibling subtrees
	LevelSpacing float64 `json:"level_spacing" toml:"level_spacing"` // Distance between the tops of consecutive levels

	// MaxDepth caps recursion; deeper trees are rejected.
	MaxDepth int `json:"max_depth" toml:"max_depth"`
}

// DefaultConfig returns the standard chart geometry.
func DefaultConfig() Config {
	return Config{
		NodeWidth:    DefaultNodeWidth,
		NodeHeight:   DefaultNodeHeight,
		Gap:          DefaultGap,
		LevelSpacing: DefaultLevelSpacing,
		MaxDepth:     DefaultMaxDepth,
	}
}

// Validate checks that the geometry can produce a layout.
func (c Config) Validate() error {
	switch {
	case c.NodeWidth <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "node width must be positive, got %g", c.NodeWidth)
	case c.NodeHeight <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "node height must be positive, got %g", c.NodeHeight)
	case c.Gap < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "gap cannot be negative, got %g", c.Gap)
	case c.LevelSpacing < c.NodeHeight:
		return errors.New(errors.ErrCodeInvalidConfig, "level spacing %g is smaller than node height %g", c.LevelSpacing, c.NodeHeight)
	case c.MaxDepth <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "max depth must be positive, got %d", c.MaxDepth)
	}
	return nil
}
