package engine

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/greenmatthew/velecs/engine/core"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Directory holding shaders and models, relative to the working directory.
	AssetRoot string `toml:"asset_root"`
	LogLevel  string `toml:"log_level"`
}

// DefaultApplicationConfig returns the config used when no file overrides it.
func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		Name:        "Velecs Application",
		AssetRoot:   "assets",
		LogLevel:    "info",
	}
}

// LoadApplicationConfig reads a TOML config file, falling back to defaults
// for any field the file omits. A missing file is not an error.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			core.LogDebug("No config file at %s, using defaults.", path)
			return config, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if config.StartWidth == 0 || config.StartHeight == 0 {
		return nil, fmt.Errorf("config %s: window size must be non-zero", path)
	}
	return config, nil
}

func (c *ApplicationConfig) ParsedLogLevel() core.LogLevel {
	switch c.LogLevel {
	case "debug":
		return core.DebugLevel
	case "warn":
		return core.WarnLevel
	case "error":
		return core.ErrorLevel
	default:
		return core.InfoLevel
	}
}
