package varre

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// FramesInFlight is the number of frames the CPU may record ahead of the GPU.
const FramesInFlight = 3

// Environment variables read by Config.FromEnv.
const (
	EnvValidation = "VARRE_VALIDATION"
	EnvLogLevel   = "VARRE_LOG_LEVEL"
	EnvShaderDir  = "VARRE_SHADER_DIR"
)

// Config holds the engine settings. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	AppName string
	// Validation enables the Khronos validation layer and the debug report callback.
	Validation bool
	// PreferMailbox selects MAILBOX presentation when the surface supports it.
	// FIFO is used otherwise.
	PreferMailbox bool
	ClearColor    [4]float32
	// LogFile appends log records to the named file instead of stderr.
	LogFile  string
	LogLevel slog.Level
	// ShaderDir replaces the compiled-in shaders with the .spv files of a
	// directory. Empty uses the compiled-in set.
	ShaderDir string
}

func DefaultConfig() Config {
	return Config{
		AppName:       "varre",
		PreferMailbox: true,
		ClearColor:    [4]float32{0.02, 0.02, 0.04, 1.0},
		LogLevel:      slog.LevelInfo,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AppName) == "" {
		return errors.New("config: empty app name")
	}
	if c.ShaderDir != "" && strings.TrimSpace(c.ShaderDir) == "" {
		return errors.New("config: blank shader directory")
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return errors.Errorf("config: clear color component %d out of range: %v", i, v)
		}
	}
	return nil
}

// FromEnv returns a copy of c with the VARRE_* environment overrides applied.
func (c Config) FromEnv() (Config, error) {
	if v, ok := os.LookupEnv(EnvValidation); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c, errors.Wrapf(err, "config: %s", EnvValidation)
		}
		c.Validation = b
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return c, errors.Wrapf(err, "config: %s", EnvLogLevel)
		}
	}
	if v, ok := os.LookupEnv(EnvShaderDir); ok && v != "" {
		c.ShaderDir = v
	}
	return c, nil
}
