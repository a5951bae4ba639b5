package varre

import (
	"testing"

	"golang.org/x/exp/slog"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"empty name", func(c *Config) { c.AppName = "  " }, false},
		{"compiled-in shaders", func(c *Config) { c.ShaderDir = "" }, true},
		{"blank shader dir", func(c *Config) { c.ShaderDir = " " }, false},
		{"clear above one", func(c *Config) { c.ClearColor[1] = 1.5 }, false},
		{"negative clear", func(c *Config) { c.ClearColor[3] = -0.1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(&c)
			if err := c.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvValidation, "true")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvShaderDir, "/opt/shaders")
	c, err := DefaultConfig().FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if !c.Validation || c.LogLevel != slog.LevelDebug || c.ShaderDir != "/opt/shaders" {
		t.Errorf("config = %+v", c)
	}
}

func TestConfigFromEnvErrors(t *testing.T) {
	for _, env := range [][2]string{
		{EnvValidation, "maybe"},
		{EnvLogLevel, "loud"},
	} {
		t.Run(env[0], func(t *testing.T) {
			t.Setenv(env[0], env[1])
			if _, err := DefaultConfig().FromEnv(); err == nil {
				t.Errorf("%s=%s accepted", env[0], env[1])
			}
		})
	}
}
