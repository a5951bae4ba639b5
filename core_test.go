package varre

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info_log.txt")
	if err := os.WriteFile(path, []byte("earlier\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.LogFile = path
	log, closer, err := NewLogger(cfg)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("swapchain built", "width", 800)
	log.Debug("hidden")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "earlier\n") {
		t.Errorf("log file truncated: %q", text)
	}
	if !strings.Contains(text, `msg="swapchain built"`) || !strings.Contains(text, "width=800") {
		t.Errorf("record missing: %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Errorf("debug record written at info level: %q", text)
	}
}

func TestNewLoggerStderr(t *testing.T) {
	log, closer, err := NewLogger(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if log == nil {
		t.Fatal("nil logger")
	}
	if err := closer.Close(); err != nil {
		t.Error(err)
	}
}
