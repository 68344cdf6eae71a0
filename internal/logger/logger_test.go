package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aesthetica/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestSetupFileOutputRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := Setup(config.LogConfig{Level: "debug", Format: "json", Output: path, MaxSizeMB: 1})
	defer Setup(config.LogConfig{Level: "info", Output: "stdout"})

	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %v, want debug", l.GetLevel())
	}
	rot, ok := l.Out.(*lumberjack.Logger)
	if !ok {
		t.Fatalf("output = %T, want *lumberjack.Logger", l.Out)
	}
	l.WithField("referral_code", "ABCD1234").Info("issued")
	_ = rot.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"referral_code":"ABCD1234"`) {
		t.Fatalf("log line missing field: %s", raw)
	}
}

func TestSetupBadLevelFallsBackToInfo(t *testing.T) {
	l := Setup(config.LogConfig{Level: "loud", Output: "stderr"})
	if l.GetLevel() != logrus.InfoLevel {
		t.Fatalf("level = %v, want info", l.GetLevel())
	}
	if l.Out != os.Stderr {
		t.Fatalf("output should be stderr")
	}
}
