package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw   string
		level zerolog.Level
		ok    bool
	}{
		{"", zerolog.InfoLevel, false},
		{"trace", zerolog.TraceLevel, true},
		{"debug", zerolog.DebugLevel, true},
		{"  INFO ", zerolog.InfoLevel, true},
		{"warn", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"off", zerolog.Disabled, true},
		{"bogus", zerolog.InfoLevel, false},
	}
	for _, tc := range cases {
		lvl, ok := parseLevel(tc.raw)
		if ok != tc.ok || lvl != tc.level {
			t.Fatalf("parseLevel(%q) = %v,%v want %v,%v", tc.raw, lvl, ok, tc.level, tc.ok)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogNoColor, "true")
	t.Setenv(EnvLogTimestamp, "false")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)
	if cfg.Level != zerolog.ErrorLevel {
		t.Fatalf("unexpected level: %v", cfg.Level)
	}
	if !cfg.NoColor {
		t.Fatalf("expected nocolor")
	}
	if cfg.Timestamp {
		t.Fatalf("expected timestamp disabled")
	}
}

func TestConfigureProfiles(t *testing.T) {
	if got := defaultConfig(ProfileTest); got.Level != zerolog.DebugLevel || got.Timestamp {
		t.Fatalf("unexpected test profile: %+v", got)
	}
	if got := defaultConfig(ProfileRuntime); got.Level != zerolog.InfoLevel || !got.Timestamp {
		t.Fatalf("unexpected runtime profile: %+v", got)
	}
}
