package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func noEnv(string) (string, bool) { return "", false }

func TestDefaultsDev(t *testing.T) {
	cfg, err := load(noEnv, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Fatalf("ListenAddr=%q, want %q", cfg.ListenAddr, DefaultListenAddr)
	}
	if cfg.Mode != ModeDev {
		t.Fatalf("mode=%q, want %q", cfg.Mode, ModeDev)
	}
	if cfg.LogFormat != LogFormatText {
		t.Fatalf("logFormat=%q, want %q", cfg.LogFormat, LogFormatText)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("logLevel=%v, want %v", cfg.LogLevel, slog.LevelDebug)
	}
	if cfg.ShutdownTimeout != DefaultShutdownTimeout {
		t.Fatalf("ShutdownTimeout=%v, want %v", cfg.ShutdownTimeout, DefaultShutdownTimeout)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("expected AllowedOrigins empty, got %v", cfg.AllowedOrigins)
	}
	if len(cfg.ICEServers) != 0 {
		t.Fatalf("expected ICEServers empty, got %v", cfg.ICEServers)
	}
	if cfg.MaxSignalingMessageBytes != DefaultMaxSignalingMessageBytes {
		t.Fatalf("MaxSignalingMessageBytes=%d, want %d", cfg.MaxSignalingMessageBytes, int64(DefaultMaxSignalingMessageBytes))
	}
	if cfg.MaxSignalingMessagesPerSecond != DefaultMaxSignalingMessagesPerSecond {
		t.Fatalf("MaxSignalingMessagesPerSecond=%d, want %d", cfg.MaxSignalingMessagesPerSecond, DefaultMaxSignalingMessagesPerSecond)
	}
}

func TestDefaultsProdWhenModeFlagSet(t *testing.T) {
	cfg, err := load(noEnv, []string{"--mode", "prod"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeProd {
		t.Fatalf("mode=%q, want %q", cfg.Mode, ModeProd)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Fatalf("logFormat=%q, want %q", cfg.LogFormat, LogFormatJSON)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("logLevel=%v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
}

func TestModeEnvDrivesLogDefaults(t *testing.T) {
	cfg, err := load(lookupMap(map[string]string{
		envVarMode: "prod",
	}), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogFormat != LogFormatJSON {
		t.Fatalf("logFormat=%q, want %q", cfg.LogFormat, LogFormatJSON)
	}
}

func TestFlagOverridesEnv(t *testing.T) {
	cfg, err := load(lookupMap(map[string]string{
		envVarListenAddr: ":9999",
	}), []string{"--listen-addr", ":7777"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Fatalf("ListenAddr=%q, want %q", cfg.ListenAddr, ":7777")
	}
}

func TestShutdownTimeoutEnv(t *testing.T) {
	cfg, err := load(lookupMap(map[string]string{
		envVarShutdownTimeout: "3s",
	}), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("ShutdownTimeout=%v, want %v", cfg.ShutdownTimeout, 3*time.Second)
	}
}

func TestInvalidShutdownTimeoutEnv(t *testing.T) {
	_, err := load(lookupMap(map[string]string{
		envVarShutdownTimeout: "soon",
	}), nil)
	if err == nil {
		t.Fatalf("expected error for invalid shutdown timeout")
	}
}

func TestInvalidMode(t *testing.T) {
	_, err := load(noEnv, []string{"--mode", "staging"})
	if err == nil || !strings.Contains(err.Error(), "invalid mode") {
		t.Fatalf("expected invalid mode error, got %v", err)
	}
}

func TestAllowedOrigins(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "https://example.com", want: []string{"https://example.com"}},
		{name: "multiple with spaces", raw: " https://a.example.com , http://b.example.com:8080 ", want: []string{"https://a.example.com", "http://b.example.com:8080"}},
		{name: "wildcard", raw: "*", want: []string{"*"}},
		{name: "case normalized host", raw: "https://EXAMPLE.com", want: []string{"https://example.com"}},
		{name: "bare host rejected", raw: "example.com", wantErr: true},
		{name: "path rejected", raw: "https://example.com/app", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAllowedOrigins(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAllowedOrigins: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMaxSignalingMessageBytesMustBePositive(t *testing.T) {
	_, err := load(lookupMap(map[string]string{
		envVarMaxSignalingMessageBytes: "0",
	}), nil)
	if err == nil {
		t.Fatalf("expected error for zero message size limit")
	}
}

func TestMaxSignalingMessagesPerSecondEnvOverride(t *testing.T) {
	cfg, err := load(lookupMap(map[string]string{
		envVarMaxSignalingMessagesPerSecond: "10",
	}), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxSignalingMessagesPerSecond != 10 {
		t.Fatalf("MaxSignalingMessagesPerSecond=%d, want 10", cfg.MaxSignalingMessagesPerSecond)
	}
}

func TestNewLoggerRejectsUnknownFormat(t *testing.T) {
	_, err := NewLogger(Config{LogFormat: "yaml"})
	if err == nil {
		t.Fatalf("expected error for unsupported log format")
	}
}
