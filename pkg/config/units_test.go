package config

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"10s", 10 * time.Second, false},
		{"1.5h", 90 * time.Minute, false},
		{"30d", 30 * Day, false},
		{"1w", Week, false},
		{"2d2h", 50 * time.Hour, false},
		{"", 0, false},
		{"1x", 0, true},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseDistance(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"100m", 100, false},
		{"1.5km", 1500, false},
		{"1nm", 1852, false},
		{"1ft", 0.3048, false},
		{"500", 500, false},
		{" 25 km ", 25000, false},
		{"10x", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDistance(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDistance(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDistance(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestYAMLUnits(t *testing.T) {
	type testConfig struct {
		Time   Duration `yaml:"time"`
		Dist   Distance `yaml:"dist"`
		Height Distance `yaml:"height"`
	}

	var cfg testConfig
	if err := yaml.Unmarshal([]byte("time: 2d\ndist: 5km\nheight: 12.5\n"), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if time.Duration(cfg.Time) != 48*time.Hour {
		t.Errorf("Expected 48h, got %v", time.Duration(cfg.Time))
	}
	if cfg.Dist.Meters() != 5000 {
		t.Errorf("Expected 5000m, got %v", cfg.Dist)
	}
	if cfg.Height != 12.5 {
		t.Errorf("Expected bare number as metres, got %v", cfg.Height)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), "dist: 5000m") {
		t.Errorf("unexpected distance encoding:\n%s", out)
	}

	var back testConfig
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-Unmarshal failed: %v", err)
	}
	if back != cfg {
		t.Errorf("round trip mismatch: %+v != %+v", back, cfg)
	}
}
