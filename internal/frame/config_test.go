package frame

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxLen != 16384 {
		t.Fatalf("MaxLen = %d, want 16384", cfg.MaxLen)
	}
	if cfg.MinLen != 3 {
		t.Fatalf("MinLen = %d, want 3", cfg.MinLen)
	}
	if cfg.Lenient {
		t.Fatal("default config is lenient")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"zero max", Config{MaxLen: 0, MinLen: 1}, false},
		{"huge max", Config{MaxLen: maxAllowedLen + 1, MinLen: 1}, false},
		{"strict zero min", Config{MaxLen: 10, MinLen: 0}, false},
		{"min above max", Config{MaxLen: 10, MinLen: 11}, false},
		{"negative timeout", Config{MaxLen: 10, MinLen: 1, ReadTimeout: -time.Second}, false},
		{"lenient zero min", Config{MaxLen: 10, Lenient: true}, true},
		{"equal bounds", Config{MaxLen: 3, MinLen: 3}, true},
	}

	for _, tt := range tests {
		err := tt.cfg.Validate()
		if tt.ok && err != nil {
			t.Fatalf("%s: Validate() = %v, want nil", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrConfig) {
			t.Fatalf("%s: Validate() = %v, want ErrConfig", tt.name, err)
		}
	}
}

func TestNewDecoderRejectsConfig(t *testing.T) {
	if _, err := NewDecoder(Config{}); !errors.Is(err, ErrConfig) {
		t.Fatalf("NewDecoder(Config{}) = %v, want ErrConfig", err)
	}
}

func TestBufferSize(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.bufferSize(10); got != 11 {
		t.Fatalf("strict bufferSize(10) = %d, want 11", got)
	}
	cfg.Lenient = true
	if got := cfg.bufferSize(10); got != 10 {
		t.Fatalf("lenient bufferSize(10) = %d, want 10", got)
	}
}
