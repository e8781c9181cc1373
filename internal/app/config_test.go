package app

import (
	"os"
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		defValue string
		want     string
	}{
		{
			name:     "env set",
			envKey:   "TEST_ENV_VAR",
			envValue: "custom_value",
			defValue: "default",
			want:     "custom_value",
		},
		{
			name:     "env not set",
			envKey:   "TEST_ENV_VAR_NOTSET",
			envValue: "",
			defValue: "default",
			want:     "default",
		},
		{
			name:     "empty default",
			envKey:   "TEST_ENV_VAR_EMPTY",
			envValue: "",
			defValue: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.envKey, tt.envValue)
				defer os.Unsetenv(tt.envKey)
			}

			got := getenv(tt.envKey, tt.defValue)
			if got != tt.want {
				t.Errorf("getenv(%q, %q) = %q, want %q", tt.envKey, tt.defValue, got, tt.want)
			}
		})
	}
}

func TestGetenvFloat(t *testing.T) {
	t.Run("not set", func(t *testing.T) {
		if got := getenvFloat("TEST_FLOAT_NOTSET", -1); got != -1 {
			t.Errorf("getenvFloat() = %v, want -1", got)
		}
	})

	t.Run("valid", func(t *testing.T) {
		os.Setenv("TEST_FLOAT_VALID", "0.8")
		defer os.Unsetenv("TEST_FLOAT_VALID")
		if got := getenvFloat("TEST_FLOAT_VALID", -1); got != 0.8 {
			t.Errorf("getenvFloat() = %v, want 0.8", got)
		}
	})

	t.Run("garbage falls back", func(t *testing.T) {
		os.Setenv("TEST_FLOAT_BAD", "not-a-number")
		defer os.Unsetenv("TEST_FLOAT_BAD")
		if got := getenvFloat("TEST_FLOAT_BAD", -1); got != -1 {
			t.Errorf("getenvFloat() = %v, want -1", got)
		}
	})
}

func TestLoadConfigFromEnv_Defaults(t *testing.T) {
	cfg := LoadConfigFromEnv()

	if cfg.HTTPAddr == "" {
		t.Error("HTTPAddr should have a default")
	}
	if cfg.OpenAIModel == "" {
		t.Error("OpenAIModel should have a default")
	}
	if cfg.JWTExpiry <= 0 {
		t.Errorf("JWTExpiry = %v, want positive", cfg.JWTExpiry)
	}
}

func TestLoadConfigFromEnv_JWTExpiry(t *testing.T) {
	os.Setenv("JWT_EXPIRY", "2h")
	defer os.Unsetenv("JWT_EXPIRY")

	cfg := LoadConfigFromEnv()
	if cfg.JWTExpiry != 2*time.Hour {
		t.Errorf("JWTExpiry = %v, want 2h", cfg.JWTExpiry)
	}

	os.Setenv("JWT_EXPIRY", "bogus")
	cfg = LoadConfigFromEnv()
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %v, want 24h fallback for bogus value", cfg.JWTExpiry)
	}
}
