// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("IP_HASH_SALT", "test-salt")
	t.Setenv("PUBLIC_BASE_URL", "https://surveys.example.com")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.BaseURL != "https://surveys.example.com" {
		t.Errorf("expected base url from env, got %s", cfg.BaseURL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("PUBLIC_BASE_URL", "")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-jwt-secret", "s1", "-ip-salt", "s2"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("expected base url from port, got %s", cfg.BaseURL)
	}
}

func TestParseFlags_MissingSecrets(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no database", []string{"-jwt-secret", "s1", "-ip-salt", "s2"}},
		{"no jwt secret", []string{"-d", "file:test.db", "-ip-salt", "s2"}},
		{"no ip salt", []string{"-d", "file:test.db", "-jwt-secret", "s1"}},
		{"bad database type", []string{"-d", "x", "-t", "mysql", "-jwt-secret", "s1", "-ip-salt", "s2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("JWT_SECRET", "")
			t.Setenv("IP_HASH_SALT", "")

			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("loads values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("QS_DOTENV_PROBE=loaded\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("QS_DOTENV_PROBE", "")
		os.Unsetenv("QS_DOTENV_PROBE")

		if err := LoadDotEnv(path); err != nil {
			t.Fatal(err)
		}
		if got := os.Getenv("QS_DOTENV_PROBE"); got != "loaded" {
			t.Errorf("expected loaded, got %q", got)
		}
	})
}
