package cliparse

import "testing"

func TestParseFlags(t *testing.T) {
	// Keep the environment out of the defaults
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("SCORING_CONFIG", "")
	t.Setenv("RATE_LIMIT", "")

	tests := []struct {
		name      string
		args      []string
		expectErr bool
		check     func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			args: []string{},
			check: func(t *testing.T, cfg Config) {
				if cfg.Port != 3510 {
					t.Errorf("Expected default port 3510, got %d", cfg.Port)
				}
				if cfg.DatabaseType != "sqlite" {
					t.Errorf("Expected default type sqlite, got %s", cfg.DatabaseType)
				}
				if cfg.DatabaseURL != "file:sankalp.db" {
					t.Errorf("Expected default sqlite URL, got %s", cfg.DatabaseURL)
				}
				if cfg.RatePerMin != 120 {
					t.Errorf("Expected default rate 120, got %d", cfg.RatePerMin)
				}
			},
		},
		{
			name: "explicit flags",
			args: []string{"-p", "8080", "-t", "postgres", "-d", "postgres://localhost/sankalp", "-rate", "30"},
			check: func(t *testing.T, cfg Config) {
				if cfg.Port != 8080 {
					t.Errorf("Expected port 8080, got %d", cfg.Port)
				}
				if cfg.DatabaseType != "postgres" {
					t.Errorf("Expected type postgres, got %s", cfg.DatabaseType)
				}
				if cfg.RatePerMin != 30 {
					t.Errorf("Expected rate 30, got %d", cfg.RatePerMin)
				}
			},
		},
		{
			name:      "postgres requires a URL",
			args:      []string{"-t", "postgres"},
			expectErr: true,
		},
		{
			name:      "unknown database type",
			args:      []string{"-t", "mongodb"},
			expectErr: true,
		},
		{
			name: "scoring path",
			args: []string{"-scoring", "/etc/sankalp/scoring.yaml"},
			check: func(t *testing.T, cfg Config) {
				if cfg.ScoringPath != "/etc/sankalp/scoring.yaml" {
					t.Errorf("Unexpected scoring path %s", cfg.ScoringPath)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseFlags(tt.args)
			if tt.expectErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestParseFlagsEnvFallback(t *testing.T) {
	t.Setenv("PORT", "9091")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/sankalp")
	t.Setenv("RATE_LIMIT", "45")
	t.Setenv("SCORING_CONFIG", "/etc/sankalp/scoring.yaml")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Port != 9091 {
		t.Errorf("Expected port 9091 from env, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("Expected type postgres from env, got %s", cfg.DatabaseType)
	}
	if cfg.RatePerMin != 45 {
		t.Errorf("Expected rate 45 from env, got %d", cfg.RatePerMin)
	}
	if cfg.ScoringPath != "/etc/sankalp/scoring.yaml" {
		t.Errorf("Unexpected scoring path %s", cfg.ScoringPath)
	}

	// Flags still win over env
	cfg, err = ParseFlags([]string{"-p", "8088"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Port != 8088 {
		t.Errorf("Expected flag to beat env, got port %d", cfg.Port)
	}
}

func TestParseFlagsBadEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("RATE_LIMIT", "")

	t.Setenv("PORT", "not-a-number")
	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("Expected error for bad PORT env")
	}

	t.Setenv("PORT", "")
	t.Setenv("RATE_LIMIT", "fast")
	if _, err := ParseFlags([]string{}); err == nil {
		t.Error("Expected error for bad RATE_LIMIT env")
	}
}
