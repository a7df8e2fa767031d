package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("LUMINA_TEST_NAME", "from-env")
	path := writeFile(t, "name: ${LUMINA_TEST_NAME}\n")

	cfg := sample{Port: 9000}
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("name = %q, want from-env", cfg.Name)
	}
	if cfg.Port != 9000 {
		t.Errorf("port = %d, want default 9000", cfg.Port)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	cfg := sample{}
	if err := Load(path, &cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "port: [unterminated\n")
	cfg := sample{Port: 1}
	if err := Load(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadOptional(t *testing.T) {
	tests := []struct {
		name       string
		file       func(t *testing.T) string
		start      sample
		wantLoaded bool
		wantErr    bool
		wantPort   int
	}{
		{
			name:     "missing file keeps defaults",
			file:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			start:    sample{Port: 8080},
			wantPort: 8080,
		},
		{
			name:     "empty name keeps defaults",
			file:     func(*testing.T) string { return "" },
			start:    sample{Port: 8080},
			wantPort: 8080,
		},
		{
			name:    "missing file still validates",
			file:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			start:   sample{},
			wantErr: true,
		},
		{
			name:       "present file overrides",
			file:       func(t *testing.T) string { return writeFile(t, "port: 9999\n") },
			start:      sample{Port: 8080},
			wantLoaded: true,
			wantPort:   9999,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.start
			loaded, err := LoadOptional(tt.file(t), &cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if loaded != tt.wantLoaded {
				t.Errorf("loaded = %v, want %v", loaded, tt.wantLoaded)
			}
			if cfg.Port != tt.wantPort {
				t.Errorf("port = %d, want %d", cfg.Port, tt.wantPort)
			}
		})
	}
}
