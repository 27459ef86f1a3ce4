package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func projectConfigPath(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(projectConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	// Test basic config fields
	if cfg.Title == "" {
		t.Error("Config.Title should not be empty")
	}

	if cfg.Webserver.Port == 0 {
		t.Error("Webserver.Port should not be 0")
	}

	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should not be empty")
	}

	if cfg.Webserver.Session.ExpiryTime != 12*time.Hour {
		t.Errorf("Webserver.Session.ExpiryTime = %v, want 12h", cfg.Webserver.Session.ExpiryTime)
	}

	// Test DB config
	if cfg.DB.Host == "" {
		t.Error("DB.Host should not be empty")
	}

	if cfg.DB.GormEngine != GormEngineMySQL {
		t.Errorf("DB.GormEngine = %q, want %q", cfg.DB.GormEngine, GormEngineMySQL)
	}
}

func TestAccessSettings(t *testing.T) {
	cfg, err := ReadConfig(projectConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if !cfg.Access.EventsViewableByAllRoles {
		t.Error("Access.EventsViewableByAllRoles should default to true in etc/main.toml")
	}

	if !cfg.Access.EngineOptions().EventsViewableByAllRoles {
		t.Error("EngineOptions() should carry EventsViewableByAllRoles")
	}

	want := []string{"Chorale", "Intercession", "Accueil", "Médias", "DLB", "DCC", "DFF"}
	if strings.Join(cfg.Access.DefaultDepartments, ",") != strings.Join(want, ",") {
		t.Errorf("Access.DefaultDepartments = %v, want %v", cfg.Access.DefaultDepartments, want)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		wantErr    error
		wantEngine string
	}{
		{
			name: "valid config",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
			},
			wantEngine: GormEngineMySQL,
		},
		{
			name: "sqlite engine",
			config: Config{
				DB: DB{GormEngine: GormEngineSQLite},
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
			},
			wantEngine: GormEngineSQLite,
		},
		{
			name: "missing port",
			config: Config{
				Webserver: Webserver{
					Port: 0,
					URL:  "http://localhost:8080",
				},
			},
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name: "missing URL",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "",
				},
			},
			wantErr: ErrEmptyURL,
		},
		{
			name: "unknown engine",
			config: Config{
				DB: DB{GormEngine: "oracle"},
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
			},
			wantErr: ErrUnknownGormEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				return
			}

			if tt.config.DB.GormEngine != tt.wantEngine {
				t.Errorf("DB.GormEngine = %q, want %q", tt.config.DB.GormEngine, tt.wantEngine)
			}

			if tt.config.Webserver.ShutDownTime != defaultShutDownTime {
				t.Errorf("Webserver.ShutDownTime = %d, want %d", tt.config.Webserver.ShutDownTime, defaultShutDownTime)
			}
		})
	}
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	// Set JSON override environment variable
	jsonOverride := `{"Title":"Test Override","Webserver":{"Port":9090},"Access":{"EventsViewableByAllRoles":false}}`
	t.Setenv(EnvConfigJSON, jsonOverride)

	cfg, err := ReadConfig(projectConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title != "Test Override" {
		t.Errorf("Title = %v, want %v", cfg.Title, "Test Override")
	}

	if cfg.Webserver.Port != 9090 {
		t.Errorf("Webserver.Port = %v, want %v", cfg.Webserver.Port, 9090)
	}

	// fields missing in the override keep their file value
	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should be kept from main.toml")
	}

	if cfg.Access.EventsViewableByAllRoles {
		t.Error("Access.EventsViewableByAllRoles should be overridden to false")
	}
}

func TestReadConfigWithInvalidJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, "{")

	if _, err := ReadConfig(projectConfigPath(t)); err == nil {
		t.Fatal("ReadConfig() expected error for invalid json override")
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
		Access: Access{
			EventsViewableByAllRoles: true,
			DefaultDepartments:       []string{"Accueil"},
		},
	}

	tomlStr, err := DumpConfig(&cfg)
	if err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}

	if tomlStr == "" {
		t.Error("DumpConfig() returned empty string")
	}

	// Check if output contains expected values
	if !strings.Contains(tomlStr, "Test") {
		t.Error("DumpConfig() output should contain Title")
	}

	if !strings.Contains(tomlStr, "Accueil") {
		t.Error("DumpConfig() output should contain DefaultDepartments")
	}
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title:   "Test",
		DevMode: true,
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	jsonStr, err := DumpConfigJSON(&cfg)
	if err != nil {
		t.Fatalf("DumpConfigJSON() error = %v", err)
	}

	if jsonStr == "" {
		t.Error("DumpConfigJSON() returned empty string")
	}

	// Check if output is valid JSON by checking for expected fields
	if !strings.Contains(jsonStr, "Test") {
		t.Error("DumpConfigJSON() output should contain Title")
	}
}
