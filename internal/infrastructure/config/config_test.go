package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "standard postgres configuration",
			cfg: DatabaseConfig{
				Driver:   "postgres",
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "testpass",
				Database: "testdb",
				SSLMode:  "disable",
			},
			want: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable",
		},
		{
			name: "production postgres configuration",
			cfg: DatabaseConfig{
				Driver:   "postgres",
				Host:     "db.example.com",
				Port:     5433,
				User:     "produser",
				Password: "securepass123",
				Database: "proddb",
				SSLMode:  "require",
			},
			want: "host=db.example.com port=5433 user=produser password=securepass123 dbname=proddb sslmode=require",
		},
		{
			name: "sqlite configuration",
			cfg: DatabaseConfig{
				Driver: "sqlite3",
				Path:   "/var/lib/torii/torii.db",
			},
			want: "file:/var/lib/torii/torii.db?_foreign_keys=on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ConnectionString(); got != tt.want {
				t.Errorf("DatabaseConfig.ConnectionString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitConfig(t *testing.T) {
	// Save original working directory
	originalWd, _ := os.Getwd()
	defer os.Chdir(originalWd)

	tests := []struct {
		name    string
		env     string
		wantErr bool
	}{
		{
			name:    "default dev environment",
			env:     "",
			wantErr: false,
		},
		{
			name:    "explicit dev environment",
			env:     "dev",
			wantErr: false,
		},
		{
			name:    "test environment",
			env:     "test",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			err := InitConfig(tt.env)
			if (err != nil) != tt.wantErr {
				t.Errorf("InitConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			// Verify default values are set
			if !tt.wantErr {
				if viper.GetString("SERVER_HOST") != "0.0.0.0" {
					t.Errorf("InitConfig() SERVER_HOST = %v, want 0.0.0.0", viper.GetString("SERVER_HOST"))
				}
				if viper.GetInt("SERVER_PORT") != 8080 {
					t.Errorf("InitConfig() SERVER_PORT = %v, want 8080", viper.GetInt("SERVER_PORT"))
				}
				if viper.GetString("DB_DRIVER") != "postgres" {
					t.Errorf("InitConfig() DB_DRIVER = %v, want postgres", viper.GetString("DB_DRIVER"))
				}
				if viper.GetString("DB_HOST") != "localhost" {
					t.Errorf("InitConfig() DB_HOST = %v, want localhost", viper.GetString("DB_HOST"))
				}
				if viper.GetString("DB_SSLMODE") != "disable" {
					t.Errorf("InitConfig() DB_SSLMODE = %v, want disable", viper.GetString("DB_SSLMODE"))
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func()
		wantErr     bool
		wantErrMsg  string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "successful load with password",
			setupEnv: func() {
				viper.Reset()
				viper.Set("DB_PASSWORD", "testpassword")
				viper.SetDefault("SERVER_HOST", "0.0.0.0")
				viper.SetDefault("SERVER_PORT", 8080)
				viper.SetDefault("DB_DRIVER", "postgres")
				viper.SetDefault("DB_HOST", "localhost")
				viper.SetDefault("DB_PORT", 15432)
				viper.SetDefault("DB_USER", "torii")
				viper.SetDefault("DB_NAME", "torii_dev")
				viper.SetDefault("DB_SSLMODE", "disable")
			},
			wantErr: false,
			validateCfg: func(t *testing.T, cfg *Config) {
				if cfg.Server.Host != "0.0.0.0" {
					t.Errorf("Load() Server.Host = %v, want 0.0.0.0", cfg.Server.Host)
				}
				if cfg.Database.Driver != "postgres" {
					t.Errorf("Load() Database.Driver = %v, want postgres", cfg.Database.Driver)
				}
				if cfg.Database.User != "torii" {
					t.Errorf("Load() Database.User = %v, want torii", cfg.Database.User)
				}
				if cfg.Database.Password != "testpassword" {
					t.Errorf("Load() Database.Password = %v, want testpassword", cfg.Database.Password)
				}
				if cfg.Database.Database != "torii_dev" {
					t.Errorf("Load() Database.Database = %v, want torii_dev", cfg.Database.Database)
				}
			},
		},
		{
			name: "missing password for postgres",
			setupEnv: func() {
				viper.Reset()
				viper.SetDefault("DB_DRIVER", "postgres")
				viper.SetDefault("SERVER_HOST", "0.0.0.0")
				viper.SetDefault("SERVER_PORT", 8080)
			},
			wantErr:    true,
			wantErrMsg: "DB_PASSWORD is required (set via environment variable or .env file)",
		},
		{
			name: "sqlite needs no password",
			setupEnv: func() {
				viper.Reset()
				viper.SetDefault("DB_DRIVER", "sqlite3")
				viper.SetDefault("DB_PATH", "torii.db")
			},
			wantErr: false,
			validateCfg: func(t *testing.T, cfg *Config) {
				if cfg.Database.Driver != "sqlite3" {
					t.Errorf("Load() Database.Driver = %v, want sqlite3", cfg.Database.Driver)
				}
				if cfg.Database.Path != "torii.db" {
					t.Errorf("Load() Database.Path = %v, want torii.db", cfg.Database.Path)
				}
			},
		},
		{
			name: "custom server config",
			setupEnv: func() {
				viper.Reset()
				viper.Set("DB_PASSWORD", "pass123")
				viper.Set("SERVER_HOST", "custom.host")
				viper.Set("SERVER_PORT", 9000)
				viper.SetDefault("DB_DRIVER", "postgres")
			},
			wantErr: false,
			validateCfg: func(t *testing.T, cfg *Config) {
				if cfg.Server.Host != "custom.host" {
					t.Errorf("Load() Server.Host = %v, want custom.host", cfg.Server.Host)
				}
				if cfg.Server.Port != 9000 {
					t.Errorf("Load() Server.Port = %v, want 9000", cfg.Server.Port)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()
			defer viper.Reset()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if err.Error() != tt.wantErrMsg {
					t.Errorf("Load() error = %v, want %v", err.Error(), tt.wantErrMsg)
				}
				return
			}

			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	// Save original working directory
	originalWd, _ := os.Getwd()
	defer os.Chdir(originalWd)

	// This test assumes we're running from within the project
	root, err := findProjectRoot()
	if err != nil {
		t.Errorf("findProjectRoot() error = %v, want nil", err)
		return
	}

	// Verify go.mod exists in the returned root
	goModPath := root + "/go.mod"
	if _, err := os.Stat(goModPath); os.IsNotExist(err) {
		t.Errorf("findProjectRoot() returned %v, but go.mod does not exist at %v", root, goModPath)
	}
}
