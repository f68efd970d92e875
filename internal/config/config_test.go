// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

var validConfigJSON = `{
    "private_key": "4fYNw3dojWmQ4dXtSGE3epjab8VqYKd7bYJ4yQUkF8sDnYtJWK3sJcoSqzRpvnUWrDLLp5Yxsf5aTbCcbijXAbXb",
    "rpc_list": [
        "https://api.mainnet-beta.solana.com",
        "https://solana-rpc.publicnode.com"
    ],
    "api_base_url": "https://api.launchpad.example.com",
    "api_key": "test-api-key",
    "confirm_timeout": 45,
    "log_level": "debug"
}`

var invalidConfigJSON = `{
    "private_key": "",
    "rpc_list": [],
    "api_base_url": ""
}`

func setupTestConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return configPath
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name:    "Valid config with defaults applied",
			content: validConfigJSON,
			wantErr: false,
			check: func(cfg *Config) bool {
				return len(cfg.RPCList) == 2 &&
					cfg.APIBaseURL == "https://api.launchpad.example.com" &&
					cfg.ConfirmTimeout == 45 &&
					cfg.PollDelay == DefaultPollDelay &&
					cfg.SendRetries == DefaultSendRetries &&
					cfg.ReportDir == DefaultReportDir &&
					cfg.LogLevel == "debug"
			},
		},
		{
			name:    "Invalid config - empty required fields",
			content: invalidConfigJSON,
			wantErr: true,
			check:   nil,
		},
		{
			name:    "Invalid JSON syntax",
			content: "{invalid json",
			wantErr: true,
			check:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := setupTestConfig(t, tt.content)

			cfg, err := LoadConfig(configPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && tt.check != nil {
				if !tt.check(cfg) {
					t.Error("LoadConfig() returned invalid configuration")
				}
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			PrivateKey:     "test-key",
			RPCList:        []string{"https://test-rpc.example.com"},
			APIBaseURL:     "https://api.example.com",
			ConfirmTimeout: 30,
			PollDelay:      500,
			SendRetries:    3,
			RPCRateLimit:   10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "Valid configuration",
			mutate:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name:    "Missing private key",
			mutate:  func(cfg *Config) { cfg.PrivateKey = "" },
			wantErr: true,
		},
		{
			name:    "Empty RPC list",
			mutate:  func(cfg *Config) { cfg.RPCList = nil },
			wantErr: true,
		},
		{
			name:    "RPC URL with bad scheme",
			mutate:  func(cfg *Config) { cfg.RPCList = []string{"ftp://rpc.example.com"} },
			wantErr: true,
		},
		{
			name:    "Missing API base URL",
			mutate:  func(cfg *Config) { cfg.APIBaseURL = "" },
			wantErr: true,
		},
		{
			name:    "Invalid confirm timeout",
			mutate:  func(cfg *Config) { cfg.ConfirmTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "Negative default buy",
			mutate:  func(cfg *Config) { cfg.DefaultBuySOL = -0.5 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("LAUNCHPILOT_PRIVATE_KEY", "env-private-key")
	t.Setenv("LAUNCHPILOT_RPC_LIST", "https://env-rpc1.example.com, https://env-rpc2.example.com")

	configJSON := `{
        "private_key": "file-private-key",
        "rpc_list": ["https://file-rpc.example.com"],
        "api_base_url": "https://api.example.com"
    }`

	configPath := setupTestConfig(t, configJSON)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.PrivateKey != "env-private-key" {
		t.Errorf("expected private key from environment, got %q", cfg.PrivateKey)
	}
	if len(cfg.RPCList) != 2 || cfg.RPCList[0] != "https://env-rpc1.example.com" {
		t.Errorf("expected RPC list from environment, got %v", cfg.RPCList)
	}
}
