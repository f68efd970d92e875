// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	LicenseKey     string   `mapstructure:"license_key"`
	PrivateKey     string   `mapstructure:"private_key"`
	RPCList        []string `mapstructure:"rpc_list"`
	APIBaseURL     string   `mapstructure:"api_base_url"`
	APIKey         string   `mapstructure:"api_key"`
	PostgresURL    string   `mapstructure:"postgres_url"`
	MetricsAddr    string   `mapstructure:"metrics_addr"`
	ReportDir      string   `mapstructure:"report_dir"`
	LogLevel       string   `mapstructure:"log_level"`
	LogFile        string   `mapstructure:"log_file"`
	ConfirmTimeout int      `mapstructure:"confirm_timeout"`
	PollDelay      int      `mapstructure:"poll_delay"`
	SendRetries    int      `mapstructure:"send_retries"`
	RPCRateLimit   int      `mapstructure:"rpc_rate_limit"`
	DefaultBuySOL  float64  `mapstructure:"default_buy_sol"`

	// Keygen.sh credentials, optional; built-in defaults apply.
	KeygenAccountID    string `mapstructure:"keygen_account_id"`
	KeygenProductToken string `mapstructure:"keygen_product_token"`
	KeygenProductID    string `mapstructure:"keygen_product_id"`
}

const (
	// ConfirmTimeout is in seconds, PollDelay in milliseconds.
	DefaultConfirmTimeout = 30
	DefaultPollDelay      = 500
	DefaultSendRetries    = 3
	DefaultRPCRateLimit   = 10
	DefaultReportDir      = "reports"
	DefaultLogLevel       = "info"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"confirm_timeout": DefaultConfirmTimeout,
		"poll_delay":      DefaultPollDelay,
		"send_retries":    DefaultSendRetries,
		"rpc_rate_limit":  DefaultRPCRateLimit,
		"report_dir":      DefaultReportDir,
		"log_level":       DefaultLogLevel,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.PrivateKey == "" {
		return errors.New("missing private_key in configuration")
	}
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if cfg.APIBaseURL == "" {
		return errors.New("missing api_base_url in configuration")
	}
	if err := validateURLWithCache(cfg.APIBaseURL, "http"); err != nil {
		return errors.New("invalid API base URL protocol")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.ConfirmTimeout <= 0 {
		return errors.New("invalid confirm_timeout")
	}
	if cfg.PollDelay <= 0 {
		return errors.New("invalid poll_delay")
	}
	if cfg.SendRetries < 0 {
		return errors.New("invalid send_retries count")
	}
	if cfg.RPCRateLimit <= 0 {
		return errors.New("invalid rpc_rate_limit")
	}
	if cfg.DefaultBuySOL < 0 {
		return errors.New("invalid default_buy_sol")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCHPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envKey := v.GetString("PRIVATE_KEY"); envKey != "" {
		cfg.PrivateKey = envKey
	}
	if envKey := v.GetString("API_KEY"); envKey != "" {
		cfg.APIKey = envKey
	}
	if envKey := v.GetString("LICENSE_KEY"); envKey != "" {
		cfg.LicenseKey = envKey
	}
	if envURL := v.GetString("POSTGRES_URL"); envURL != "" {
		cfg.PostgresURL = envURL
	}

	envRPCList := v.GetString("RPC_LIST")
	if envRPCList != "" {
		rpcs := strings.Split(envRPCList, ",")
		var cleanRPCs []string
		for _, rpc := range rpcs {
			clean := strings.TrimSpace(rpc)
			if clean != "" {
				cleanRPCs = append(cleanRPCs, clean)
			}
		}
		if len(cleanRPCs) > 0 {
			cfg.RPCList = cleanRPCs
		}
	}
	return nil
}
