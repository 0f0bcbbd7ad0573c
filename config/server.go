package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultListenAddr        = "0.0.0.0:3000"
	DefaultSettlementTimeout = 2 * time.Minute
)

// Server is the process level configuration of the HTTP service.
type Server struct {
	ListenAddr        string        `mapstructure:"listen"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"`
	SettlementTimeout time.Duration `mapstructure:"settlement_timeout"`
	ReceiptStore      string        `mapstructure:"receipt_store"`
	ReceiptPath       string        `mapstructure:"receipt_path"`
}

// SetDefaults registers the defaults and the VOTING_* environment binding.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen", DefaultListenAddr)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("settlement_timeout", DefaultSettlementTimeout)
	v.SetDefault("receipt_store", "memory")
	v.SetDefault("receipt_path", "data/receipts")

	v.SetEnvPrefix("VOTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// LoadServer reads the optional config file into v and decodes the result.
func LoadServer(v *viper.Viper, configFile string) (*Server, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Server) Validate() error {
	if s.ListenAddr == "" {
		return &ConfigError{Field: "listen", Err: ErrMissing}
	}
	if s.SettlementTimeout <= 0 {
		return &ConfigError{Field: "settlement_timeout", Err: ErrMalformed}
	}
	switch s.ReceiptStore {
	case "memory":
	case "json", "badger":
		if s.ReceiptPath == "" {
			return &ConfigError{Field: "receipt_path", Err: ErrMissing}
		}
	default:
		return &ConfigError{Field: "receipt_store", Err: ErrMalformed}
	}
	return nil
}
