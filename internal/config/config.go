// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cosmossdk.io/math"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/woofpad/internal/launchpad"
	"github.com/rovshanmuradov/woofpad/internal/utils/logger"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     logger.Config `mapstructure:"log"`
	Events  EventsConfig  `mapstructure:"events"`
	AMM     AMMConfig     `mapstructure:"amm"`
	Genesis GenesisConfig `mapstructure:"genesis"`
	Client  ClientConfig  `mapstructure:"client"`
	Journal JournalConfig `mapstructure:"journal"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

type AMMConfig struct {
	// FeeBps is charged on swap input by the in-process secondary venue.
	FeeBps uint64 `mapstructure:"fee_bps"`
	// AddressPrefix is used by the local token factory.
	AddressPrefix string `mapstructure:"address_prefix"`
}

// GenesisConfig is the initial engine config. Amounts and rates are strings
// so no float ever reaches the engine.
type GenesisConfig struct {
	Owner                 string `mapstructure:"owner"`
	TokenFactory          string `mapstructure:"token_factory"`
	FeeCollector          string `mapstructure:"fee_collector"`
	MakerFee              string `mapstructure:"maker_fee"`
	TakerFee              string `mapstructure:"taker_fee"`
	QuoteTokenTotalSupply string `mapstructure:"quote_token_total_supply"`
	BondingCurveSupply    string `mapstructure:"bonding_curve_supply"`
	LPSupply              string `mapstructure:"lp_supply"`
	SecondaryAMMAddress   string `mapstructure:"secondary_amm_address"`
	BaseTokenDenom        string `mapstructure:"base_token_denom"`
	Enabled               bool   `mapstructure:"enabled"`
}

// JournalConfig enables the CSV trade journal when File is set.
type JournalConfig struct {
	File          string        `mapstructure:"file"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type ClientConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Retries  int           `mapstructure:"retries"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

const (
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultBufferSize      = 256
	DefaultRetries         = 3
	DefaultClientTimeout   = 10 * time.Second
)

func setDefaults(v *viper.Viper) {
	defaults := map[string]interface{}{
		"server.addr":                      DefaultAddr,
		"server.read_timeout":              DefaultReadTimeout,
		"server.write_timeout":             DefaultWriteTimeout,
		"server.shutdown_timeout":          DefaultShutdownTimeout,
		"log.level":                        "info",
		"log.max_size":                     100,
		"log.max_age":                      7,
		"log.max_backups":                  3,
		"events.buffer_size":               DefaultBufferSize,
		"amm.fee_bps":                      30,
		"amm.address_prefix":               "woof",
		"genesis.maker_fee":                "0.001",
		"genesis.taker_fee":                "0.002",
		"genesis.quote_token_total_supply": "1000000000000000",
		"genesis.bonding_curve_supply":     "800000000000000",
		"genesis.lp_supply":                "200000000000000",
		"genesis.base_token_denom":         "uhuahua",
		"genesis.enabled":                  true,
		"client.endpoint":                  "http://localhost:8080",
		"client.retries":                   DefaultRetries,
		"client.timeout":                   DefaultClientTimeout,
		"journal.flush_interval":           time.Second,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// LoadConfig reads the YAML file at path, applies defaults and overlays
// WOOFPAD_* environment variables. An empty path uses defaults and the
// environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	loadEnvironmentVariables(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, validateConfig(&cfg)
}

func loadEnvironmentVariables(v *viper.Viper) {
	v.SetEnvPrefix("WOOFPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return errors.New("server.addr is empty")
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		return errors.New("invalid server timeouts")
	}
	if cfg.Events.BufferSize <= 0 {
		return errors.New("invalid events.buffer_size")
	}
	if cfg.AMM.FeeBps >= 10_000 {
		return errors.New("amm.fee_bps must be below 10000")
	}
	if cfg.Journal.File != "" && cfg.Journal.FlushInterval <= 0 {
		return errors.New("invalid journal.flush_interval")
	}
	if cfg.Client.Retries < 0 {
		return errors.New("invalid client.retries")
	}
	if cfg.Client.Endpoint != "" {
		if err := validateURL(cfg.Client.Endpoint, "http"); err != nil {
			return errors.New("client.endpoint must be an http(s) URL")
		}
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}

// EngineConfig converts the genesis section and validates it the way the
// engine will.
func (g GenesisConfig) EngineConfig() (launchpad.Config, error) {
	makerFee, err := math.LegacyNewDecFromStr(g.MakerFee)
	if err != nil {
		return launchpad.Config{}, fmt.Errorf("genesis.maker_fee: %w", err)
	}
	takerFee, err := math.LegacyNewDecFromStr(g.TakerFee)
	if err != nil {
		return launchpad.Config{}, fmt.Errorf("genesis.taker_fee: %w", err)
	}
	supplies := make([]math.Int, 3)
	for i, f := range []struct{ name, value string }{
		{"quote_token_total_supply", g.QuoteTokenTotalSupply},
		{"bonding_curve_supply", g.BondingCurveSupply},
		{"lp_supply", g.LPSupply},
	} {
		n, ok := math.NewIntFromString(f.value)
		if !ok {
			return launchpad.Config{}, fmt.Errorf("genesis.%s: invalid integer %q", f.name, f.value)
		}
		supplies[i] = n
	}

	cfg := launchpad.Config{
		Owner:                 g.Owner,
		TokenFactory:          g.TokenFactory,
		FeeCollector:          g.FeeCollector,
		MakerFee:              makerFee,
		TakerFee:              takerFee,
		QuoteTokenTotalSupply: supplies[0],
		BondingCurveSupply:    supplies[1],
		LPSupply:              supplies[2],
		SecondaryAMMAddress:   g.SecondaryAMMAddress,
		BaseTokenDenom:        g.BaseTokenDenom,
		Enabled:               g.Enabled,
	}
	if err := cfg.Validate(); err != nil {
		return launchpad.Config{}, fmt.Errorf("genesis: %w", err)
	}
	return cfg, nil
}
