// Package config loads and validates the engine's JSON configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"triarb/pkg/cryptoutil"
)

// Keys holds the exchange API credentials. Secret is kept encrypted in
// process memory via cryptoutil.SecretString so it never appears
// unredacted in a panic dump or a log field.
type Keys struct {
	API    string
	Secret *cryptoutil.SecretString
}

// Investment bounds the base-asset quantity the optimizer's grid search is
// allowed to try for the first leg of a cycle.
type Investment struct {
	Base string
	Min  float64
	Max  float64
	Step float64
}

// Trading controls the fee model and the profit/age acceptance gate.
type Trading struct {
	TakerFee           float64
	AgeThresholdMs     float64
	ProfitThresholdPct float64
	Enabled            bool
	ExecutionCap       int64
}

// Depth sizes the order-book depth requested from the exchange per symbol.
type Depth struct {
	Size int
}

// Telegram retains the notification-channel credentials the external
// interface reserves, even though no component implements Telegram's API
// directly — a WebhookNotifier can relay to a bridge that does.
type Telegram struct {
	Token  string
	UserID int64
}

// Pools sizes the fixed worker pools.
type Pools struct {
	SocketWorkers  int
	DepthWorkers   int
	ComputeWorkers int
}

// Server configures the HTTP observability surface.
type Server struct {
	Host string
	Port int
}

// Logging configures the structured logger.
type Logging struct {
	Level  string
	Format string
}

// Config mirrors the JSON configuration file's top-level document shape.
type Config struct {
	Keys       Keys
	Investment Investment
	Trading    Trading
	Depth      Depth
	Telegram   Telegram
	Pools      Pools
	Server     Server
	Logging    Logging
}

// rawConfig shadows Config with the JSON wire tags and a plain-string
// secret, so decoding happens before the secret is ever wrapped.
type rawConfig struct {
	Keys struct {
		API    string `json:"api"`
		Secret string `json:"secret"`
	} `json:"keys"`
	Investment struct {
		Base string  `json:"base"`
		Min  float64 `json:"min"`
		Max  float64 `json:"max"`
		Step float64 `json:"step"`
	} `json:"investment"`
	Trading struct {
		TakerFee           float64 `json:"taker_fee"`
		AgeThresholdMs     float64 `json:"age_threshold_ms"`
		ProfitThresholdPct float64 `json:"profit_threshold_pct"`
		Enabled            bool    `json:"enabled"`
		ExecutionCap       int64   `json:"execution_cap"`
	} `json:"trading"`
	Depth struct {
		Size int `json:"size"`
	} `json:"depth"`
	Telegram struct {
		Token  string `json:"token"`
		UserID int64  `json:"user_id"`
	} `json:"telegram"`
	Pools struct {
		SocketWorkers  int `json:"socket_workers"`
		DepthWorkers   int `json:"depth_workers"`
		ComputeWorkers int `json:"compute_workers"`
	} `json:"pools"`
	Server struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	} `json:"server"`
	Logging struct {
		Level  string `json:"level"`
		Format string `json:"format"`
	} `json:"logging"`
}

// secretEncryptionKeyEnv names the environment variable holding the
// AES-256 key used to wrap keys.secret in memory. It is deliberately kept
// out of the JSON file: a key stored beside the secret it protects
// protects nothing.
const secretEncryptionKeyEnv = "TRIARB_SECRET_KEY"

// Load reads and validates the configuration file at path. Missing
// required fields are a fatal configuration error, so a bad configuration
// never lets the process start.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if raw.Investment.Base == "" {
		return nil, fmt.Errorf("config: investment.base is required")
	}
	if raw.Investment.Max < raw.Investment.Min {
		return nil, fmt.Errorf("config: investment.max (%v) must be >= investment.min (%v)", raw.Investment.Max, raw.Investment.Min)
	}
	if raw.Investment.Step <= 0 {
		return nil, fmt.Errorf("config: investment.step must be positive")
	}

	cfg := &Config{
		Keys: Keys{API: raw.Keys.API},
		Investment: Investment{
			Base: raw.Investment.Base,
			Min:  raw.Investment.Min,
			Max:  raw.Investment.Max,
			Step: raw.Investment.Step,
		},
		Trading: Trading{
			TakerFee:           raw.Trading.TakerFee,
			AgeThresholdMs:     raw.Trading.AgeThresholdMs,
			ProfitThresholdPct: raw.Trading.ProfitThresholdPct,
			Enabled:            raw.Trading.Enabled,
			ExecutionCap:       raw.Trading.ExecutionCap,
		},
		Depth:    Depth{Size: orDefaultInt(raw.Depth.Size, 10)},
		Telegram: Telegram{Token: raw.Telegram.Token, UserID: raw.Telegram.UserID},
		Pools: Pools{
			SocketWorkers:  orDefaultInt(raw.Pools.SocketWorkers, 8),
			DepthWorkers:   orDefaultInt(raw.Pools.DepthWorkers, 2),
			ComputeWorkers: orDefaultInt(raw.Pools.ComputeWorkers, 6),
		},
		Server: Server{
			Host: orDefaultString(raw.Server.Host, "0.0.0.0"),
			Port: orDefaultInt(raw.Server.Port, 8080),
		},
		Logging: Logging{
			Level:  orDefaultString(raw.Logging.Level, "info"),
			Format: orDefaultString(raw.Logging.Format, "json"),
		},
	}

	if raw.Keys.Secret != "" {
		key := []byte(os.Getenv(secretEncryptionKeyEnv))
		if len(key) != 32 {
			return nil, fmt.Errorf("config: %s must be set to a 32-byte key to hold keys.secret", secretEncryptionKeyEnv)
		}
		secret, err := cryptoutil.NewSecretString(raw.Keys.Secret, key)
		if err != nil {
			return nil, fmt.Errorf("config: encrypt keys.secret: %w", err)
		}
		cfg.Keys.Secret = secret
	}

	return cfg, nil
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
