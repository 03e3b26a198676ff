package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "RANGECTL"

// PlanConfig holds configuration for the plan command.
type PlanConfig struct {
	RPCURL       string
	Pool         string
	Factory      string
	InitCodeHash string
	Amount0      string
	Amount1      string
	Width        uint32
	Payer        string
	Recipient    string
	Spender      string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// SimulateConfig holds configuration for the simulate command.
type SimulateConfig struct {
	Factory      string
	InitCodeHash string
	Token0       string
	Token1       string
	Fee          uint32
	TickSpacing  int32
	SqrtPrice    string
	Tick         int32
	Amount0      string
	Amount1      string
	Width        uint32
	Payer        string
	Recipient    string
	Out          string
	PGDSN        string
	LogLevel     string
}

// LoadPlan merges config file, environment variables, and flags into PlanConfig.
func LoadPlan(cfgFile string, flags *pflag.FlagSet) (PlanConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"factory":       "0x1F98431c8aD98523631AE4a59f267346ea31F984",
		"width":         100,
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return PlanConfig{}, err
	}

	return PlanConfig{
		RPCURL:       v.GetString("rpc"),
		Pool:         v.GetString("pool"),
		Factory:      v.GetString("factory"),
		InitCodeHash: v.GetString("init-code-hash"),
		Amount0:      v.GetString("amount0"),
		Amount1:      v.GetString("amount1"),
		Width:        v.GetUint32("width"),
		Payer:        v.GetString("payer"),
		Recipient:    v.GetString("recipient"),
		Spender:      v.GetString("spender"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}

// LoadSimulate merges config file, environment variables, and flags into SimulateConfig.
func LoadSimulate(cfgFile string, flags *pflag.FlagSet) (SimulateConfig, error) {
	v, err := load(cfgFile, flags, map[string]interface{}{
		"factory":   "0x1F98431c8aD98523631AE4a59f267346ea31F984",
		"token0":    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"token1":    "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		"fee":       500,
		"width":     100,
		"payer":     "0x000000000000000000000000000000000000bEEF",
		"out":       "./data/range_opened.jsonl",
		"log-level": "info",
	})
	if err != nil {
		return SimulateConfig{}, err
	}

	return SimulateConfig{
		Factory:      v.GetString("factory"),
		InitCodeHash: v.GetString("init-code-hash"),
		Token0:       v.GetString("token0"),
		Token1:       v.GetString("token1"),
		Fee:          v.GetUint32("fee"),
		TickSpacing:  v.GetInt32("tick-spacing"),
		SqrtPrice:    v.GetString("sqrt-price"),
		Tick:         v.GetInt32("tick"),
		Amount0:      v.GetString("amount0"),
		Amount1:      v.GetString("amount1"),
		Width:        v.GetUint32("width"),
		Payer:        v.GetString("payer"),
		Recipient:    v.GetString("recipient"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		LogLevel:     v.GetString("log-level"),
	}, nil
}

func load(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("rangectl")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}
