package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"liquidityRange/internal/model"
)

func TestLoadPlanPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rangectl.yaml")
	content := "rpc: http://file:8545\nwidth: 250\namount0: \"1000\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RANGECTL_AMOUNT1", "4000")
	t.Setenv("RANGECTL_MAX_RETRIES", "9")

	flags := pflag.NewFlagSet("plan", pflag.ContinueOnError)
	flags.String("rpc", "", "")
	flags.Uint32("width", 100, "")
	if err := flags.Parse([]string{"--rpc", "http://flag:8545"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadPlan(cfgPath, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCURL != "http://flag:8545" {
		t.Fatalf("flag should win: %s", cfg.RPCURL)
	}
	if cfg.Width != 250 {
		t.Fatalf("file should beat unset flag default: %d", cfg.Width)
	}
	if cfg.Amount0 != "1000" || cfg.Amount1 != "4000" {
		t.Fatalf("amounts mismatch: %s %s", cfg.Amount0, cfg.Amount1)
	}
	if cfg.MaxRetries != 9 {
		t.Fatalf("env should set max retries: %d", cfg.MaxRetries)
	}
	if cfg.RetryBackoff != 500*time.Millisecond || cfg.LogLevel != "info" {
		t.Fatalf("defaults mismatch: %+v", cfg)
	}
	if cfg.Factory != "0x1F98431c8aD98523631AE4a59f267346ea31F984" {
		t.Fatalf("factory default mismatch: %s", cfg.Factory)
	}
}

func TestLoadSimulateDefaults(t *testing.T) {
	cfg, err := LoadSimulate("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Fee != 500 || cfg.Width != 100 || cfg.Out != "./data/range_opened.jsonl" {
		t.Fatalf("defaults mismatch: %+v", cfg)
	}
	if cfg.PGDSN != "" || cfg.SqrtPrice != "" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	if _, err := LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestParseHelpers(t *testing.T) {
	addr, err := ParseAddress("pool", " 0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640 ", true)
	if err != nil || addr != common.HexToAddress("0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640") {
		t.Fatalf("address mismatch: %v %v", addr, err)
	}
	if _, err := ParseAddress("pool", "", true); !errors.Is(err, model.ErrInvalidAddress) {
		t.Fatalf("expected invalid address, got %v", err)
	}
	if _, err := ParseAddress("pool", "0x1234", false); !errors.Is(err, model.ErrInvalidAddress) {
		t.Fatalf("expected invalid address, got %v", err)
	}
	if zero, err := ParseAddress("recipient", "", false); err != nil || zero != (common.Address{}) {
		t.Fatalf("optional address mismatch: %v %v", zero, err)
	}

	hash, err := ParseHash("init-code-hash", "0xe34f199b19b2b4f47f68442619d555527d244f78a3297ea89325f843f87b8b54")
	if err != nil || hash == (common.Hash{}) {
		t.Fatalf("hash mismatch: %v %v", hash, err)
	}
	if _, err := ParseHash("init-code-hash", "0x1234"); err == nil {
		t.Fatalf("expected length error")
	}

	amount, err := ParseAmount("amount0", "4000000000000000000000")
	if err != nil || amount.ToBig().String() != "4000000000000000000000" {
		t.Fatalf("amount mismatch: %v %v", amount, err)
	}
	if amount, err := ParseAmount("amount1", "0x10"); err != nil || amount.Uint64() != 16 {
		t.Fatalf("hex amount mismatch: %v %v", amount, err)
	}
	if _, err := ParseAmount("amount0", "-1"); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}
