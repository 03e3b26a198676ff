package dex

import (
	"testing"

	"github.com/holiman/uint256"

	"liquidityRange/internal/fixedpoint"
)

func TestFormatTokenAmount(t *testing.T) {
	cases := []struct {
		value    *uint256.Int
		decimals uint8
		want     string
	}{
		{nil, 18, "0"},
		{uint256.NewInt(1_500_000), 6, "1.5"},
		{uint256.NewInt(42), 0, "42"},
		{fixedpoint.MustParse("4000000000000000000000"), 18, "4000"},
		{uint256.NewInt(1), 18, "0.000000000000000001"},
	}
	for _, tc := range cases {
		if got := FormatTokenAmount(tc.value, tc.decimals); got != tc.want {
			t.Fatalf("format %v/%d: got %s want %s", tc.value, tc.decimals, got, tc.want)
		}
	}
}

func TestHumanPrice(t *testing.T) {
	// price 4000 in raw units
	sqrt := fixedpoint.Sqrt(new(uint256.Int).Lsh(uint256.NewInt(4000), 192))
	if got := HumanPrice(sqrt, 18, 18, 4).String(); got != "4000" {
		t.Fatalf("price mismatch: %s", got)
	}
	// 1 token0 (6 decimals) buys 1/4000 of token1 (18 decimals).
	sqrt = fixedpoint.Sqrt(new(uint256.Int).Lsh(uint256.NewInt(250_000_000), 192))
	if got := HumanPrice(sqrt, 6, 18, 8).String(); got != "0.00025" {
		t.Fatalf("scaled price mismatch: %s", got)
	}
	if !HumanPrice(nil, 18, 18, 2).IsZero() {
		t.Fatalf("nil price should be zero")
	}
}
