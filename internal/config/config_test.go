package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tr := cfg.Trading
	if tr.MinTradeSize != 50 || tr.MaxTradeSize != 200 {
		t.Errorf("Trade size limits = %v/%v, want 50/200", tr.MinTradeSize, tr.MaxTradeSize)
	}
	if tr.MaxConcurrentOrders != 2 {
		t.Errorf("MaxConcurrentOrders = %d, want 2", tr.MaxConcurrentOrders)
	}
	if tr.FirstOrderFraction != 0.45 || tr.SecondOrderFraction != 0.90 {
		t.Errorf("Allocation fractions = %v/%v, want 0.45/0.90", tr.FirstOrderFraction, tr.SecondOrderFraction)
	}
	if tr.FeeBuffer != 0.001 || tr.FeeRate != 0.002 {
		t.Errorf("Fees = %v/%v, want 0.001/0.002", tr.FeeBuffer, tr.FeeRate)
	}
	if tr.ReportInterval != 10*time.Minute {
		t.Errorf("ReportInterval = %v, want 10m", tr.ReportInterval)
	}
	if len(tr.Pairs) != 1 || tr.Pairs[0] != "SOL/USDT" {
		t.Errorf("Pairs = %v, want [SOL/USDT]", tr.Pairs)
	}
}

func validTrading() TradingConfig {
	return TradingConfig{
		Pairs:               []string{"SOL/USDT"},
		MinSpread:           0.005,
		FeeBuffer:           0.001,
		FeeRate:             0.002,
		ReferenceNotional:   100,
		MinTradeSize:        50,
		MaxTradeSize:        200,
		MaxConcurrentOrders: 2,
		FirstOrderFraction:  0.45,
		SecondOrderFraction: 0.90,
		PollInterval:        2 * time.Second,
		ReportInterval:      10 * time.Minute,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TradingConfig)
		wantErr bool
	}{
		{"Valid", func(c *TradingConfig) {}, false},
		{"No pairs", func(c *TradingConfig) { c.Pairs = nil }, true},
		{"Zero spread", func(c *TradingConfig) { c.MinSpread = 0 }, true},
		{"Max below min size", func(c *TradingConfig) { c.MaxTradeSize = 10 }, true},
		{"Zero concurrency", func(c *TradingConfig) { c.MaxConcurrentOrders = 0 }, true},
		{"Fraction above one", func(c *TradingConfig) { c.FirstOrderFraction = 1.5 }, true},
		{"Zero fraction", func(c *TradingConfig) { c.SecondOrderFraction = 0 }, true},
		{"Zero poll interval", func(c *TradingConfig) { c.PollInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Trading: validTrading()}
			tt.mutate(&cfg.Trading)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
