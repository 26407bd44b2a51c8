package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// --- defaults tests ---

func TestLoadReturnsDefaults(t *testing.T) {
	// Unset any env vars that would interfere
	envVars := []string{
		"GOLDMANDI_SERVER_PORT", "GOLDMANDI_RATES_TICK_INTERVAL",
		"GOLDMANDI_RATES_METALS_GOLD_BASE_PRICE",
	}
	for _, e := range envVars {
		os.Unsetenv(e)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port: got %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Server.ShutdownTimeout: got %s, want 5s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Rates.TickInterval != 3*time.Second {
		t.Errorf("Rates.TickInterval: got %s, want 3s", cfg.Rates.TickInterval)
	}

	gold, ok := cfg.Rates.Metals["gold"]
	if !ok {
		t.Fatal("Rates.Metals missing gold")
	}
	if gold.BasePrice != 99320 {
		t.Errorf("gold.BasePrice: got %v, want 99320", gold.BasePrice)
	}
	if gold.MaxFluctuation != 120 {
		t.Errorf("gold.MaxFluctuation: got %v, want 120", gold.MaxFluctuation)
	}
	if gold.MaxQuantity != 1000 {
		t.Errorf("gold.MaxQuantity: got %v, want 1000", gold.MaxQuantity)
	}

	silver, ok := cfg.Rates.Metals["silver"]
	if !ok {
		t.Fatal("Rates.Metals missing silver")
	}
	if silver.BasePrice != 106780 {
		t.Errorf("silver.BasePrice: got %v, want 106780", silver.BasePrice)
	}
	if silver.MaxFluctuation != 350 {
		t.Errorf("silver.MaxFluctuation: got %v, want 350", silver.MaxFluctuation)
	}
	if silver.MaxQuantity != 10000 {
		t.Errorf("silver.MaxQuantity: got %v, want 10000", silver.MaxQuantity)
	}

	name, ok := cfg.Booking.Fields["name"]
	if !ok {
		t.Fatal("Booking.Fields missing name")
	}
	if !name.Required || name.MinLength != 3 || name.MaxLength != 50 {
		t.Errorf("name rule: got %+v", name)
	}
	phone := cfg.Booking.Fields["phone"]
	if phone.StartingDigits != "6789" {
		t.Errorf("phone.StartingDigits: got %q, want %q", phone.StartingDigits, "6789")
	}
	email := cfg.Booking.Fields["email"]
	if email.Pattern == "" {
		t.Error("email rule should carry a pattern")
	}
	qty := cfg.Booking.Fields["quantity"]
	if qty.Min != 1 {
		t.Errorf("quantity.Min: got %v, want 1", qty.Min)
	}
}

// --- file loading tests ---

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "booking-engine.yaml")
	content := []byte(`
server:
  port: "9090"
rates:
  tick_interval: 1s
  metals:
    gold:
      base_price: 100000
      max_fluctuation: 200
      min_quantity: 1
      max_quantity: 500
booking:
  fields:
    name:
      required: true
      min_length: 2
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	os.Unsetenv("GOLDMANDI_SERVER_PORT")
	os.Unsetenv("GOLDMANDI_RATES_TICK_INTERVAL")

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port: got %q, want %q", cfg.Server.Port, "9090")
	}
	if cfg.Rates.TickInterval != time.Second {
		t.Errorf("Rates.TickInterval: got %s, want 1s", cfg.Rates.TickInterval)
	}
	gold := cfg.Rates.Metals["gold"]
	if gold.BasePrice != 100000 {
		t.Errorf("gold.BasePrice: got %v, want 100000", gold.BasePrice)
	}
	if gold.MaxQuantity != 500 {
		t.Errorf("gold.MaxQuantity: got %v, want 500", gold.MaxQuantity)
	}
	// Values absent from the file keep their defaults.
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server.ReadTimeout: got %s, want default 10s", cfg.Server.ReadTimeout)
	}
	if name := cfg.Booking.Fields["name"]; name.MinLength != 2 {
		t.Errorf("name.MinLength: got %d, want 2", name.MinLength)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/booking-engine.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

// --- env override tests ---

func TestEnvOverridesDefault(t *testing.T) {
	os.Setenv("GOLDMANDI_SERVER_PORT", "3000")
	defer os.Unsetenv("GOLDMANDI_SERVER_PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("Server.Port: got %q, want env override %q", cfg.Server.Port, "3000")
	}
}

// --- validation tests ---

func TestValidateRejectsZeroTickInterval(t *testing.T) {
	cfg := Default()
	cfg.Rates.TickInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero tick interval")
	}
}

func TestValidateRejectsNegativeBasePrice(t *testing.T) {
	cfg := Default()
	m := cfg.Rates.Metals["gold"]
	m.BasePrice = -1
	cfg.Rates.Metals["gold"] = m
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative base price")
	}
}

func TestValidateRejectsInvertedQuantityBounds(t *testing.T) {
	cfg := Default()
	m := cfg.Rates.Metals["silver"]
	m.MinQuantity = 100
	m.MaxQuantity = 10
	cfg.Rates.Metals["silver"] = m
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for min quantity above max")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default() should validate cleanly: %v", err)
	}
}
