package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mysticcoders/freshbooks-tools/internal/config"
)

// tempConfigDir points os.UserConfigDir at a fresh directory so tests
// never touch the real config.
func tempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "fb")
}

func TestLoadRatesMissingFile(t *testing.T) {
	tempConfigDir(t)

	cfg, err := config.LoadRates()
	if err != nil {
		t.Fatalf("LoadRates: %v", err)
	}
	if _, ok := cfg.BillableRateByID(1); ok {
		t.Error("BillableRateByID(1) on empty config: expected miss")
	}
	if _, ok := cfg.DefaultBillable(); ok {
		t.Error("DefaultBillable() on empty config: expected miss")
	}
	if _, ok := cfg.DefaultCost(); ok {
		t.Error("DefaultCost() on empty config: expected miss")
	}
}

func TestLoadRates(t *testing.T) {
	dir := tempConfigDir(t)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	yaml := `
default_cost_rate: 50.00
default_billable_rate: 150.00

members:
  340305:
    name: "Andrew"
    cost_rate: 0.00
    billable_rate: 288.10
  9535329:
    name: "Joseph"
    cost_rate: 75.00

cost_rates:
  "kim@example.com": 45.50
billable_rates:
  "kim@example.com": 185.00
  "9535329": 999.00
  "777": 120.00
`
	if err := os.WriteFile(filepath.Join(dir, "rates.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadRates()
	if err != nil {
		t.Fatalf("LoadRates: %v", err)
	}

	if got, ok := cfg.BillableRateByID(340305); !ok || got.StringFixed(2) != "288.10" {
		t.Errorf("BillableRateByID(340305) = %s, %v, want 288.10, true", got, ok)
	}
	if got, ok := cfg.CostRateByID(340305); !ok || !got.IsZero() {
		t.Errorf("CostRateByID(340305) = %s, %v, want explicit 0, true", got, ok)
	}
	if got, ok := cfg.CostRateByID(9535329); !ok || got.String() != "75" {
		t.Errorf("CostRateByID(9535329) = %s, %v, want 75, true", got, ok)
	}
	// A members entry masks the flat table for its id even when it has no
	// billable rate of its own.
	if got, ok := cfg.BillableRateByID(9535329); ok {
		t.Errorf("BillableRateByID(9535329) = %s, want miss", got)
	}
	if got, ok := cfg.BillableRateByID(777); !ok || got.String() != "120" {
		t.Errorf("BillableRateByID(777) = %s, %v, want 120, true", got, ok)
	}
	if got, ok := cfg.BillableRateByEmail("kim@example.com"); !ok || got.String() != "185" {
		t.Errorf("BillableRateByEmail(kim) = %s, %v, want 185, true", got, ok)
	}
	if got, ok := cfg.CostRateByEmail("kim@example.com"); !ok || got.String() != "45.5" {
		t.Errorf("CostRateByEmail(kim) = %s, %v, want 45.5, true", got, ok)
	}
	if _, ok := cfg.BillableRateByEmail("nobody@example.com"); ok {
		t.Error("BillableRateByEmail(nobody): expected miss")
	}
	if got, ok := cfg.DefaultBillable(); !ok || got.String() != "150" {
		t.Errorf("DefaultBillable() = %s, %v, want 150, true", got, ok)
	}
	if got, ok := cfg.DefaultCost(); !ok || got.String() != "50" {
		t.Errorf("DefaultCost() = %s, %v, want 50, true", got, ok)
	}
}

func TestLoadRatesBadYAML(t *testing.T) {
	dir := tempConfigDir(t)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rates.yaml"), []byte("members: [not a map"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.LoadRates(); err == nil {
		t.Error("LoadRates with bad YAML: expected error")
	}
}

func TestWriteSampleRates(t *testing.T) {
	tempConfigDir(t)

	path, err := config.WriteSampleRates(false)
	if err != nil {
		t.Fatalf("WriteSampleRates: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sample file not written: %v", err)
	}

	// Refuses to clobber an existing file without force.
	if _, err := config.WriteSampleRates(false); err == nil {
		t.Error("WriteSampleRates over existing file: expected error")
	}
	if _, err := config.WriteSampleRates(true); err != nil {
		t.Errorf("WriteSampleRates(force): %v", err)
	}

	// The sample must parse with the loader it is meant for.
	cfg, err := config.LoadRates()
	if err != nil {
		t.Fatalf("LoadRates on sample: %v", err)
	}
	if got, ok := cfg.BillableRateByID(340305); !ok || got.StringFixed(2) != "288.00" {
		t.Errorf("sample BillableRateByID(340305) = %s, %v, want 288.00, true", got, ok)
	}
	if _, ok := cfg.DefaultCost(); !ok {
		t.Error("sample DefaultCost(): expected a value")
	}
}
