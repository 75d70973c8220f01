package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Rate is a decimal rate parsed from YAML. Decoding goes through the
// node's literal text so 288.10 stays exactly 288.10.
type Rate struct {
	decimal.Decimal
}

func (r *Rate) UnmarshalYAML(value *yaml.Node) error {
	d, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("invalid rate %q: %w", value.Value, err)
	}
	r.Decimal = d
	return nil
}

// MemberRates is a per-identity override block in the rates file. Name is
// only for human reference. A nil rate means "not set", which is distinct
// from an explicit zero.
type MemberRates struct {
	Name         string `yaml:"name"`
	CostRate     *Rate  `yaml:"cost_rate"`
	BillableRate *Rate  `yaml:"billable_rate"`
}

// RatesConfig is the parsed rates override file. Flat rate tables are
// keyed by email or stringified identity id; the members table is keyed by
// identity id and takes precedence over the flat tables for ids it lists.
type RatesConfig struct {
	CostRates           map[string]Rate       `yaml:"cost_rates"`
	BillableRates       map[string]Rate       `yaml:"billable_rates"`
	DefaultCostRate     *Rate                 `yaml:"default_cost_rate"`
	DefaultBillableRate *Rate                 `yaml:"default_billable_rate"`
	Members             map[int64]MemberRates `yaml:"members"`
}

// BillableRateByID returns the configured billable override for an
// identity. An entry in the members table masks the flat table for that
// id, even when it carries no billable rate.
func (c *RatesConfig) BillableRateByID(identityID int64) (decimal.Decimal, bool) {
	if m, ok := c.Members[identityID]; ok {
		if m.BillableRate != nil {
			return m.BillableRate.Decimal, true
		}
		return decimal.Decimal{}, false
	}
	if r, ok := c.BillableRates[strconv.FormatInt(identityID, 10)]; ok {
		return r.Decimal, true
	}
	return decimal.Decimal{}, false
}

// BillableRateByEmail returns the configured billable rate for an email.
func (c *RatesConfig) BillableRateByEmail(email string) (decimal.Decimal, bool) {
	if r, ok := c.BillableRates[email]; ok {
		return r.Decimal, true
	}
	return decimal.Decimal{}, false
}

// CostRateByID returns the configured cost override for an identity.
// An explicit zero is a real value here, not an unset marker.
func (c *RatesConfig) CostRateByID(identityID int64) (decimal.Decimal, bool) {
	if m, ok := c.Members[identityID]; ok {
		if m.CostRate != nil {
			return m.CostRate.Decimal, true
		}
		return decimal.Decimal{}, false
	}
	if r, ok := c.CostRates[strconv.FormatInt(identityID, 10)]; ok {
		return r.Decimal, true
	}
	return decimal.Decimal{}, false
}

// CostRateByEmail returns the configured cost rate for an email.
func (c *RatesConfig) CostRateByEmail(email string) (decimal.Decimal, bool) {
	if r, ok := c.CostRates[email]; ok {
		return r.Decimal, true
	}
	return decimal.Decimal{}, false
}

// DefaultBillable returns the global default billable rate, when set.
func (c *RatesConfig) DefaultBillable() (decimal.Decimal, bool) {
	if c.DefaultBillableRate == nil {
		return decimal.Decimal{}, false
	}
	return c.DefaultBillableRate.Decimal, true
}

// DefaultCost returns the global default cost rate, when set.
func (c *RatesConfig) DefaultCost() (decimal.Decimal, bool) {
	if c.DefaultCostRate == nil {
		return decimal.Decimal{}, false
	}
	return c.DefaultCostRate.Decimal, true
}

// RatesPath returns the location of the rates override file.
func RatesPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rates.yaml"), nil
}

// LoadRates loads the rates override file. A missing file yields an empty
// config; every rate lookup then falls through to the API sources.
func LoadRates() (*RatesConfig, error) {
	path, err := RatesPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &RatesConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rates file: %w", err)
	}

	var cfg RatesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing rates file %s: %w", path, err)
	}
	return &cfg, nil
}

// ratesTemplate is the annotated sample written by `fb rates-init` so
// users can discover the file format.
const ratesTemplate = `# fb rates configuration
#
# Billable rates resolve in this order: the members table below, the
# service's own rate, the team-member rate reported by the API, the staff
# record rate, billable_rates keyed by email, then default_billable_rate.
# Cost rates are never exposed by the API and only come from this file:
# members table, cost_rates keyed by email, then default_cost_rate.

# Fallback rates used when nothing more specific matches.
default_cost_rate: 50.00
default_billable_rate: 150.00

# Overrides keyed by identity id. The name is only for your reference.
# Entries here win over every other source.
members:
  340305:
    name: "Andrew Lombardi"
    cost_rate: 100.00
    billable_rate: 288.00
  9535329:
    name: "Joseph Ottinger"
    cost_rate: 75.00

# Flat tables keyed by email address or quoted identity id.
cost_rates:
  "john@example.com": 50.00
billable_rates:
  "john@example.com": 150.00
`

// WriteSampleRates writes the annotated sample rates file. It refuses to
// overwrite an existing file unless force is set.
func WriteSampleRates(force bool) (string, error) {
	path, err := RatesPath()
	if err != nil {
		return "", err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("rates file already exists at %s (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, []byte(ratesTemplate), 0o600); err != nil {
		return "", fmt.Errorf("writing rates file: %w", err)
	}
	return path, nil
}
