// Package fec derives double-entry accounting lines from invoices and renders
// them as a Fichier des Écritures Comptables.
package fec

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Account is a chart-of-accounts line.
type Account struct {
	Number string `yaml:"number"`
	Label  string `yaml:"label"`
}

// ChartOfAccounts holds the accounts the projector books into.
// Receivable is a root: the client auxiliary code is appended to its number.
type ChartOfAccounts struct {
	Receivable Account `yaml:"receivable"`
	Revenue    Account `yaml:"revenue"`
	VAT        Account `yaml:"vat_collected"`
	Bank       Account `yaml:"bank"`
}

// DefaultChart returns the French PCG accounts used for service sales.
func DefaultChart() ChartOfAccounts {
	return ChartOfAccounts{
		Receivable: Account{Number: "411", Label: "Clients"},
		Revenue:    Account{Number: "706000", Label: "Prestations de services"},
		VAT:        Account{Number: "445710", Label: "TVA collectée"},
		Bank:       Account{Number: "512000", Label: "Banque"},
	}
}

// LoadChart reads a YAML chart file. Accounts missing from the file keep
// their default values.
func LoadChart(path string) (ChartOfAccounts, error) {
	chart := DefaultChart()

	data, err := os.ReadFile(path)
	if err != nil {
		return chart, fmt.Errorf("failed to read chart of accounts: %w", err)
	}

	var override ChartOfAccounts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return chart, fmt.Errorf("failed to parse chart of accounts: %w", err)
	}

	chart.Receivable = merge(chart.Receivable, override.Receivable)
	chart.Revenue = merge(chart.Revenue, override.Revenue)
	chart.VAT = merge(chart.VAT, override.VAT)
	chart.Bank = merge(chart.Bank, override.Bank)

	if err := chart.Validate(); err != nil {
		return chart, err
	}

	return chart, nil
}

// Validate ensures every account number is set and free of the FEC separator.
func (c ChartOfAccounts) Validate() error {
	for _, acc := range []Account{c.Receivable, c.Revenue, c.VAT, c.Bank} {
		if strings.TrimSpace(acc.Number) == "" {
			return fmt.Errorf("chart of accounts: account %q has no number", acc.Label)
		}
		if strings.ContainsAny(acc.Number, fieldSeparator+"\r\n") {
			return fmt.Errorf("chart of accounts: invalid account number %q", acc.Number)
		}
	}
	return nil
}

func merge(base, override Account) Account {
	if override.Number != "" {
		base.Number = override.Number
	}
	if override.Label != "" {
		base.Label = override.Label
	}
	return base
}
