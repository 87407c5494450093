package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// ParseInvoiceStatus converts a stored status string into an InvoiceStatus.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch status := InvoiceStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// IsPaid reports whether the invoice has been settled.
func (s InvoiceStatus) IsPaid() bool {
	return s == InvoiceStatusPaid
}

const (
	clientCodePrefix = "C"
	clientCodeLength = 6

	// UnknownClientCode and UnknownClientName are used for invoices without a client.
	UnknownClientCode = "CDIVERS"
	UnknownClientName = "Client divers"
)

// Client is the customer an invoice is addressed to.
type Client struct {
	ID   string
	Name string
}

// AuxiliaryCode returns the per-client sub-ledger code: "C" followed by the
// first six characters of the client ID, upper-cased.
func (c *Client) AuxiliaryCode() string {
	if c == nil || c.ID == "" {
		return UnknownClientCode
	}

	id := []rune(c.ID)
	if len(id) > clientCodeLength {
		id = id[:clientCodeLength]
	}

	return clientCodePrefix + strings.ToUpper(string(id))
}

// DisplayName returns the client name, falling back to the unknown client label.
func (c *Client) DisplayName() string {
	if c == nil || strings.TrimSpace(c.Name) == "" {
		return UnknownClientName
	}
	return c.Name
}

// LineItem is a single billed line of an invoice.
type LineItem struct {
	ID          string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
	Total       decimal.Decimal
}

// Invoice is an issued sales invoice with its client and totals.
type Invoice struct {
	ID        string
	Number    string
	CreatedAt time.Time
	DueDate   *time.Time
	PaidAt    *time.Time
	Status    InvoiceStatus
	Client    *Client
	Items     []LineItem
	TotalHT   decimal.Decimal
	TotalVAT  decimal.Decimal
	TotalTTC  decimal.Decimal
}

// IsSettled reports whether a settlement entry pair must be emitted.
func (inv *Invoice) IsSettled() bool {
	return inv.Status.IsPaid() && inv.PaidAt != nil
}

// Validate checks the fields the ledger projection relies on.
func (inv *Invoice) Validate() error {
	if strings.TrimSpace(inv.Number) == "" {
		return fmt.Errorf("%w: missing number (id %s)", ErrInvalidInvoice, inv.ID)
	}

	if inv.CreatedAt.IsZero() {
		return fmt.Errorf("%w: invoice %s has no creation date", ErrInvalidInvoice, inv.Number)
	}

	totals := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"ht", inv.TotalHT},
		{"vat", inv.TotalVAT},
		{"ttc", inv.TotalTTC},
	}
	for _, total := range totals {
		if err := ValidateAmount(total.amount); err != nil {
			return fmt.Errorf("%w: invoice %s total %s is %s", err, inv.Number, total.name, total.amount)
		}
	}

	if !inv.TotalHT.Add(inv.TotalVAT).Equal(inv.TotalTTC) {
		return fmt.Errorf("%w: invoice %s (%s + %s != %s)",
			ErrUnbalancedInvoice, inv.Number, inv.TotalHT, inv.TotalVAT, inv.TotalTTC)
	}

	return nil
}
