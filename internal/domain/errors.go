package domain

import "errors"

var (
	// Export request errors
	ErrInvalidSiren  = errors.New("invalid SIREN: expected 9 digits")
	ErrInvalidPeriod = errors.New("invalid export period")

	// Data store errors
	ErrDataFetch = errors.New("failed to fetch invoices")

	// Invoice errors
	ErrInvalidAmount     = errors.New("amount must be a non-negative number")
	ErrInvalidInvoice    = errors.New("invalid invoice")
	ErrInvalidStatus     = errors.New("invalid invoice status")
	ErrUnbalancedInvoice = errors.New("invoice totals do not balance: ht + vat != ttc")
)
