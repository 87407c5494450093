package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/craftly/ops-fec/internal/domain"
	"github.com/craftly/ops-fec/internal/usecase"
)

// ExportRequest represents a request to generate or preview a FEC file.
// Dates use the YYYY-MM-DD layout.
type ExportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	SIREN     string `json:"siren"`
}

// ToUseCaseInput converts to use case input.
func (r *ExportRequest) ToUseCaseInput() (usecase.GenerateExportInput, error) {
	start, err := parseDate("start_date", r.StartDate)
	if err != nil {
		return usecase.GenerateExportInput{}, err
	}

	end, err := parseDate("end_date", r.EndDate)
	if err != nil {
		return usecase.GenerateExportInput{}, err
	}

	return usecase.GenerateExportInput{
		PeriodStart: start,
		PeriodEnd:   end,
		SIREN:       r.SIREN,
	}, nil
}

func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidPeriod, field)
	}

	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", domain.ErrInvalidPeriod, field, value)
	}

	return t, nil
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
