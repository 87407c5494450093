package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/craftly/ops-fec/internal/adapter/http/dto"
	"github.com/craftly/ops-fec/internal/domain"
	"github.com/craftly/ops-fec/internal/usecase"
)

const (
	// HeaderEntryCount carries the number of entries in a generated file.
	HeaderEntryCount = "X-FEC-Entries"
	// HeaderInvoiceCount carries the number of invoices in a generated file.
	HeaderInvoiceCount = "X-FEC-Invoices"
	// HeaderContentSHA256 carries the hex SHA-256 of the file content.
	HeaderContentSHA256 = "X-FEC-SHA256"
)

// ExportService defines the behavior needed by ExportHandler.
type ExportService interface {
	GenerateExport(ctx context.Context, input usecase.GenerateExportInput) (*usecase.ExportResult, error)
	PreviewExport(ctx context.Context, input usecase.GenerateExportInput) (*usecase.PreviewResult, error)
	ListExports(ctx context.Context, limit, offset int) ([]*domain.ExportRecord, error)
}

// ExportHandler handles FEC export requests.
type ExportHandler struct {
	exportUC ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportUC ExportService) *ExportHandler {
	return &ExportHandler{exportUC: exportUC}
}

// Generate returns the FEC file as an attachment.
func (h *ExportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeExportRequest(w, r)
	if !ok {
		return
	}

	result, err := h.exportUC.GenerateExport(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to generate export", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Content)))
	w.Header().Set(HeaderEntryCount, strconv.Itoa(result.EntryCount))
	w.Header().Set(HeaderInvoiceCount, strconv.Itoa(result.InvoiceCount))
	w.Header().Set(HeaderContentSHA256, result.SHA256)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(result.Content))
}

// Preview returns the entries of an export as JSON.
func (h *ExportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeExportRequest(w, r)
	if !ok {
		return
	}

	preview, err := h.exportUC.PreviewExport(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to preview export", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PreviewFromUseCase(preview))
}

// List lists past exports.
func (h *ExportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := domain.ValidatePagination(
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0),
	)

	records, err := h.exportUC.ListExports(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list exports", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.ExportRecordResponse]{
		Data:   dto.ExportRecordsFromDomain(records),
		Limit:  limit,
		Offset: offset,
	})
}

func decodeExportRequest(w http.ResponseWriter, r *http.Request) (usecase.GenerateExportInput, bool) {
	var req dto.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return usecase.GenerateExportInput{}, false
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid export period", err.Error())
		return usecase.GenerateExportInput{}, false
	}

	return input, true
}
