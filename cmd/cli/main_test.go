package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftly/ops-fec/internal/adapter/http/dto"
)

func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestSirenValidate(t *testing.T) {
	out, err := executeCmd(t, "siren", "validate", "123 456 789")
	require.NoError(t, err)
	assert.Equal(t, "123456789 is valid\n", out)

	out, err = executeCmd(t, "siren", "validate", "12345678")
	require.ErrorIs(t, err, errInvalidSiren)
	assert.Contains(t, out, "not a valid SIREN")
}

func TestExportCmdWritesServerFilename(t *testing.T) {
	var received dto.ExportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/exports/fec", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="123456789FEC20241231.txt"`)
		w.Header().Set("X-FEC-Entries", "3")
		_, _ = w.Write([]byte("JournalCode|JournalLib"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	out, err := executeCmd(t, "export", "--url", srv.URL,
		"--start", "2024-01-01", "--end", "2024-12-31", "--siren", "123456789", "--out", dir)
	require.NoError(t, err)

	assert.Equal(t, dto.ExportRequest{StartDate: "2024-01-01", EndDate: "2024-12-31", SIREN: "123456789"}, received)

	path := filepath.Join(dir, "123456789FEC20241231.txt")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "JournalCode|JournalLib", string(content))
	assert.Contains(t, out, "(3 entries)")
}

func TestExportCmdReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "failed to generate export", Message: "invalid SIREN"})
	}))
	defer srv.Close()

	_, err := executeCmd(t, "export", "--url", srv.URL,
		"--start", "2024-01-01", "--end", "2024-12-31", "--siren", "1", "--out", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "invalid SIREN")
}

func TestExportCmdRequiresFlags(t *testing.T) {
	_, err := executeCmd(t, "export", "--start", "2024-01-01")
	require.Error(t, err)
}

func TestAttachmentFilename(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		want        string
		wantErr     bool
	}{
		{"quoted", `attachment; filename="123456789FEC20241231.txt"`, "123456789FEC20241231.txt", false},
		{"path is stripped", `attachment; filename="../../etc/passwd"`, "passwd", false},
		{"missing", `attachment`, "", true},
		{"garbage", ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := attachmentFilename(tt.disposition)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := executeCmd(t, "migrate", "up", "--database-url", "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "DATABASE_URL"))
}
