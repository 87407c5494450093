package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/craftly/ops-fec/internal/adapter/http/dto"
	"github.com/craftly/ops-fec/internal/domain"
	"github.com/craftly/ops-fec/internal/infrastructure/logger"
	"github.com/craftly/ops-fec/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

// errInvalidSiren makes `siren validate` exit non-zero without usage output.
var errInvalidSiren = errors.New("invalid SIREN")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "craftly-fec",
		Short:         "Craftly FEC export tool",
		Long:          `A command line interface for generating FEC files and managing the export database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the FEC export API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Request timeout")

	rootCmd.AddCommand(exportCmd(), sirenCmd(), migrateCmd())

	return rootCmd
}

func exportCmd() *cobra.Command {
	var (
		start  string
		end    string
		siren  string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate a FEC file for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, entries, err := downloadExport(&http.Client{Timeout: timeout}, baseURL, dto.ExportRequest{
				StartDate: start,
				EndDate:   end,
				SIREN:     siren,
			}, outDir)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s entries)\n", path, entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Last day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&siren, "siren", "", "Company SIREN (9 digits)")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("siren")

	return cmd
}

// downloadExport posts req and writes the returned file into outDir under the
// server-provided name. It returns the written path and the entry count.
func downloadExport(client *http.Client, base string, req dto.ExportRequest, outDir string) (string, string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", "", err
	}

	resp, err := client.Post(base+"/api/v1/exports/fec", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(content, &apiErr) == nil && apiErr.Error != "" {
			return "", "", fmt.Errorf("export failed (status %d): %s: %s", resp.StatusCode, apiErr.Error, apiErr.Message)
		}
		return "", "", fmt.Errorf("export failed (status %d): %s", resp.StatusCode, string(content))
	}

	name, err := attachmentFilename(resp.Header.Get("Content-Disposition"))
	if err != nil {
		return "", "", err
	}

	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", "", fmt.Errorf("error writing %s: %w", path, err)
	}

	return path, resp.Header.Get("X-FEC-Entries"), nil
}

func attachmentFilename(disposition string) (string, error) {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return "", fmt.Errorf("invalid Content-Disposition %q: %w", disposition, err)
	}

	// Never trust a path from the server.
	name := filepath.Base(params["filename"])
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("missing filename in Content-Disposition %q", disposition)
	}
	return name, nil
}

func sirenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "siren",
		Short: "SIREN helpers",
	}

	validateCmd := &cobra.Command{
		Use:   "validate <siren>",
		Short: "Check that a SIREN is 9 digits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := domain.ValidateSIREN(args[0]); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%q is not a valid SIREN\n", args[0])
				return errInvalidSiren
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", domain.NormalizeSIREN(args[0]))
			return nil
		},
	}

	cmd.AddCommand(validateCmd)
	return cmd
}

func migrateCmd() *cobra.Command {
	var (
		databaseURL string
		path        string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&path, "path", "migrations", "Migrations directory")

	newLogger := func(cmd *cobra.Command) zerolog.Logger {
		return logger.NewWithWriter(logger.Config{Level: "info", Format: "console"}, cmd.ErrOrStderr())
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			return postgres.RunMigrations(databaseURL, path, newLogger(cmd))
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			return postgres.RunMigrationsDown(databaseURL, path, newLogger(cmd))
		},
	}

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}
