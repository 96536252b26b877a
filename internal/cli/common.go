package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/infraworks/subpack/pkg/config"
	"github.com/infraworks/subpack/pkg/manifest"
	"github.com/infraworks/subpack/pkg/packager"
	"github.com/infraworks/subpack/pkg/preset"
	"github.com/infraworks/subpack/pkg/validate"
)

// loadConfig resolves the active configuration: an explicit --config path
// wins, otherwise the nearest config file above targetPath, otherwise the
// built-in defaults.
func loadConfig(configPath, targetPath string) (*config.Config, error) {
	if configPath == "" {
		found, err := config.FindConfig(targetPath)
		if err != nil {
			return nil, fmt.Errorf("find config: %w", err)
		}

		if found == "" {
			slog.Warn("no configuration found, using defaults",
				slog.String("path", targetPath),
			)

			return config.NewConfig(), nil
		}

		configPath = found
	}

	cl, err := config.NewConfigLoaderFromFile(configPath)
	if err != nil {
		return nil, err
	}

	err = cl.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", configPath, err)
	}

	cfg, err := cl.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", configPath, err)
	}

	slog.Debug("loaded configuration", slog.String("path", configPath))

	return cfg, nil
}

// classifyErr maps setup failures onto [ExitConfig]; cancellation and IO
// failures pass through unchanged.
func classifyErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if errors.Is(err, preset.ErrUnknownPreset) ||
		errors.Is(err, validate.ErrProjectNotFound) ||
		errors.Is(err, validate.ErrInvalidIgnoreGlob) ||
		errors.Is(err, manifest.ErrUnknownAlgorithm) {
		return configError(err)
	}

	return err
}

func printReport(w io.Writer, report *packager.Report) {
	for _, issue := range report.Issues {
		mustN(fmt.Fprintln(w, issue.String()))
	}

	mustN(fmt.Fprintf(w, "%d files checked, %d errors, %d warnings\n",
		report.Files, report.Errors, report.Warnings))
}

func writeReportFile(path string, report *packager.Report) error {
	data, err := report.JSON()
	if err != nil {
		return err
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// exitFor maps the report outcome onto the documented exit codes.
func exitFor(report *packager.Report) error {
	switch {
	case report.Errors > 0:
		return &ExitError{Code: ExitValidation}
	case report.Warnings > 0:
		return &ExitError{Code: ExitWarnings}
	default:
		return nil
	}
}
