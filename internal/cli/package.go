package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/infraworks/subpack/pkg/layout"
	"github.com/infraworks/subpack/pkg/log"
	"github.com/infraworks/subpack/pkg/packager"
	"github.com/infraworks/subpack/pkg/preset"
)

const packageExamples = `  # Package the current directory for a Stage 2 submittal:
  subpack package --stage Stage2

  # Package to an explicit archive path:
  subpack package ./projects/sr37 --stage Final -o sr37_final.zip

  # Use BLAKE3 checksums via configuration and fail on any warning:
  subpack package --stage Stage3 --strict`

type PackageArgs struct {
	*RootArgs

	Stage      string
	Output     string
	ReportPath string
	Strict     bool
}

func NewPackageArgs(rootArgs *RootArgs) *PackageArgs {
	return &PackageArgs{
		RootArgs: rootArgs,
	}
}

func (pa *PackageArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&pa.Stage, "stage", "s", "", "Submittal stage to package")
	cmd.Flags().StringVarP(&pa.Output, "output", "o", "", "Archive path, defaults to <root name>.zip")
	cmd.Flags().BoolVar(&pa.Strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().StringVar(&pa.ReportPath, "report", "", "Write the JSON report to this path")

	err := cmd.RegisterFlagCompletionFunc("stage",
		cobra.FixedCompletions(preset.Builtin.Names(), cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewPackageCmd(pa *PackageArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "package [path]",
		Short:   "Validate a project tree and write the submittal archive",
		Example: packageExamples,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pa.Stage == "" {
				return errors.New("missing required flag: --stage")
			}

			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			cfg, err := loadConfig(pa.ConfigPath, path)
			if err != nil {
				return configError(err)
			}

			// Tee logs into a buffer so the run log can be embedded in
			// the archive.
			logBuf := log.NewCircularBuffer(256)
			logHandler, err := log.CreateHandlerWithStrings(
				io.MultiWriter(cmd.ErrOrStderr(), logBuf), pa.LogLevel, pa.LogFormat)
			if err != nil {
				return fmt.Errorf("create log handler: %w", err)
			}

			slog.SetDefault(slog.New(logHandler))

			rootName := layout.RootName(cfg.Packaging.RootName, cfg.Project.Designation, pa.Stage)

			dest := pa.Output
			if dest == "" {
				dest = rootName + ".zip"
			}

			opts := []packager.Opt{packager.WithRunLog(logBuf)}
			if pa.Strict {
				opts = append(opts, packager.WithStrict())
			}

			report, err := packager.New(cfg, opts...).Package(cmd.Context(), path, pa.Stage, dest)
			if err != nil && !errors.Is(err, packager.ErrValidationFailed) {
				return classifyErr(err)
			}

			printReport(cmd.OutOrStdout(), report)

			if errors.Is(err, packager.ErrValidationFailed) {
				if pa.ReportPath != "" {
					werr := writeReportFile(pa.ReportPath, report)
					if werr != nil {
						return werr
					}
				}

				return &ExitError{Code: ExitValidation}
			}

			mustN(fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %s\n", dest, report.Totals.String()))

			if pa.ReportPath != "" {
				err := writeReportFile(pa.ReportPath, report)
				if err != nil {
					return err
				}
			}

			return exitFor(report)
		},
	}
	pa.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}
