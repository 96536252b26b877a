package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/infraworks/subpack/pkg/packager"
	"github.com/infraworks/subpack/pkg/preset"
)

const validateExamples = `  # Validate the current directory for a Stage 2 submittal:
  subpack validate --stage Stage2

  # Validate a project directory, promoting warnings to errors:
  subpack validate ./projects/sr37 --stage Final --strict

  # Write the machine readable report next to the project:
  subpack validate --stage Stage3 --report report.json`

type ValidateArgs struct {
	*RootArgs

	Stage      string
	ReportPath string
	Strict     bool
}

func NewValidateArgs(rootArgs *RootArgs) *ValidateArgs {
	return &ValidateArgs{
		RootArgs: rootArgs,
	}
}

func (va *ValidateArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&va.Stage, "stage", "s", "", "Submittal stage to validate against")
	cmd.Flags().BoolVar(&va.Strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().StringVar(&va.ReportPath, "report", "", "Write the JSON report to this path")

	err := cmd.RegisterFlagCompletionFunc("stage",
		cobra.FixedCompletions(preset.Builtin.Names(), cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewValidateCmd(va *ValidateArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validate [path]",
		Short:   "Validate a project tree against stage submittal requirements",
		Example: validateExamples,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if va.Stage == "" {
				return errors.New("missing required flag: --stage")
			}

			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			cfg, err := loadConfig(va.ConfigPath, path)
			if err != nil {
				return configError(err)
			}

			var opts []packager.Opt
			if va.Strict {
				opts = append(opts, packager.WithStrict())
			}

			report, err := packager.New(cfg, opts...).Validate(cmd.Context(), path, va.Stage)
			if err != nil {
				return classifyErr(err)
			}

			printReport(cmd.OutOrStdout(), report)

			if va.ReportPath != "" {
				err := writeReportFile(va.ReportPath, report)
				if err != nil {
					return err
				}
			}

			return exitFor(report)
		},
	}
	va.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}
