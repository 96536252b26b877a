package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/infraworks/subpack/pkg/config"
)

type InitArgs struct {
	Designation string
	Route       string
	District    string
	County      string
	Force       bool
}

func (ia *InitArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&ia.Force, "force", false, "Back up and replace an existing configuration")
	cmd.Flags().StringVar(&ia.Designation, "designation", "", "Project designation number")
	cmd.Flags().StringVar(&ia.Route, "route", "", "Route identifier, e.g. \"SR 37\"")
	cmd.Flags().StringVar(&ia.District, "district", "", "INDOT district")
	cmd.Flags().StringVar(&ia.County, "county", "", "County name")
}

// projectOverrides collects the non-empty project fields so the merge never
// blanks out template values.
func (ia *InitArgs) projectOverrides() map[string]any {
	project := map[string]any{}
	for key, val := range map[string]string{
		"designation": ia.Designation,
		"route":       ia.Route,
		"district":    ia.District,
		"county":      ia.County,
	} {
		if val != "" {
			project[key] = val
		}
	}

	if len(project) == 0 {
		return nil
	}

	return map[string]any{"project": project}
}

func NewInitCmd(_ *RootArgs) *cobra.Command {
	ia := &InitArgs{}

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default subpack.yaml and its JSON schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			path := filepath.Join(dir, config.ConfigFileNames[0])

			err := config.WriteDefaultConfig(path, ia.Force)
			if err != nil {
				return configError(err)
			}

			if overrides := ia.projectOverrides(); overrides != nil {
				err := config.MergeIntoConfig(path, overrides)
				if err != nil {
					return configError(err)
				}
			}

			mustN(fmt.Fprintln(cmd.OutOrStdout(), path))

			return nil
		},
	}
	ia.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}
