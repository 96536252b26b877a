package cli_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infraworks/subpack/internal/cli"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()

	cmd := cli.NewRootCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	return cmd.Execute()
}

func TestValidateCmd_ConfigSchemaGate(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "subpack.yaml")

	t.Run("unknown key is rejected before loading", func(t *testing.T) {
		// The YAML decoder tolerates unknown keys; only the schema catches
		// them. A typo like "plugins" must fail the run, not be ignored.
		cfg := `apiVersion: subpack.infraworks.dev/v1beta1
kind: Configuration
project:
  designation: "1234567"
plugins: []
`
		require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

		err := execute(t, "validate", "--stage", "Stage2", "--config", cfgPath, dir)
		require.Error(t, err)

		var exitErr *cli.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, cli.ExitConfig, exitErr.Code)
		assert.Contains(t, err.Error(), "invalid config")
	})

	t.Run("valid config passes the gate", func(t *testing.T) {
		cfg := `apiVersion: subpack.infraworks.dev/v1beta1
kind: Configuration
project:
  designation: "1234567"
`
		require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))

		// The empty project directory fails validation, not config loading.
		err := execute(t, "validate", "--stage", "Stage2", "--config", cfgPath, dir)
		require.Error(t, err)

		var exitErr *cli.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, cli.ExitValidation, exitErr.Code)
	})
}
