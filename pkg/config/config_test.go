package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infraworks/subpack/pkg/config"
	"github.com/infraworks/subpack/pkg/pattern"
	"github.com/infraworks/subpack/pkg/preset"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := config.NewConfig()

	assert.Equal(t, "subpack.infraworks.dev/v1beta1", c.APIVersion)
	assert.Equal(t, "Configuration", c.Kind)
	require.NotNil(t, c.Checks)
	require.NotNil(t, c.Checks.Keywords)
	assert.Equal(t, ".subpackignore", c.Checks.IgnoreFile)
	assert.Equal(t, "sha256", c.Packaging.ChecksumAlgorithm)
	assert.Equal(t, "{Des}_{Stage}_IDM", c.Packaging.RootName)
	assert.NotEmpty(t, c.Conventions)

	require.NoError(t, c.Validate())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		mutate func(c *config.Config)
		errMsg string
	}{
		"bad designation": {
			mutate: func(c *config.Config) { c.Project.Designation = "12AB" },
			errMsg: "seven digit",
		},
		"bad checksum algorithm": {
			mutate: func(c *config.Config) { c.Packaging.ChecksumAlgorithm = "md5" },
			errMsg: "checksum algorithm",
		},
		"bad keyword timeout": {
			mutate: func(c *config.Config) { c.Checks.Keywords.Timeout = "soon" },
			errMsg: "keyword scan timeout",
		},
		"bad convention pattern": {
			mutate: func(c *config.Config) {
				c.Conventions = []*config.ConventionConfig{{Name: "broken", Pattern: "{Des"}}
			},
			errMsg: "broken",
		},
		"unknown stage preset": {
			mutate: func(c *config.Config) {
				c.Stages = map[string]*preset.StageConfig{
					"Stage2": {Preset: "Stage9"},
				}
			},
			errMsg: "unknown preset",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := config.NewConfig()
			tc.mutate(c)

			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestConfig_StageRequirement(t *testing.T) {
	t.Parallel()

	t.Run("unlisted stage uses builtin preset", func(t *testing.T) {
		t.Parallel()

		c := config.NewConfig()

		req, err := c.StageRequirement("Stage3")
		require.NoError(t, err)
		assert.Equal(t, "Stage3", req.Preset)
		assert.NotEmpty(t, req.Required)
	})

	t.Run("listed stage defaults preset to its id", func(t *testing.T) {
		t.Parallel()

		c := config.NewConfig()
		c.Stages = map[string]*preset.StageConfig{
			"Stage1": {
				Required: []preset.Artifact{{Key: "survey_book", Pattern: "*SURVEY*.pdf"}},
			},
		}

		req, err := c.StageRequirement("Stage1")
		require.NoError(t, err)
		assert.Equal(t, "Stage1", req.Preset)

		keys := make([]string, 0, len(req.Required))
		for _, a := range req.Required {
			keys = append(keys, a.Key)
		}

		assert.Contains(t, keys, "title_sheet")
		assert.Contains(t, keys, "survey_book")
	})

	t.Run("unknown stage without preset resolves verbatim", func(t *testing.T) {
		t.Parallel()

		c := config.NewConfig()
		c.Stages = map[string]*preset.StageConfig{
			"Interim": {
				Required: []preset.Artifact{{Key: "memo", Pattern: "*MEMO*.pdf"}},
			},
		}

		req, err := c.StageRequirement("Interim")
		require.NoError(t, err)
		assert.Empty(t, req.Preset)
		require.Len(t, req.Required, 1)
		assert.Equal(t, "memo", req.Required[0].Key)
	})
}

func TestConventionConfig_Compile(t *testing.T) {
	t.Parallel()

	cache := pattern.NewCache()

	tcs := map[string]struct {
		cfg      config.ConventionConfig
		filename string
		want     bool
	}{
		"placeholder pattern": {
			cfg: config.ConventionConfig{
				Name:    "plan-sheets",
				Pattern: "{Des}_{Stage}_{Discipline}_{SheetType}_{SheetRange}.{Ext}",
			},
			filename: "1234567_Stage2_RD_PLAN_0001-0010.pdf",
			want:     true,
		},
		"regex override": {
			cfg: config.ConventionConfig{
				Name:  "legacy",
				Regex: `^(?P<Des>\d{7})-(?P<Sheet>\d{3})\.pdf$`,
			},
			filename: "1234567-004.pdf",
			want:     true,
		},
		"exceptions pass through": {
			cfg: config.ConventionConfig{
				Name:       "plan-sheets",
				Pattern:    "{Des}_{Stage}.{Ext}",
				Exceptions: []string{"Cover Letter.pdf"},
			},
			filename: "Cover Letter.pdf",
			want:     true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, err := tc.cfg.Compile(cache)
			require.NoError(t, err)

			_, ok := p.Match(tc.filename)
			assert.Equal(t, tc.want, ok)
		})
	}
}
