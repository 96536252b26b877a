package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/infraworks/subpack/pkg/preset"
	"github.com/infraworks/subpack/pkg/yaml"
)

//go:generate go run ../../internal/schemagen/main.go -o config.v1beta1.json

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	//go:embed config.v1beta1.json
	schemaJSON []byte

	ValidAPIVersions = []string{
		"subpack.infraworks.dev/v1beta1",
	}
	ValidKinds = []string{
		"Configuration",
	}

	DefaultValidator = yaml.MustNewValidator("/config.v1beta1.json", schemaJSON)
)

// Config is the root configuration document for a submittal project.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Project holds the submittal project metadata.
	Project *ProjectConfig `json:"project,omitempty" jsonschema:"title=Project"`
	// Checks configures validation behavior.
	Checks *ChecksConfig `json:"checks,omitempty" jsonschema:"title=Checks"`
	// Packaging configures manifest and archive generation.
	Packaging *PackagingConfig `json:"packaging,omitempty" jsonschema:"title=Packaging"`
	// Stages overrides or extends the built-in stage presets.
	Stages map[string]*preset.StageConfig `json:"stages,omitempty" jsonschema:"title=Stages"`
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind"`
	// Conventions are the filename conventions, tried in order.
	Conventions []*ConventionConfig `json:"conventions,omitempty" jsonschema:"title=Filename Conventions"`
}

func NewConfig() *Config {
	c := &Config{
		APIVersion: "subpack.infraworks.dev/v1beta1",
		Kind:       "Configuration",
	}
	c.EnsureDefaults()

	return c
}

func (c *Config) EnsureDefaults() {
	if c.Project == nil {
		c.Project = &ProjectConfig{}
	}
	c.Project.EnsureDefaults()

	if c.Checks == nil {
		c.Checks = &ChecksConfig{}
	}
	c.Checks.EnsureDefaults()

	if c.Packaging == nil {
		c.Packaging = &PackagingConfig{}
	}
	c.Packaging.EnsureDefaults()

	if len(c.Conventions) == 0 {
		c.Conventions = DefaultConventions()
	}
}

// Validate checks requirements that can't be represented in the schema:
// convention patterns must compile, and every configured stage must resolve
// against the preset catalog.
func (c *Config) Validate() error {
	err := c.Project.Validate()
	if err != nil {
		return err
	}

	err = c.Checks.Validate()
	if err != nil {
		return err
	}

	err = c.Packaging.Validate()
	if err != nil {
		return err
	}

	for _, cc := range c.Conventions {
		err := cc.Validate()
		if err != nil {
			return err
		}
	}

	for stageID, sc := range c.Stages {
		cfg := preset.StageConfig{}
		if sc != nil {
			cfg = *sc
		}

		_, err := preset.Resolve(stageID, cfg, preset.Builtin)
		if err != nil {
			return fmt.Errorf("stage %q: %w", stageID, err)
		}
	}

	return nil
}

// StageRequirement resolves the effective requirements for one stage. Stages
// absent from the configuration inherit the built-in preset of the same name.
func (c *Config) StageRequirement(stageID string) (preset.StageRequirement, error) {
	cfg := preset.StageConfig{Preset: stageID}
	if sc, ok := c.Stages[stageID]; ok && sc != nil {
		cfg = *sc
		if cfg.Preset == "" {
			if _, builtin := preset.Builtin[stageID]; builtin {
				cfg.Preset = stageID
			}
		}
	}

	req, err := preset.Resolve(stageID, cfg, preset.Builtin)
	if err != nil {
		return preset.StageRequirement{}, fmt.Errorf("resolve stage %q: %w", stageID, err)
	}

	return req, nil
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	extendSchemaWithEnums(jss, ValidAPIVersions, ValidKinds)
}

func extendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	apiVersion, ok := jss.Properties.Get("apiVersion")
	if !ok {
		panic("apiVersion property not found in schema")
	}

	for _, version := range apiVersions {
		apiVersion.OneOf = append(apiVersion.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: version,
			Title: "API Version",
		})
	}

	_, _ = jss.Properties.Set("apiVersion", apiVersion)

	kind, ok := jss.Properties.Get("kind")
	if !ok {
		panic("kind property not found in schema")
	}

	for _, kindValue := range kinds {
		kind.OneOf = append(kind.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: kindValue,
			Title: "Kind",
		})
	}

	_, _ = jss.Properties.Set("kind", kind)
}

func (c *Config) MarshalYAML() ([]byte, error) {
	b := &bytes.Buffer{}
	enc := yaml.NewEncoder(b)
	err := enc.Encode(*c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return b.Bytes(), nil
}

func (c Config) Write(path string) error {
	pathInfo, err := os.Stat(path)
	if pathInfo != nil {
		if err == nil && pathInfo.Mode().IsRegular() {
			return nil // Config already exists.
		}
		if pathInfo.IsDir() {
			return fmt.Errorf("%s: path is a directory", path)
		}

		return fmt.Errorf("%s: unknown file state", path)
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	b, err := c.MarshalYAML()
	if err != nil {
		return err
	}

	err = os.WriteFile(path, b, 0o600)
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
