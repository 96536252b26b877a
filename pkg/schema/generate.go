// Package schema generates JSON schema documents from configuration types.
// Uses [github.com/invopop/jsonschema].
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

const modulePath = "github.com/infraworks/subpack"

// Generator reflects a configuration value into a JSON schema document.
// Doc comments from the listed packages are included as descriptions.
type Generator struct {
	value    any
	pkgPaths []string
}

// NewGenerator creates a [Generator] for the given value. Each pkgPath must be
// a package under this module; its Go doc comments are attached to the
// matching schema properties.
func NewGenerator(v any, pkgPaths ...string) *Generator {
	return &Generator{
		value:    v,
		pkgPaths: pkgPaths,
	}
}

// Generate reflects the value into an indented JSON schema document.
func (g *Generator) Generate() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		FieldNameTag:   "json",
	}

	for _, pkgPath := range g.pkgPaths {
		rel, ok := strings.CutPrefix(pkgPath, modulePath+"/")
		if !ok {
			return nil, fmt.Errorf("package %q is not under %q", pkgPath, modulePath)
		}

		err := r.AddGoComments(pkgPath, "./"+rel)
		if err != nil {
			return nil, fmt.Errorf("add go comments for %q: %w", pkgPath, err)
		}
	}

	jss := r.Reflect(g.value)

	data, err := json.MarshalIndent(jss, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(data, '\n'), nil
}
