package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/infraworks/subpack/pkg/config"
	"github.com/infraworks/subpack/pkg/schema"
)

func main() {
	outFile := pflag.StringP("out-file", "o", "schema.json", "Output file for the generated schema")
	pflag.Parse()

	gen := schema.NewGenerator(config.NewConfig(),
		"github.com/infraworks/subpack/pkg/config",
		"github.com/infraworks/subpack/pkg/preset",
	)

	jsData, err := gen.Generate()
	if err != nil {
		fatal(fmt.Errorf("generate JSON schema: %w", err))
	}

	err = os.WriteFile(*outFile, jsData, 0o600)
	if err != nil {
		fatal(fmt.Errorf("write schema file: %w", err))
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "subpack-schemagen:", err)
	os.Exit(1)
}
