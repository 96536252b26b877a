package config

import (
	"fmt"
	"runtime"
	"slices"
)

// ValidChecksumAlgorithms lists the supported manifest checksum algorithms.
var ValidChecksumAlgorithms = []string{"sha256", "blake3"}

// PackagingConfig configures manifest and archive generation.
type PackagingConfig struct {
	// ChecksumAlgorithm selects the manifest checksum algorithm.
	ChecksumAlgorithm string `json:"checksumAlgorithm,omitempty" jsonschema:"title=Checksum Algorithm"`
	// RootName templates the archive root folder. Supports {Des} and {Stage}.
	RootName string `json:"rootName,omitempty" jsonschema:"title=Root Folder Name"`
	// Workers bounds concurrent checksum computation. Defaults to GOMAXPROCS.
	Workers int `json:"workers,omitempty" jsonschema:"title=Checksum Workers"`
}

func (c *PackagingConfig) EnsureDefaults() {
	if c.ChecksumAlgorithm == "" {
		c.ChecksumAlgorithm = "sha256"
	}

	if c.RootName == "" {
		c.RootName = "{Des}_{Stage}_IDM"
	}

	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}

func (c *PackagingConfig) Validate() error {
	if !slices.Contains(ValidChecksumAlgorithms, c.ChecksumAlgorithm) {
		return fmt.Errorf("checksum algorithm %q: must be one of %v",
			c.ChecksumAlgorithm, ValidChecksumAlgorithms)
	}

	return nil
}
