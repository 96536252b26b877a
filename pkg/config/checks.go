package config

import (
	"fmt"
	"time"
)

// ChecksConfig configures validation behavior.
type ChecksConfig struct {
	// Keywords configures the document keyword scan.
	Keywords *KeywordsConfig `json:"keywords,omitempty" jsonschema:"title=Keyword Scan"`
	// IgnoreFile names an ignore file looked up at the project root.
	IgnoreFile string `json:"ignoreFile,omitempty" jsonschema:"title=Ignore File"`
	// Ignore lists glob patterns for paths excluded from validation.
	Ignore []string `json:"ignore,omitempty" jsonschema:"title=Ignore Globs"`
}

// KeywordsConfig configures how documents are scanned for expected keyword
// phrases, e.g. "STAGE 2" on the title sheet.
type KeywordsConfig struct {
	// Enabled turns the keyword scan on or off. Defaults to true.
	Enabled *bool `json:"enabled,omitempty" jsonschema:"title=Enabled"`
	// Timeout bounds the scan time per file, e.g. "10s".
	Timeout string `json:"timeout,omitempty" jsonschema:"title=Per File Timeout"`
	// Extensions lists the file extensions scanned, e.g. ".pdf".
	Extensions []string `json:"extensions,omitempty" jsonschema:"title=Scanned Extensions"`
	// MaxScanBytes bounds how much of each file is read.
	MaxScanBytes int64 `json:"maxScanBytes,omitempty" jsonschema:"title=Max Scan Bytes"`
	// Forbidden lists phrases that must not appear in any scanned document,
	// regardless of stage. Stages can add their own via forbiddenKeywords.
	Forbidden []string `json:"forbidden,omitempty" jsonschema:"title=Forbidden Phrases"`
}

func (c *ChecksConfig) EnsureDefaults() {
	if c.Keywords == nil {
		c.Keywords = &KeywordsConfig{}
	}
	c.Keywords.EnsureDefaults()

	if c.IgnoreFile == "" {
		c.IgnoreFile = ".subpackignore"
	}
}

func (c *ChecksConfig) Validate() error {
	return c.Keywords.Validate()
}

func (c *KeywordsConfig) EnsureDefaults() {
	if c.Enabled == nil {
		enabled := true
		c.Enabled = &enabled
	}

	if len(c.Extensions) == 0 {
		c.Extensions = []string{".pdf", ".txt"}
	}

	if c.MaxScanBytes <= 0 {
		c.MaxScanBytes = 4 << 20
	}

	if c.Timeout == "" {
		c.Timeout = "10s"
	}
}

func (c *KeywordsConfig) Validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("keyword scan timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("keyword scan timeout %q: must be positive", c.Timeout)
	}

	return nil
}

// TimeoutDuration returns the parsed per file scan timeout.
func (c *KeywordsConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}

	return d
}
