// Package config loads, validates, and writes subpack project configuration.
// Configuration is YAML validated against an embedded JSON schema, then
// checked with Go code for requirements the schema can't express.
package config
