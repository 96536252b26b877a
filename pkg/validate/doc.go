// Package validate walks a submittal project tree and applies a resolved
// stage's rules: filename conventions, required artifacts, discipline codes,
// duplicate detection, and best-effort keyword scans. Findings are [Issue]
// values; the run only fails outright when the root is missing or the
// context is canceled.
package validate
