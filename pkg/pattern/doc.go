// Package pattern compiles human-authored filename patterns like
// "{Des}_{Stage}_{Discipline}_{SheetType}_{SheetRange}.{Ext}" into matchers
// that extract named fields from filenames. It is a pure module: no I/O, no
// dependency on the validation engine, deterministic output for a given
// pattern string.
package pattern
