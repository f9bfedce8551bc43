package ot

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the patching pipeline. They classify per-font
// failures; errors are wrapped with font/table context and should be tested
// with errors.Is.
var (
	// ErrUnsupportedFont indicates that a font lacks a table required for
	// patching, e.g. a usable character map.
	ErrUnsupportedFont = errors.New("unsupported font")

	// ErrIncompatibleFont indicates a table version or layout that the
	// patcher cannot modify without risking corruption.
	ErrIncompatibleFont = errors.New("incompatible font")

	// ErrNoApplicableGlyphs indicates that a font has no spacing-relevant
	// glyphs for a given script. This is recoverable: other scripts of the
	// same font may still be patched.
	ErrNoApplicableGlyphs = errors.New("no applicable glyphs")
)

// FontError attaches table context to an error encountered while reading or
// patching a font table.
type FontError struct {
	Table   Tag    // the OpenType table where the error occurred (e.g., "GSUB", "cmap")
	Section string // specific section within the table (e.g., "LookupList")
	err     error
}

func errFont(table Tag, section string, err error) *FontError {
	return &FontError{Table: table, Section: section, err: err}
}

func errFontf(table Tag, section string, kind error, format string, args ...interface{}) *FontError {
	issue := fmt.Sprintf(format, args...)
	return &FontError{Table: table, Section: section, err: fmt.Errorf("%w: %s", kind, issue)}
}

// FmtIncompatible builds an error matching ErrIncompatibleFont, with table
// context. Used by the patch builder when a table cannot be modified.
func FmtIncompatible(table Tag, format string, args ...interface{}) error {
	return errFontf(table, "", ErrIncompatibleFont, format, args...)
}

// Error implements the error interface.
func (e *FontError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("%s/%s: %v", e.Table, e.Section, e.err)
	}
	return fmt.Sprintf("%s: %v", e.Table, e.err)
}

// Unwrap exposes the underlying error kind for errors.Is matching.
func (e *FontError) Unwrap() error {
	return e.err
}
