package types

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when no record survives filtering and the
// caller needs at least one (scale selection, chart output).
var ErrEmptyDataset = errors.New("no valid solve records")

// SchemaError reports a required column missing from the header row.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// ParseError reports a cell that cannot be coerced to its column type.
// Line is 1-based and counts the header row.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %q: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports an output path whose extension has no renderer.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format %q for %s (want .png or .svg)", e.Ext, e.Path)
}

// IOError reports an unreadable input or unwritable output resource.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
