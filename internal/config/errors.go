package config

import (
	"fmt"
)

// ParseError reports a structurally invalid document or a field that failed
// type coercion.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DuplicateNameError reports two schedules sharing one name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate schedule name %q", e.Name)
}
