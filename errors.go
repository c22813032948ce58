package docstruct

import (
	"errors"
	"fmt"
)

// Stage names the part of a parse that failed fatally.
type Stage string

const (
	// StageOpen covers opening the zip container and locating the main
	// document part.
	StageOpen Stage = "package-open"
	// StageBody covers reading the main document XML.
	StageBody Stage = "body-read"
)

// ErrNotWordPackage is wrapped into open errors for packages that are a
// different office format, such as a spreadsheet.
var ErrNotWordPackage = errors.New("not a word-processing package")

// ParseError is the only error Parse returns. Everything recoverable is
// reported as a diagnostic on the document instead.
type ParseError struct {
	Stage  Stage
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsStage reports whether err is a ParseError for stage.
func IsStage(err error, stage Stage) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Stage == stage
}
