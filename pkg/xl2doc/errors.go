package xl2doc

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates an input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates an input file is not a readable xlsx workbook.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrNoInputs indicates Convert was called without input workbooks.
var ErrNoInputs = errors.New("no input workbooks")

// Components reported by ConversionError.
const (
	ComponentCells    = "cells"
	ComponentMerges   = "merges"
	ComponentPictures = "pictures"
	ComponentRange    = "range"
	ComponentCrop     = "crop"
	ComponentAssemble = "assemble"
	ComponentEmbed    = "embed"
	ComponentWrite    = "write"
)

// ConversionError represents an error while transcribing or writing a sheet.
type ConversionError struct {
	SheetName string
	Component string
	Err       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error in sheet %q (%s): %v", e.SheetName, e.Component, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewConversionError creates a new ConversionError.
func NewConversionError(sheetName, component string, err error) *ConversionError {
	return &ConversionError{
		SheetName: sheetName,
		Component: component,
		Err:       err,
	}
}
