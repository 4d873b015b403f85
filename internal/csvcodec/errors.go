package csvcodec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyImport is matched by EmptyImportError.
	ErrEmptyImport = errors.New("no valid transactions found in the CSV file")
	// ErrFieldCount marks a row whose field count differs from the header's.
	ErrFieldCount = errors.New("field count does not match header")
)

// MissingColumnsError is returned when the header lacks a required column.
// It is fatal for the whole file.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("CSV file is missing required columns (%s). Required: %s",
		strings.Join(e.Missing, ", "), strings.Join(RequiredColumns, ", "))
}

// EmptyImportError is returned when no row survived validation.
type EmptyImportError struct {
	Skipped []MalformedRowError
}

func (e *EmptyImportError) Error() string {
	if len(e.Skipped) == 0 {
		return ErrEmptyImport.Error()
	}
	return fmt.Sprintf("%s (%d malformed rows skipped)", ErrEmptyImport.Error(), len(e.Skipped))
}

// Is lets errors.Is(err, ErrEmptyImport) match.
func (e *EmptyImportError) Is(target error) bool {
	return target == ErrEmptyImport
}

// MalformedRowError describes a row that was skipped. It never aborts a parse.
type MalformedRowError struct {
	Err  error
	Line int // 1-based line number in the input
}

func (e MalformedRowError) Error() string {
	return fmt.Sprintf("row %d skipped: %v", e.Line, e.Err)
}

func (e MalformedRowError) Unwrap() error {
	return e.Err
}

// InvalidAmountError reports an amount field that is not a finite number.
type InvalidAmountError struct {
	Value string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q", e.Value)
}
