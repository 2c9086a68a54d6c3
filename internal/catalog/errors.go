package catalog

import (
	"errors"
	"fmt"
)

const (
	formatErrorMessageConstant         = "invalid catalog payload"
	formatErrorTemplateConstant        = "%s: %s"
	formatErrorFieldTemplateConstant   = "%s: field %q %s"
	formatErrorWrappedTemplateConstant = "%s: %s: %v"
)

// ErrFormat identifies payloads rejected before any mutation.
var ErrFormat = errors.New(formatErrorMessageConstant)

// FormatError describes a payload that is missing required fields or is not decodable.
type FormatError struct {
	Field   string
	Message string
	Cause   error
}

// Error describes the format failure.
func (formatError FormatError) Error() string {
	switch {
	case formatError.Cause != nil:
		return fmt.Sprintf(formatErrorWrappedTemplateConstant, formatErrorMessageConstant, formatError.Message, formatError.Cause)
	case len(formatError.Field) > 0:
		return fmt.Sprintf(formatErrorFieldTemplateConstant, formatErrorMessageConstant, formatError.Field, formatError.Message)
	default:
		return fmt.Sprintf(formatErrorTemplateConstant, formatErrorMessageConstant, formatError.Message)
	}
}

// Unwrap exposes the decoding cause, if any.
func (formatError FormatError) Unwrap() error {
	return formatError.Cause
}

// Is reports whether target is ErrFormat.
func (formatError FormatError) Is(target error) bool {
	return target == ErrFormat
}
