package common

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/legal-translator/constants"
)

// ValidationError is one failed rule on one request field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s (got %v)", e.Field, e.Message, e.Value)
}

// Validator collects every failing rule instead of stopping at the first.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Field(name string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if failure := rule(name, value); failure != nil {
			v.errors = append(v.errors, *failure)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.errors) > 0 }

func (v *Validator) Errors() []ValidationError { return v.errors }

// Error returns the collected failures as an AppError matching ErrValidation, or nil.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return NewAppError("VALIDATION_ERROR", v.ErrorMessage(), ErrValidation)
}

func (v *Validator) ErrorMessage() string {
	msgs := make([]string, len(v.errors))
	for i, e := range v.errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidationRule returns nil when value passes.
type ValidationRule func(name string, value any) *ValidationError

func invalid(name string, value any, msg string) *ValidationError {
	return &ValidationError{Field: name, Value: value, Message: msg}
}

func Required(name string, value any) *ValidationError {
	switch v := value.(type) {
	case nil:
		return invalid(name, value, "is required")
	case string:
		if strings.TrimSpace(v) == "" {
			return invalid(name, value, "is required")
		}
	case *string:
		if v == nil || strings.TrimSpace(*v) == "" {
			return invalid(name, value, "is required")
		}
	}
	return nil
}

// LanguageCode accepts BCP 47 codes such as "gu" or "en-IN".
func LanguageCode(name string, value any) *ValidationError {
	s, ok := value.(string)
	if !ok {
		return invalid(name, value, "must be a string")
	}
	if _, ok := constants.CanonicalLang(s); !ok {
		return invalid(name, value, "must be a language code")
	}
	return nil
}

func PDFFilename(name string, value any) *ValidationError {
	if s, _ := value.(string); !constants.IsAllowedFile(s) {
		return invalid(name, value, "only PDF files are allowed")
	}
	return nil
}

func PDFMimeType(name string, value any) *ValidationError {
	if s, _ := value.(string); !constants.IsAllowedMimeType(s) {
		return invalid(name, value, "only application/pdf is allowed")
	}
	return nil
}

// SizeBetween builds a rule for int64 byte counts in [1, limit]. limit <= 0 means unbounded.
func SizeBetween(limit int64) ValidationRule {
	return func(name string, value any) *ValidationError {
		n, ok := value.(int64)
		switch {
		case !ok:
			return invalid(name, value, "must be an integer")
		case n <= 0:
			return invalid(name, value, "must be positive")
		case limit > 0 && n > limit:
			return invalid(name, value, fmt.Sprintf("exceeds maximum of %d bytes", limit))
		}
		return nil
	}
}
