package corpus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMissingPublication indicates that an identifier is referenced but absent from the store.
	ErrMissingPublication = errors.New("missing publication")

	// ErrInvalidPublication indicates that a record failed validation at load time.
	ErrInvalidPublication = errors.New("invalid publication")
)

// MissingPublicationError names the identifier that could not be resolved and
// where the reference came from.
type MissingPublicationError struct {
	ID      string
	Context string
}

// Error implements the error interface.
func (e *MissingPublicationError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("publication not found: %s", e.ID)
	}
	return fmt.Sprintf("publication not found: %s (referenced by %s)", e.ID, e.Context)
}

// Unwrap returns ErrMissingPublication for use with errors.Is.
func (e *MissingPublicationError) Unwrap() error {
	return ErrMissingPublication
}

// NewMissingPublicationError creates a MissingPublicationError.
func NewMissingPublicationError(id, context string) *MissingPublicationError {
	return &MissingPublicationError{ID: id, Context: context}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of p and reports every failing field.
func Validate(p Publication) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidPublication, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	id := p.ID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Errorf("%w %s: %s", ErrInvalidPublication, id, strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
