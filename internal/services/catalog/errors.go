package catalog

import (
	"errors"
	"fmt"

	"github.com/developia-II/marketplace-catalog/internal/adapters/repository"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = repository.ErrNotFound
	ErrInvalidID        = repository.ErrInvalidID
	ErrPermissionDenied = repository.ErrPermissionDenied
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// invalid turns a validator failure into an ErrInvalidInput naming the first
// offending field.
func invalid(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return invalidf("%s is required", fe.Field())
	case "min":
		return invalidf("%s must not be empty", fe.Field())
	case "url":
		return invalidf("%s must be a valid URL", fe.Field())
	}
	return invalidf("%s failed %q validation", fe.Field(), fe.Tag())
}
