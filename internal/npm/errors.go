package npm

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a package is not published in the registry.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the registry denies access to a package.
var ErrForbidden = errors.New("forbidden")

// NotFoundError wraps ErrNotFound with the package name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("npm: package %s not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ForbiddenError wraps ErrForbidden with the package name.
type ForbiddenError struct {
	Name string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("npm: access to package %s forbidden", e.Name)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}
