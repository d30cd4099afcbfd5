package graph

import (
	"fmt"

	"collection-governance/internal/domain"
)

// apiError carries the domain error code and category as GraphQL error
// extensions.
type apiError struct {
	err      error
	code     string
	category domain.ErrorCategory
}

func (e *apiError) Error() string {
	return e.err.Error()
}

func (e *apiError) Unwrap() error {
	return e.err
}

// Extensions implements the graphql-go ResolverError interface.
func (e *apiError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":     e.code,
		"category": string(e.category),
	}
}

// wrapErr classifies err for the response. It must be returned unwrapped
// so that graphql-go sees the extensions.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return &apiError{err: err, code: domain.Code(err), category: domain.CategoryOf(err)}
}

// invalidArg reports a malformed argument. Errors without a domain class
// are classified as invalid values.
func invalidArg(name string, err error) error {
	if !domain.IsDomainError(err) {
		return wrapErr(fmt.Errorf("argument %s: %v: %w", name, err, domain.ErrInvalidValue))
	}
	return wrapErr(fmt.Errorf("argument %s: %w", name, err))
}
