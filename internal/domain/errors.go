package domain

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Machine-readable failure reasons carried in ErrorDetail.
const (
	ReasonTimeout          = "timeout"
	ReasonConnection       = "connection_error"
	ReasonTLS              = "tls_error"
	ReasonTooManyRedirects = "too_many_redirects"
	ReasonInvalidURL       = "invalid_url"
	ReasonCanceled         = "canceled"
)

// InputError rejects a run before any network activity starts.
type InputError struct {
	Message string
	Err     error // per-line causes, combined with multierr
}

func (e *InputError) Error() string {
	if e.Err == nil {
		return "invalid input: " + e.Message
	}
	causes := multierr.Errors(e.Err)
	msgs := make([]string, 0, len(causes))
	for _, c := range causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Message, strings.Join(msgs, "; "))
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func NewInputError(message string, err error) error {
	return &InputError{Message: message, Err: err}
}

// FetchError means a seed page itself could not be retrieved.
type FetchError struct {
	Page       string
	StatusCode int
	Reason     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Page, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Page, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PageFailure converts the error into the page-level record of the report.
func (e *FetchError) PageFailure() PageFailure {
	detail := e.Reason
	if detail == "" {
		detail = fmt.Sprintf("http_%d", e.StatusCode)
	}
	return PageFailure{
		SourcePage:  e.Page,
		StatusCode:  e.StatusCode,
		ErrorDetail: detail,
	}
}
