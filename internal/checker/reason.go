package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"link-checker/internal/domain"
)

var errTooManyRedirects = errors.New("stopped after too many redirects")

// FailureReason maps a transport error to the short reason stored in
// ErrorDetail. Unknown failures are reported as connection errors.
func FailureReason(err error) string {
	var (
		netErr       net.Error
		certErr      *tls.CertificateVerificationError
		unknownAuth  x509.UnknownAuthorityError
		hostnameErr  x509.HostnameError
		invalidCert  x509.CertificateInvalidError
		recordHeader tls.RecordHeaderError
		invalidURL   *invalidURLError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalidURL):
		return domain.ReasonInvalidURL
	case errors.Is(err, errTooManyRedirects):
		return domain.ReasonTooManyRedirects
	case errors.Is(err, context.Canceled):
		return domain.ReasonCanceled
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return domain.ReasonTimeout
	case errors.As(err, &certErr),
		errors.As(err, &unknownAuth),
		errors.As(err, &hostnameErr),
		errors.As(err, &invalidCert),
		errors.As(err, &recordHeader):
		return domain.ReasonTLS
	default:
		return domain.ReasonConnection
	}
}

// isMethodFailure reports whether a HEAD request failed in a way servers
// produce when they mishandle HEAD: dropping or resetting the connection, or
// answering with a response the client cannot parse.
func isMethodFailure(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "malformed HTTP") ||
		strings.Contains(msg, "server closed") ||
		strings.HasSuffix(msg, "EOF")
}
