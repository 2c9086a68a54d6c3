package contentstore

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	notFoundMessageConstant            = "remote file not found"
	credentialMissingMessageConstant   = "github credential missing"
	concurrencyConflictMessageConstant = "remote file changed since it was read"
	remoteFailureTemplateConstant      = "%s %s failed with status %d: %s"
	transportFailureTemplateConstant   = "%s %s transport failure: %v"
	remoteFailureBodyLimitConstant     = 200
	remoteFailureBodyEllipsisConstant  = "..."
)

var (
	// ErrNotFound reports a path absent from the remote branch.
	ErrNotFound = errors.New(notFoundMessageConstant)
	// ErrCredentialMissing reports a client constructed without a credential.
	ErrCredentialMissing = errors.New(credentialMissingMessageConstant)
	// ErrConcurrencyConflict reports a conditional write rejected because the stored token is stale.
	ErrConcurrencyConflict = errors.New(concurrencyConflictMessageConstant)
)

// OperationName identifies a remote call in errors and logs.
type OperationName string

// Remote operations.
const (
	OperationGet           OperationName = OperationName("GET")
	OperationPut           OperationName = OperationName("PUT")
	OperationDelete        OperationName = OperationName("DELETE")
	OperationLatestRelease OperationName = OperationName("LATEST_RELEASE")
)

// RemoteFailureError describes a non-success response.
type RemoteFailureError struct {
	Operation   OperationName
	Path        string
	StatusCode  int
	Body        string
	Conditional bool
}

// Error describes the failed call.
func (failure RemoteFailureError) Error() string {
	return fmt.Sprintf(remoteFailureTemplateConstant, failure.Operation, failure.Path, failure.StatusCode, failure.Body)
}

// Is reports not-found and concurrency conflicts as their sentinel errors.
func (failure RemoteFailureError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return failure.StatusCode == http.StatusNotFound
	case ErrConcurrencyConflict:
		if failure.StatusCode == http.StatusConflict {
			return true
		}
		return failure.Conditional && failure.StatusCode == http.StatusUnprocessableEntity
	default:
		return false
	}
}

// TransportError wraps network failures that produced no response.
type TransportError struct {
	Operation OperationName
	Path      string
	Cause     error
}

// Error describes the transport failure.
func (transportError TransportError) Error() string {
	return fmt.Sprintf(transportFailureTemplateConstant, transportError.Operation, transportError.Path, transportError.Cause)
}

// Unwrap exposes the underlying network error.
func (transportError TransportError) Unwrap() error {
	return transportError.Cause
}

func truncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= remoteFailureBodyLimitConstant {
		return body
	}
	return string(runes[:remoteFailureBodyLimitConstant]) + remoteFailureBodyEllipsisConstant
}
