package erp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/iho/ledgersync/internal/domain"
)

// RPCError is an error payload returned by the ERP. It always wraps
// domain.ErrExternalRejected.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

func (e *RPCError) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("%s: %s (%s)", domain.ErrExternalRejected, e.Data.Message, e.Data.Name)
	}
	return fmt.Sprintf("%s: %s", domain.ErrExternalRejected, e.Message)
}

func (e *RPCError) Unwrap() error {
	return domain.ErrExternalRejected
}

// StatusError is a non-2xx HTTP response from the ERP endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("erp responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	if e.retryable() {
		return domain.ErrExternalUnavailable
	}
	return domain.ErrExternalRejected
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// classify maps a transport error to the external error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr *RPCError
	var statusErr *StatusError
	if errors.As(err, &rpcErr) || errors.As(err, &statusErr) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", domain.ErrExternalUnavailable, err)
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	return fmt.Errorf("%w: %w", domain.ErrExternalUnavailable, err)
}

// retryable reports whether a classified error may succeed on another
// attempt under mode.
func retryable(err error, mode replay) bool {
	if !errors.Is(err, domain.ErrExternalUnavailable) {
		return false
	}
	if mode == replaySafe {
		return true
	}
	return undelivered(err)
}

// undelivered reports whether err proves the ERP never processed the
// request: the connection was never established, or the server refused it
// before dispatch.
func undelivered(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode == http.StatusServiceUnavailable
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
