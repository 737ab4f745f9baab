package fetcher

import "fmt"

// Fetcher interface defines the contract for fetching implementations
type Fetcher interface {
	// Fetch performs a single GET for url and returns the HTML body.
	// Any status other than 200 is reported as a *StatusError.
	Fetch(url string) (string, error)
}

// StatusError is returned when the server answers with anything but 200 OK
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failure for %s: %d", e.URL, e.StatusCode)
}

// TransportError wraps network-level failures (DNS, refused connection, timeout)
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
