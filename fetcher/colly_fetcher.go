package fetcher

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher implements the Fetcher interface using colly
type CollyFetcher struct {
	userAgent string
	timeout   time.Duration
}

// NewCollyFetcher creates a new CollyFetcher instance.
// A zero timeout leaves the transport default in place.
func NewCollyFetcher(userAgent string, timeout time.Duration) *CollyFetcher {
	return &CollyFetcher{
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// newCollector builds a collector for a single Fetch call so callbacks never pile up
func (cf *CollyFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(cf.userAgent),
		colly.AllowURLRevisit(),
	)
	// Hand every status to OnResponse; the 200 check is done in Fetch
	c.ParseHTTPErrorResponse = true
	// colly truncates bodies past 10 MiB by default; 0 lifts the limit
	c.MaxBodySize = 0
	if cf.timeout > 0 {
		c.SetRequestTimeout(cf.timeout)
	}
	return c
}

// Fetch implements the Fetcher interface
func (cf *CollyFetcher) Fetch(url string) (string, error) {
	c := cf.newCollector()

	var (
		statusCode int
		body       []byte
	)

	c.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Error fetching %s: %v\n", r.Request.URL, err)
	})

	log.Printf("Fetching %s\n", url)
	err := c.Visit(url)
	if statusCode == 0 {
		if err == nil {
			err = errors.New("no response received")
		}
		return "", &TransportError{URL: url, Err: err}
	}

	if statusCode != http.StatusOK {
		log.Printf("Request failure for %s: %d\n", url, statusCode)
		return "", &StatusError{URL: url, StatusCode: statusCode}
	}

	log.Printf("Fetched %s (%d bytes)\n", url, len(body))
	return string(body), nil
}
