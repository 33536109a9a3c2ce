// Package ingest handles one webhook notification end to end: fetch the raw
// sensor payload, decode it, and persist the resulting records.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchError reports a failure to retrieve the sensor payload, either a
// transport problem or a mismatch between the declared and fetched size.
// Both are hard ingestion failures.
type FetchError struct {
	URL            string
	DeclaredLength int
	ActualLength   int // -1 when nothing was fetched
	Err            error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch sensor data from %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("invalid sensor data from %s: contentLength is %d but sensor data size is %d",
		e.URL, e.DeclaredLength, e.ActualLength)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher downloads raw sensor payloads referenced by webhook bodies.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client}
}

// Fetch retrieves the payload and verifies it against the declared byte
// length from the webhook body.
func (f *Fetcher) Fetch(ctx context.Context, url string, declaredLength int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, DeclaredLength: declaredLength, ActualLength: -1, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, DeclaredLength: declaredLength, ActualLength: -1, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			URL:            url,
			DeclaredLength: declaredLength,
			ActualLength:   -1,
			Err:            fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, DeclaredLength: declaredLength, ActualLength: -1, Err: err}
	}
	if len(body) != declaredLength {
		return nil, &FetchError{URL: url, DeclaredLength: declaredLength, ActualLength: len(body)}
	}
	return body, nil
}
