package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// newHTTPClient builds the pooled HTTP client used by all vendor clients.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// postJSON sends the payload and retries transient failures up to maxRetries
// times with exponential backoff. 4xx replies other than 429 fail fast; 5xx,
// 429 and transport errors are retried.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload []byte, maxRetries int) (int, []byte, error) {
	var status int
	var body []byte

	op := func() error {
		req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if errReq != nil {
			return backoff.Permanent(errReq)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, errDo := client.Do(req)
		if errDo != nil {
			return errDo
		}
		defer func() { _ = resp.Body.Close() }()

		data, errRead := io.ReadAll(resp.Body)
		if errRead != nil {
			return errRead
		}

		status = resp.StatusCode
		body = data

		if status >= 500 || status == http.StatusTooManyRequests {
			return fmt.Errorf("retryable status %d", status)
		}
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxRetries)),
		ctx,
	)
	if errRetry := backoff.Retry(op, bo); errRetry != nil {
		// A recorded status means the last attempt reached the vendor; report
		// its reply rather than the retry wrapper.
		if status != 0 {
			return status, body, nil
		}
		return 0, nil, errRetry
	}
	return status, body, nil
}
