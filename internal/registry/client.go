package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultBaseURL is the production UAS DOC API root.
	DefaultBaseURL = "https://uasdoc.faa.gov/api/v1"

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize caps response bodies; a registry page is a few
	// hundred KB at most.
	maxResponseSize = 32 << 20

	// defaultMaxTries bounds retry attempts per request.
	defaultMaxTries = 3

	userAgent = "ridcache/1.0"
)

// Client is the interface consumed by the resolver and the syncer.
type Client interface {
	// ListRecords returns one page of compliance records, ordered by
	// updatedAt descending.
	ListRecords(ctx context.Context, pageSize, pageIndex int) ([]Record, error)

	// ListSerials returns the full serial-number snapshot for a tracking
	// number.
	ListSerials(ctx context.Context, trackingNumber string) ([]Serial, error)

	// FindBySerial queries the registry for one exact serial. An empty
	// slice means no match.
	FindBySerial(ctx context.Context, serial string) ([]SerialMatch, error)
}

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	baseURL  string
	client   *http.Client
	maxTries uint
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client against baseURL. Zero values select
// DefaultBaseURL and DefaultTimeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		maxTries: defaultMaxTries,
	}
}

// ListRecords implements Client.
func (c *HTTPClient) ListRecords(ctx context.Context, pageSize, pageIndex int) ([]Record, error) {
	params := url.Values{}
	params.Set("itemsPerPage", strconv.Itoa(pageSize))
	params.Set("pageIndex", strconv.Itoa(pageIndex))
	params.Set("orderBy[0][0]", "updatedAt")
	params.Set("orderBy[0][1]", "DESC")
	params.Set("docType", "rid")

	body, err := c.get(ctx, "list records", "/publicDOCRev", params)
	if err != nil {
		return nil, err
	}

	var env recordsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &TransportError{Op: "list records", URL: c.baseURL + "/publicDOCRev", Err: fmt.Errorf("decode response: %w", err)}
	}
	return env.Data.Items, nil
}

// ListSerials implements Client.
func (c *HTTPClient) ListSerials(ctx context.Context, trackingNumber string) ([]Serial, error) {
	params := url.Values{}
	params.Set("snapshot", "true")
	params.Set("isPublic", "true")
	params.Set("findBy", "docTrackingNumber")
	params.Set("docTrackingNumber", trackingNumber)

	body, err := c.get(ctx, "list serials", "/serialNumbers", params)
	if err != nil {
		return nil, err
	}

	var env serialsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &TransportError{Op: "list serials", URL: c.baseURL + "/serialNumbers", Err: fmt.Errorf("decode response: %w", err)}
	}
	return env.Data.Items, nil
}

// FindBySerial implements Client.
func (c *HTTPClient) FindBySerial(ctx context.Context, serial string) ([]SerialMatch, error) {
	params := url.Values{}
	params.Set("orderBy[0]", "updatedAt")
	params.Set("orderBy[1]", "DESC")
	params.Set("findBy", "serialNumber")
	params.Set("serialNumber", serial)

	body, err := c.get(ctx, "find by serial", "/serialNumbers", params)
	if err != nil {
		return nil, err
	}

	var env matchesEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &TransportError{Op: "find by serial", URL: c.baseURL + "/serialNumbers", Err: fmt.Errorf("decode response: %w", err)}
	}
	return env.Data.Items, nil
}

// get performs a GET with retry. Connection errors, 429, and 5xx are
// retried with exponential backoff up to maxTries; any other non-2xx stops
// immediately.
func (c *HTTPClient) get(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, backoff.Permanent(&TransportError{Op: op, URL: reqURL, Err: err})
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("client", "external")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, &TransportError{Op: op, URL: reqURL, Err: err}
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode != http.StatusOK {
			terr := &TransportError{Op: op, URL: reqURL, StatusCode: resp.StatusCode}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, terr
			}
			return nil, backoff.Permanent(terr)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
		if err != nil {
			return nil, &TransportError{Op: op, URL: reqURL, Err: fmt.Errorf("read response: %w", err)}
		}
		if len(body) > maxResponseSize {
			return nil, backoff.Permanent(&TransportError{Op: op, URL: reqURL,
				Err: fmt.Errorf("response exceeds %d bytes", maxResponseSize)})
		}
		return body, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
}
