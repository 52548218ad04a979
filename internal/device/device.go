// Package device talks to the gate controller's embedded HTTP endpoint.
//
// The controller answers GET / with a small JSON object carrying the two
// distance readings and the light level. It serves one connection at a
// time, so every request asks for the connection to be closed.
package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/gatewatch/internal/model"
)

// Defaults matching the controller's access point and firmware.
const (
	DefaultURL     = "http://192.168.4.1"
	DefaultTimeout = 3 * time.Second

	// maxBody caps how much of a response is read; real payloads are tiny.
	maxBody = 64 << 10
)

// ErrMalformed is returned when the body is not a JSON object.
var ErrMalformed = errors.New("malformed sensor payload")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("controller returned HTTP %d", e.StatusCode)
}

// Client fetches readings from one controller.
type Client struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

// New returns a client for the controller at baseURL. The timeout bounds
// connecting, waiting for headers and the whole request.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		ResponseHeaderTimeout: timeout,
		DisableKeepAlives:     true,
	}
	return &Client{
		url:        strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		now:        time.Now,
	}
}

// URL returns the controller URL this client polls.
func (c *Client) URL() string { return c.url }

// Fetch performs one poll and returns the decoded reading.
func (c *Client) Fetch(ctx context.Context) (*model.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Connection", "close")
	req.Close = true

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polling %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	r, err := Decode(body)
	if err != nil {
		return nil, err
	}
	r.ReceivedAt = c.now()
	return r, nil
}

// Decode parses a controller payload. The body must be a JSON object; each
// of sensor1, sensor2 and ldr is optional and defaults to zero.
func Decode(body []byte) (*model.Reading, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformed, truncate(body, 64))
	}
	return &model.Reading{
		Distance1: number(fields["sensor1"]),
		Distance2: number(fields["sensor2"]),
		Light:     number(fields["ldr"]),
	}, nil
}

// number reads a JSON number, or a string holding one. Anything else,
// including non-finite values, reads as zero.
func number(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Classify maps a Fetch error to the link status shown to the operator.
// Failures before a connection exists (no route, refused, DNS) mean the
// controller network is not reachable; everything else is a timeout or a
// bad answer from a reachable controller.
func Classify(err error) model.LinkStatus {
	if err == nil {
		return model.LinkConnected
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.LinkTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return model.LinkNoNetwork
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return model.LinkNoNetwork
	}
	return model.LinkTimeout
}
