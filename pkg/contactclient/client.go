// Package contactclient submits contact messages to the contact service.
package contactclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contact-service/pkg/submission"
)

const (
	SendPath       = "/api/send"
	DefaultTimeout = 10 * time.Second
)

// ErrNotSent is returned for any failed send; the cause is wrapped for logs.
var ErrNotSent = errors.New("message not sent")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Submit issues one POST with sub as JSON. It never retries.
func (c *Client) Submit(ctx context.Context, sub submission.Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("%w: failed to encode submission: %w", ErrNotSent, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %w", ErrNotSent, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %w", ErrNotSent, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s: %s", ErrNotSent, resp.Status, errorText(resp.Body))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// errorText pulls the "error" field out of a failure envelope, if there is one.
func errorText(r io.Reader) string {
	var envelope struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(raw))
}
