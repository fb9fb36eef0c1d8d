package audd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// call posts a multipart form to the AudD API and decodes the envelope.
//
// It handles:
// - Request construction with the token and requested services
// - HTTP status checking
// - Response parsing (JSON)
// - API error extraction
//
// There are no retries; callers decide what to do with a failure.
func (c *Client) call(ctx context.Context, fields map[string]string, file io.Reader, filename string) (*Response, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if c.apiToken != "" {
		if err := w.WriteField("api_token", c.apiToken); err != nil {
			return nil, fmt.Errorf("failed to write form: %w", err)
		}
	}
	if err := w.WriteField("return", c.returns); err != nil {
		return nil, fmt.Errorf("failed to write form: %w", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form: %w", err)
		}
	}

	if file != nil {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file: %w", err)
		}
		n, err := io.Copy(part, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read audio: %w", err)
		}
		if n == 0 {
			return nil, ErrEmptyAudio
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("User-Agent", "earshot/1.0")

	c.logDebugf("audd: submitting %d bytes", body.Len())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if envelope.Status == statusError {
		if envelope.Error == nil {
			return nil, fmt.Errorf("audd: error status without error object")
		}
		return nil, &Error{Code: envelope.Error.Code, Message: envelope.Error.Message}
	}

	if envelope.Status != statusSuccess {
		return nil, fmt.Errorf("audd: unexpected response status %q", envelope.Status)
	}

	c.logDebugf("audd: request succeeded (match: %t)", envelope.Result != nil)
	return &envelope, nil
}
