package audd

import (
	"context"
	"fmt"
	"io"
)

// Recognize submits an audio sample and returns the matched song.
//
// A nil song with a nil error means the service found no match.
// API failures are returned as *Error and non-success HTTP statuses
// as *StatusError.
func (c *Client) Recognize(ctx context.Context, audio io.Reader, filename string) (*Song, error) {
	if audio == nil {
		return nil, ErrEmptyAudio
	}
	if filename == "" {
		filename = "recording"
	}

	resp, err := c.call(ctx, nil, audio, filename)
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// RecognizeURL asks the service to fetch and recognize audio at url.
func (c *Client) RecognizeURL(ctx context.Context, url string) (*Song, error) {
	if url == "" {
		return nil, fmt.Errorf("audd: url is required")
	}

	resp, err := c.call(ctx, map[string]string{"url": url}, nil, "")
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}
