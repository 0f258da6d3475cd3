package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// ErrRelativeURL is returned by OpenWindow for a URL without scheme and host.
// Such a URL would otherwise resolve against the backend base URL.
var ErrRelativeURL = errors.New("window url must be absolute")

// OpenWindow posts an empty JSON object to an arbitrary URL, typically a
// webhook that actuates a window next to the device. No token is sent.
func (g *Gateway) OpenWindow(ctx context.Context, rawURL string) error {
	const op = "open_window"
	if u, err := url.Parse(rawURL); err != nil || !u.IsAbs() || u.Host == "" {
		return &TransportError{Op: op, Method: http.MethodPost, Path: rawURL, Err: ErrRelativeURL}
	}
	_, err := g.send(op, http.MethodPost, rawURL, g.anonymous(ctx).SetBody(map[string]any{}))
	return err
}
