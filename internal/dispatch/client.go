package dispatch

import (
	"net"
	"net/http"

	"github.com/synthworks/gengate/internal/config"
)

// newHTTPClient builds the per-backend client. The overall request timeout
// covers the whole exchange including the long inference wait; the dial
// timeout fails fast when a backend host is unreachable.
func newHTTPClient(cfg config.BackendConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: cfg.ConnectTimeout,
			}).DialContext,
		},
	}
}
