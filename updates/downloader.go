package updates

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"jonnyzzz.com/otaprobe/certs"
)

// HTTPFetcher issues GET requests trusting only the given authority
type HTTPFetcher interface {
	Get(url string, authority certs.Authority) (*http.Response, error)
}

// PinnedFetcher performs GET requests over TLS validated against a single pinned authority
type PinnedFetcher struct {
	Timeout time.Duration
}

// NewPinnedFetcher creates a PinnedFetcher with default settings
func NewPinnedFetcher() *PinnedFetcher {
	return &PinnedFetcher{
		Timeout: 30 * time.Second,
	}
}

func (f *PinnedFetcher) Get(url string, authority certs.Authority) (*http.Response, error) {
	pool, err := authority.Pool()
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: f.Timeout,
		// the connection is released as soon as the caller closes the body
		Transport: &http.Transport{
			DisableKeepAlives: true,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
				RootCAs:    pool,
			},
		},
	}

	return client.Get(url)
}

// download performs one GET for url and returns the body text, or "" on any failure.
// At most MaxPayloadSize+1 bytes are read so an oversized body is still detected.
func (c *Client) download(url string) string {
	authority := c.certificates.Select(url)

	resp, err := c.fetcher.Get(url, authority)
	if err != nil {
		c.log.Error().Err(err).Str("url", url).Str("authority", authority.Name).Msg("GET request failed")
		return ""
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error().Int("status", resp.StatusCode).Str("url", url).Msg("GET request returned unexpected status")
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxPayloadSize+1))
	if err != nil {
		c.log.Error().Err(fmt.Errorf("failed to read response: %w", err)).Str("url", url).Msg("GET request failed")
		return ""
	}

	return string(data)
}
