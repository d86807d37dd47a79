package updates

import (
	"jonnyzzz.com/otaprobe/certs"
	"jonnyzzz.com/otaprobe/logging"
)

// Client resolves the latest published version of a package and the path
// of its binary. Failures are reported through the logger and surface to the
// caller as empty strings. A Client holds no mutable state.
type Client struct {
	identity     Identity
	certificates *certs.Table
	fetcher      HTTPFetcher
	log          *logging.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithCertificates replaces the compiled-in authority table
func WithCertificates(table *certs.Table) Option {
	return func(c *Client) {
		if table != nil {
			c.certificates = table
		}
	}
}

// WithFetcher replaces the HTTP transport
func WithFetcher(fetcher HTTPFetcher) Option {
	return func(c *Client) {
		if fetcher != nil {
			c.fetcher = fetcher
		}
	}
}

// WithLogger sets the sink for diagnostics, which are discarded by default
func WithLogger(log *logging.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a client for the given package identity
func NewClient(identity Identity, opts ...Option) *Client {
	c := &Client{
		identity:     identity.withDefaults(),
		certificates: certs.Default(),
		fetcher:      NewPinnedFetcher(),
		log:          logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Account() string      { return c.identity.Account }
func (c *Client) Repository() string   { return c.identity.Repository }
func (c *Client) Package() string      { return c.identity.Package }
func (c *Client) MetadataHost() string { return c.identity.MetadataHost }
func (c *Client) StorageHost() string  { return c.identity.StorageHost }

// LatestVersionURL returns the metadata URL of the latest version
func (c *Client) LatestVersionURL() string {
	return "https://" + c.identity.MetadataHost + "/packages/" + c.identity.Account + "/" + c.identity.Repository + "/" + c.identity.Package + "/versions/_latest"
}

// ArtifactListURL returns the URL listing the files of version
func (c *Client) ArtifactListURL(version string) string {
	return "https://" + c.identity.MetadataHost + "/packages/" + c.identity.Account + "/" + c.identity.Repository + "/" + c.identity.Package + "/versions/" + version + "/files"
}

// DownloadURL returns the storage URL for an artifact path returned by ArtifactPath
func (c *Client) DownloadURL(artifactPath string) string {
	return "https://" + c.identity.StorageHost + artifactPath
}

// Certificate returns the pinned authority to trust for url
func (c *Client) Certificate(url string) certs.Authority {
	return c.certificates.Select(url)
}

// LatestVersion returns the name of the latest published version, or "" if it could not be determined
func (c *Client) LatestVersion() string {
	url := c.LatestVersionURL()
	c.log.Debug().Str("url", url).Msg("resolving latest version")
	return c.extractVersion(c.download(url))
}

// ArtifactPath returns the storage path of the binary published for version, or "" if it could not be determined
func (c *Client) ArtifactPath(version string) string {
	url := c.ArtifactListURL(version)
	c.log.Debug().Str("url", url).Msg("resolving artifact path")
	return c.extractArtifactPath(c.download(url))
}
