package updates

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jonnyzzz.com/otaprobe/certs"
	"jonnyzzz.com/otaprobe/logging"
)

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

type mockResponse struct {
	status int
	body   string
}

// mockFetcher simulates the service for a fixed set of URLs
type mockFetcher struct {
	responses   map[string]mockResponse
	errors      map[string]error
	requests    []string
	authorities []string
	bodies      []*trackingBody
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		responses: make(map[string]mockResponse),
		errors:    make(map[string]error),
	}
}

func (m *mockFetcher) AddResponse(url string, status int, body string) {
	m.responses[url] = mockResponse{status: status, body: body}
}

func (m *mockFetcher) AddError(url string, err error) {
	m.errors[url] = err
}

func (m *mockFetcher) Get(url string, authority certs.Authority) (*http.Response, error) {
	m.requests = append(m.requests, url)
	m.authorities = append(m.authorities, authority.Name)

	if err, ok := m.errors[url]; ok {
		return nil, err
	}

	resp, ok := m.responses[url]
	if !ok {
		resp = mockResponse{status: http.StatusNotFound, body: "Not Found"}
	}
	body := &trackingBody{Reader: strings.NewReader(resp.body)}
	m.bodies = append(m.bodies, body)
	return &http.Response{
		StatusCode: resp.status,
		Body:       body,
		Header:     make(http.Header),
	}, nil
}

func (m *mockFetcher) allClosed() bool {
	for _, b := range m.bodies {
		if !b.closed {
			return false
		}
	}
	return true
}

var testIdentity = Identity{
	Account:    "acme",
	Repository: "widgets",
	Package:    "firmware",
}

const (
	latestURL = "https://api.bintray.com/packages/acme/widgets/firmware/versions/_latest"
	filesURL  = "https://api.bintray.com/packages/acme/widgets/firmware/versions/1.2.3/files"
)

func newTestClient(t *testing.T, fetcher HTTPFetcher) (*Client, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	client := NewClient(testIdentity,
		WithFetcher(fetcher),
		WithLogger(logging.New(logging.Options{Level: "debug", Format: "json", Writer: &logs})),
	)
	return client, &logs
}

func TestClient_Accessors(t *testing.T) {
	client := NewClient(testIdentity)

	assert.Equal(t, "acme", client.Account())
	assert.Equal(t, "widgets", client.Repository())
	assert.Equal(t, "firmware", client.Package())
	assert.Equal(t, DefaultMetadataHost, client.MetadataHost())
	assert.Equal(t, DefaultStorageHost, client.StorageHost())

	custom := NewClient(Identity{Account: "a", Repository: "r", Package: "p", MetadataHost: "meta.example.com", StorageHost: "dl.example.com"})
	assert.Equal(t, "meta.example.com", custom.MetadataHost())
	assert.Equal(t, "dl.example.com", custom.StorageHost())
}

func TestClient_URLs(t *testing.T) {
	client := NewClient(testIdentity)

	assert.Equal(t, latestURL, client.LatestVersionURL())
	assert.Equal(t, filesURL, client.ArtifactListURL("1.2.3"))
	assert.Equal(t, "https://dl.bintray.com/acme/widgets/x/y/file.bin", client.DownloadURL("/acme/widgets/x/y/file.bin"))
}

func TestClient_URLsAreWellFormed(t *testing.T) {
	identities := []Identity{
		testIdentity,
		{Account: "a", Repository: "b", Package: "c"},
		{Account: "user-1", Repository: "repo_2", Package: "pkg.3", MetadataHost: "meta.example.com:8443"},
	}

	for _, id := range identities {
		client := NewClient(id)
		for _, raw := range []string{client.LatestVersionURL(), client.ArtifactListURL("0.1.0")} {
			parsed, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "https", parsed.Scheme)
			assert.Equal(t, client.MetadataHost(), parsed.Host)

			segments := strings.Split(strings.TrimPrefix(parsed.Path, "/"), "/")
			require.GreaterOrEqual(t, len(segments), 5)
			assert.Equal(t, []string{"packages", id.Account, id.Repository, id.Package, "versions"}, segments[:5])
		}
	}
}

func TestClient_Certificate(t *testing.T) {
	client := NewClient(testIdentity)

	assert.Equal(t, certs.ServiceAuthority.Name, client.Certificate(client.LatestVersionURL()).Name)
	assert.Equal(t, certs.CloudFrontAuthority.Name, client.Certificate("https://abc.cloudfront.net/f.bin").Name)
}

func TestClient_LatestVersion(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.AddResponse(latestURL, http.StatusOK, `{"name": "1.2.3"}`)
	client, _ := newTestClient(t, fetcher)

	assert.Equal(t, "1.2.3", client.LatestVersion())
	assert.Equal(t, []string{latestURL}, fetcher.requests)
	assert.Equal(t, []string{certs.ServiceAuthority.Name}, fetcher.authorities)
	assert.True(t, fetcher.allClosed())
}

func TestClient_ArtifactPath(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.AddResponse(filesURL, http.StatusOK, `[{"path": "x/y/file.bin"}]`)
	client, _ := newTestClient(t, fetcher)

	assert.Equal(t, "/acme/widgets/x/y/file.bin", client.ArtifactPath("1.2.3"))
	assert.True(t, fetcher.allClosed())
}

func TestClient_ArtifactPathUsesFirstEntry(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.AddResponse(filesURL, http.StatusOK, `[{"path": "first.bin"}, {"path": "second.bin"}]`)
	client, _ := newTestClient(t, fetcher)

	assert.Equal(t, "/acme/widgets/first.bin", client.ArtifactPath("1.2.3"))
}

func TestClient_ArtifactPathEmptyMember(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.AddResponse(filesURL, http.StatusOK, `[{"path": ""}]`)
	client, _ := newTestClient(t, fetcher)

	assert.Equal(t, "/acme/widgets/", client.ArtifactPath("1.2.3"))
}

func TestClient_InvalidUTF8(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.AddResponse(latestURL, http.StatusOK, "{\"name\": \"\xff\xfe\"}")
	fetcher.AddResponse(filesURL, http.StatusOK, "[{\"path\": \"\xff\xfe\"}]")
	client, logs := newTestClient(t, fetcher)

	assert.Equal(t, "", client.LatestVersion())
	assert.Equal(t, "", client.ArtifactPath("1.2.3"))
	assert.Contains(t, logs.String(), "invalid UTF-8")
}

func TestClient_WrongShapes(t *testing.T) {
	tests := []struct {
		name    string
		version string
		files   string
	}{
		{"array instead of object", `[{"name": "1.2.3"}]`, `{"path": "x.bin"}`},
		{"missing fields", `{"version": "1.2.3"}`, `[{"name": "x.bin"}]`},
		{"mistyped fields", `{"name": 123}`, `[{"path": 42}]`},
		{"null fields", `{"name": null}`, `[{"path": null}]`},
		{"empty containers", `{}`, `[]`},
		{"array of scalars", `"1.2.3"`, `["x.bin"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newMockFetcher()
			fetcher.AddResponse(latestURL, http.StatusOK, tt.version)
			fetcher.AddResponse(filesURL, http.StatusOK, tt.files)
			client, _ := newTestClient(t, fetcher)

			assert.Equal(t, "", client.LatestVersion())
			assert.Equal(t, "", client.ArtifactPath("1.2.3"))
		})
	}
}

func TestClient_OversizedPayload(t *testing.T) {
	body := `{"name": "1.2.3", "desc": "` + strings.Repeat("x", MaxPayloadSize) + `"}`

	fetcher := newMockFetcher()
	fetcher.AddResponse(latestURL, http.StatusOK, body)
	client, logs := newTestClient(t, fetcher)

	assert.Equal(t, "", client.LatestVersion())
	assert.Contains(t, logs.String(), "input data is too big")
	assert.NotContains(t, logs.String(), "failed to parse JSON")
	assert.True(t, fetcher.allClosed())
}

func TestClient_PayloadSizeBoundary(t *testing.T) {
	payload := `{"name": "1.2.3"}`

	exact := payload + strings.Repeat(" ", MaxPayloadSize-len(payload))
	require.Len(t, exact, MaxPayloadSize)
	over := exact + " "

	fetcher := newMockFetcher()
	fetcher.AddResponse(latestURL, http.StatusOK, exact)
	client, _ := newTestClient(t, fetcher)
	assert.Equal(t, "1.2.3", client.LatestVersion())

	fetcher.AddResponse(latestURL, http.StatusOK, over)
	assert.Equal(t, "", client.LatestVersion())
}

func TestClient_PayloadDoesNotFitDocument(t *testing.T) {
	// under the byte budget as text, over it once parsed
	prefix := `{"name": "1.2.3", "pad": "`
	body := prefix + strings.Repeat("p", MaxPayloadSize-len(prefix)-2) + `"}`
	require.Len(t, body, MaxPayloadSize)

	fetcher := newMockFetcher()
	fetcher.AddResponse(latestURL, http.StatusOK, body)
	client, logs := newTestClient(t, fetcher)

	assert.Equal(t, "", client.LatestVersion())
	assert.Contains(t, logs.String(), "NoMemory")
}

func TestClient_MalformedPayload(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.AddResponse(latestURL, http.StatusOK, `{"name": "1.2`)
	fetcher.AddResponse(filesURL, http.StatusOK, `[{"path": }]`)
	client, logs := newTestClient(t, fetcher)

	assert.Equal(t, "", client.LatestVersion())
	assert.Equal(t, "", client.ArtifactPath("1.2.3"))
	assert.Contains(t, logs.String(), "IncompleteInput")
	assert.Contains(t, logs.String(), "InvalidInput")
}

func TestClient_Non200(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusMovedPermanently, http.StatusNoContent} {
		fetcher := newMockFetcher()
		fetcher.AddResponse(latestURL, status, `{"name": "1.2.3"}`)
		fetcher.AddResponse(filesURL, status, `[{"path": "x.bin"}]`)
		client, logs := newTestClient(t, fetcher)

		assert.Equal(t, "", client.LatestVersion(), "status %d", status)
		assert.Equal(t, "", client.ArtifactPath("1.2.3"), "status %d", status)
		assert.Contains(t, logs.String(), "unexpected status")
		assert.True(t, fetcher.allClosed())
	}
}

func TestClient_TransportError(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.AddError(latestURL, errors.New("connection refused"))
	fetcher.AddError(filesURL, errors.New("x509: certificate signed by unknown authority"))
	client, logs := newTestClient(t, fetcher)

	assert.Equal(t, "", client.LatestVersion())
	assert.Equal(t, "", client.ArtifactPath("1.2.3"))
	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, logs.String(), "unknown authority")
}

func TestClient_Idempotent(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.AddResponse(latestURL, http.StatusOK, `{"name": "2.0.0"}`)
	client, _ := newTestClient(t, fetcher)

	first := client.LatestVersion()
	// the mock hands out a fresh reader per request
	second := client.LatestVersion()
	assert.Equal(t, "2.0.0", first)
	assert.Equal(t, first, second)
	assert.Len(t, fetcher.requests, 2)
}

func TestClient_SilentByDefault(t *testing.T) {
	fetcher := newMockFetcher()
	client := NewClient(testIdentity, WithFetcher(fetcher), WithLogger(nil), WithCertificates(nil), WithFetcher(nil))

	assert.Equal(t, "", client.LatestVersion())
	assert.Len(t, fetcher.requests, 1)
}
