package updates

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubSource struct {
	latest        string
	paths         map[string]string
	artifactCalls []string
}

func (s *stubSource) LatestVersion() string {
	return s.latest
}

func (s *stubSource) ArtifactPath(version string) string {
	s.artifactCalls = append(s.artifactCalls, version)
	return s.paths[version]
}

func (s *stubSource) DownloadURL(artifactPath string) string {
	return "https://dl.example.com" + artifactPath
}

func TestUpdateService_Check(t *testing.T) {
	tests := []struct {
		name          string
		current       string
		latest        string
		paths         map[string]string
		want          UpdateCheck
		wantArtifacts int
	}{
		{
			name:    "newer version",
			current: "1.0.0",
			latest:  "1.1.0",
			paths:   map[string]string{"1.1.0": "/acme/widgets/fw-1.1.0.bin"},
			want: UpdateCheck{
				Current:      "1.0.0",
				Latest:       "1.1.0",
				ArtifactPath: "/acme/widgets/fw-1.1.0.bin",
				DownloadURL:  "https://dl.example.com/acme/widgets/fw-1.1.0.bin",
				Available:    true,
			},
			wantArtifacts: 1,
		},
		{
			name:    "rollback counts as update",
			current: "2.0.0",
			latest:  "1.9.0",
			paths:   map[string]string{"1.9.0": "/acme/widgets/fw-1.9.0.bin"},
			want: UpdateCheck{
				Current:      "2.0.0",
				Latest:       "1.9.0",
				ArtifactPath: "/acme/widgets/fw-1.9.0.bin",
				DownloadURL:  "https://dl.example.com/acme/widgets/fw-1.9.0.bin",
				Available:    true,
			},
			wantArtifacts: 1,
		},
		{
			name:    "up to date",
			current: "1.0.0",
			latest:  "1.0.0",
			want:    UpdateCheck{Current: "1.0.0", Latest: "1.0.0"},
		},
		{
			name:    "latest unknown",
			current: "1.0.0",
			latest:  "",
			want:    UpdateCheck{Current: "1.0.0"},
		},
		{
			name:    "artifact unknown",
			current: "1.0.0",
			latest:  "1.1.0",
			want:    UpdateCheck{Current: "1.0.0", Latest: "1.1.0", Available: true},

			wantArtifacts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &stubSource{latest: tt.latest, paths: tt.paths}
			service := NewUpdateService(source, tt.current)

			assert.Equal(t, tt.want, service.Check())
			assert.Len(t, source.artifactCalls, tt.wantArtifacts)
			assert.Equal(t, tt.want.Available, service.IsUpdateAvailable())
		})
	}
}

func TestUpdateService_WithClient(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.AddResponse(latestURL, http.StatusOK, `{"name": "1.2.3", "package": "firmware"}`)
	fetcher.AddResponse(filesURL, http.StatusOK, `[{"name": "firmware.bin", "path": "firmware/1.2.3/firmware.bin", "size": 1048576}]`)
	client, _ := newTestClient(t, fetcher)

	check := NewUpdateService(client, "1.0.0").Check()

	assert.True(t, check.Available)
	assert.Equal(t, "1.2.3", check.Latest)
	assert.Equal(t, "/acme/widgets/firmware/1.2.3/firmware.bin", check.ArtifactPath)
	assert.Equal(t, "https://dl.bintray.com/acme/widgets/firmware/1.2.3/firmware.bin", check.DownloadURL)
	assert.True(t, fetcher.allClosed())
}
