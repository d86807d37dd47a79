package updates

const (
	DefaultMetadataHost = "api.bintray.com"
	DefaultStorageHost  = "dl.bintray.com"

	// MaxPayloadSize is the largest response body the extractor will parse
	MaxPayloadSize = 1024
)

// Identity names the package to check and the hosts serving it
type Identity struct {
	Account      string
	Repository   string
	Package      string
	MetadataHost string
	StorageHost  string
}

// withDefaults fills empty hosts with the public service hosts
func (id Identity) withDefaults() Identity {
	if id.MetadataHost == "" {
		id.MetadataHost = DefaultMetadataHost
	}
	if id.StorageHost == "" {
		id.StorageHost = DefaultStorageHost
	}
	return id
}

// UpdateCheck is the outcome of one update check.
// Empty Latest means the latest version could not be determined.
type UpdateCheck struct {
	Current      string `json:"current"`
	Latest       string `json:"latest"`
	ArtifactPath string `json:"artifact_path,omitempty"`
	DownloadURL  string `json:"download_url,omitempty"`
	Available    bool   `json:"available"`
}
