package updates

type UpdateService interface {
	// Check blocks until the latest version, and the artifact of a newer one, are resolved
	Check() UpdateCheck

	IsUpdateAvailable() bool
}

// VersionSource is the part of Client the update service needs
type VersionSource interface {
	LatestVersion() string
	ArtifactPath(version string) string
	DownloadURL(artifactPath string) string
}

func NewUpdateService(source VersionSource, thisVersion string) UpdateService {
	return &updateServiceImpl{
		source:      source,
		thisVersion: thisVersion,
	}
}

func (impl *updateServiceImpl) Check() UpdateCheck {
	result := UpdateCheck{
		Current: impl.thisVersion,
		Latest:  impl.source.LatestVersion(),
	}
	if result.Latest == "" {
		return result
	}

	//We consider that if our version is not equal to the latest version
	//it means
	// - either there is update
	// - or there is a sudden downgrade or rollback
	// for both cases, it's time to change that binary
	result.Available = result.Latest != impl.thisVersion
	if !result.Available {
		return result
	}

	result.ArtifactPath = impl.source.ArtifactPath(result.Latest)
	if result.ArtifactPath != "" {
		result.DownloadURL = impl.source.DownloadURL(result.ArtifactPath)
	}
	return result
}

func (impl *updateServiceImpl) IsUpdateAvailable() bool {
	return impl.Check().Available
}

type updateServiceImpl struct {
	source      VersionSource
	thisVersion string
}
