package main

// version is replaced at build time with -ldflags "-X main.version=..."
var version = "0.1.0-SNAPSHOT"

func VersionAndBuild() string {
	return version
}
