package main

import (
	"jonnyzzz.com/otaprobe/cmd"
)

func main() {
	cmd.Execute(VersionAndBuild())
}
