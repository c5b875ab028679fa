package main

import (
	"runtime/debug"

	"github.com/pressly/mongotest/internal/cli"
)

var (
	// version is set at build time with -ldflags "-X main.version=...".
	version = ""
)

func main() {
	cli.Main(cli.WithVersion(buildVersion()))
}

func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "devel"
}
