package main

import (
	"fmt"
	"runtime/debug"
)

// Various version related constants.
const (
	AppVendor  = "tinylisp"
	AppName    = "scm"
	AppVersion = "v0.1.0"
)

// Version returns program version information, preferring the build info
// embedded by `go build` when available.
func Version() string {
	version := AppVersion
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	return fmt.Sprintf("%s %s %s", AppVendor, AppName, version)
}
