// Package version reports the build of the scribe binary. Values are set
// with -ldflags and fall back to the VCS stamp of the Go toolchain:
//
//	go build -ldflags "-X github.com/kbukum/scribe/version.Version=1.2.0" ./cmd/scribe
package version
