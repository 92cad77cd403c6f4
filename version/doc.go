// Package version reports the build identity of the lazyseq binary.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/lazyseq/version.Version=1.0.0" ./cmd/lazyseq
//
// Values left empty are filled from the module build info when available.
package version
