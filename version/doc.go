// Package version reports the build of the counter binary.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/chaincounter/version.Version=1.2.0" ./cmd/counter
//
// Unset values are filled from the module's embedded VCS settings.
package version
