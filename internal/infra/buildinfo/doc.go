// Package buildinfo exposes build information injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/confstore-go/internal/infra/buildinfo.Version=v1.0.0 \
//	    -X github.com/yndnr/confstore-go/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// GoVersion defaults to the toolchain recorded in the binary.
package buildinfo
