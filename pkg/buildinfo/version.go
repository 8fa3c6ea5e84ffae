// Package buildinfo reports which meshtopo build is running. The CLI prints
// it for --version and the HTTP server returns Version from /healthz.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/meshtopo/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/meshtopo/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/meshtopo/pkg/buildinfo.Date=$(date -u +%Y-%m-%d)" ./cmd/meshtopo
package buildinfo

import "fmt"

// Values for a build made without ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build as one line, e.g. "v0.3.0 (abc1234, 2026-01-02)".
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}
