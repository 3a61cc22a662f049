// Package buildinfo holds version information injected at build time:
//
//	go build -ldflags "-X github.com/ironsheep/labelme2coco/internal/buildinfo.Version=v1.0.0 \
//	    -X github.com/ironsheep/labelme2coco/internal/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/ironsheep/labelme2coco/internal/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/labelme2coco
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns the build information on one line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\n  Build time: %s\n  Git commit: %s\n", Version, Date, Commit)
}
