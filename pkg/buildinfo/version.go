// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/surveyplot/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/surveyplot/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)" \
//	    ./cmd/surveyplot
package buildinfo

import "fmt"

// Set via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information on three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + Version + " (" + Commit + ", built " + Date + ")\n"
}
